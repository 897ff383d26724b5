package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-platform/internal/cache"
	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/events"
	"github.com/spec-kit/content-platform/internal/repository"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

// StoryService governs the story lifecycle: creation as a draft,
// draft edits, the one-way publish transition, owner updates in either
// state and hard deletion.
type StoryService struct {
	stories    repository.StoryRepository
	listings   *cache.StoryCache
	dispatcher events.Dispatcher
}

// StoryDependencies bundles collaborators for the story service.
type StoryDependencies struct {
	StoryRepo    repository.StoryRepository
	ListingCache *cache.StoryCache
	Dispatcher   events.Dispatcher
}

// StoryCreateInput describes story creation payload.
type StoryCreateInput struct {
	Title   string
	Content string
}

// StoryPatch carries partial title/content updates. Nil fields are
// left untouched.
type StoryPatch struct {
	Title   *string
	Content *string
}

// NewStoryService constructs the service.
func NewStoryService(deps StoryDependencies) *StoryService {
	return &StoryService{
		stories:    deps.StoryRepo,
		listings:   deps.ListingCache,
		dispatcher: deps.Dispatcher,
	}
}

// Create stores a new draft owned by the caller. Title and content are
// required non-empty after trimming.
func (s *StoryService) Create(ctx context.Context, authorID int64, input StoryCreateInput) (*domain.Story, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content are required", nil)
	}

	story := &domain.Story{
		PublicKey: generateStoryKey(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		Status:    domain.StoryStatusDraft,
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, apperrors.MapStoreError(err, "story")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventStoryCreated,
		StoryID:  story.ID,
		AuthorID: authorID,
		Payload:  events.StoryCreatedPayload{Title: story.Title},
	})
	return story, nil
}

// SaveDraft applies a patch to a story that is still in draft. A
// published story can only be changed through Update.
func (s *StoryService) SaveDraft(ctx context.Context, actorID, id int64, patch StoryPatch) (*domain.Story, error) {
	story, err := s.ownedStory(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if story.Status != domain.StoryStatusDraft {
		return nil, apperrors.NewInvalidState("story is no longer a draft", nil)
	}
	return s.applyPatch(ctx, story, patch)
}

// Publish transitions a draft to published. The status write is an
// atomic check-and-set so two concurrent publishes cannot both
// succeed.
func (s *StoryService) Publish(ctx context.Context, actorID, id int64) (*domain.Story, error) {
	story, err := s.ownedStory(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if story.Status != domain.StoryStatusDraft {
		return nil, apperrors.NewInvalidState("story is already published", nil)
	}

	now := time.Now()
	ok, err := s.stories.TransitionStatus(ctx, id, domain.StoryStatusDraft, domain.StoryStatusPublished, now)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "story")
	}
	if !ok {
		// Lost the race: the row changed between read and write.
		return nil, apperrors.NewInvalidState("story is already published", nil)
	}

	story.Status = domain.StoryStatusPublished
	story.PublishedAt = &now
	s.publishEvent(ctx, events.Event{
		Type:     events.EventStoryPublished,
		StoryID:  story.ID,
		AuthorID: actorID,
		Payload:  events.StoryPublishedPayload{Title: story.Title, PublishedAt: now},
	})
	return story, nil
}

// Update applies a patch regardless of state; only the owner may call
// it.
func (s *StoryService) Update(ctx context.Context, actorID, id int64, patch StoryPatch) (*domain.Story, error) {
	story, err := s.ownedStory(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, story, patch)
}

// Delete permanently removes a story in either state. The id stops
// being addressable; there is no tombstone.
func (s *StoryService) Delete(ctx context.Context, actorID, id int64) error {
	story, err := s.ownedStory(ctx, actorID, id)
	if err != nil {
		return err
	}
	deleted, err := s.stories.Delete(ctx, id)
	if err != nil {
		return apperrors.MapStoreError(err, "story")
	}
	if !deleted {
		return apperrors.NewNotFound("story", nil)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventStoryDeleted,
		StoryID:  id,
		AuthorID: actorID,
		Payload:  events.StoryDeletedPayload{Status: story.Status},
	})
	return nil
}

// GetDraft returns the caller's own draft.
func (s *StoryService) GetDraft(ctx context.Context, actorID, id int64) (*domain.Story, error) {
	story, err := s.ownedStory(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if story.Status != domain.StoryStatusDraft {
		return nil, apperrors.NewInvalidState("story is published", nil)
	}
	return story, nil
}

// Get returns a story for an optionally authenticated viewer. Drafts
// are visible only to their owner; to everyone else a draft is
// indistinguishable from an absent story.
func (s *StoryService) Get(ctx context.Context, viewerID *int64, id int64) (*domain.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("story", nil)
		}
		return nil, apperrors.MapStoreError(err, "story")
	}
	if !story.Published() && (viewerID == nil || *viewerID != story.AuthorID) {
		return nil, apperrors.NewNotFound("story", nil)
	}
	return story, nil
}

// ListByAuthor returns an author's stories. Drafts are included only
// when the viewer is that author.
func (s *StoryService) ListByAuthor(ctx context.Context, viewerID *int64, authorID int64, limit, offset int) ([]domain.Story, error) {
	includeDrafts := viewerID != nil && *viewerID == authorID
	stories, err := s.stories.ListByAuthor(ctx, authorID, includeDrafts, limit, offset)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "stories")
	}
	return stories, nil
}

// ListLatest returns the newest published stories, serving the first
// page from the listing cache when available.
func (s *StoryService) ListLatest(ctx context.Context, limit, offset int) ([]domain.Story, error) {
	cacheable := s.listings != nil && offset == 0
	if cacheable {
		if stories, ok := s.listings.GetLatest(ctx, limit); ok {
			return stories, nil
		}
	}

	stories, err := s.stories.ListLatest(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "stories")
	}
	if cacheable {
		s.listings.SetLatest(ctx, limit, stories)
	}
	return stories, nil
}

// ownedStory loads a story and enforces ownership, collapsing both
// absence and foreign ownership into NOT_FOUND.
func (s *StoryService) ownedStory(ctx context.Context, actorID, id int64) (*domain.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("story", nil)
		}
		return nil, apperrors.MapStoreError(err, "story")
	}
	if story.AuthorID != actorID {
		return nil, apperrors.NewNotFound("story", nil)
	}
	return story, nil
}

func (s *StoryService) applyPatch(ctx context.Context, story *domain.Story, patch StoryPatch) (*domain.Story, error) {
	if patch.Title != nil {
		story.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		story.Content = strings.TrimSpace(*patch.Content)
	}
	if story.Title == "" || story.Content == "" {
		return nil, apperrors.NewValidationError("title and content must not be empty", nil)
	}

	if err := s.stories.Update(ctx, story); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("story", nil)
		}
		return nil, apperrors.MapStoreError(err, "story")
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventStoryUpdated,
		StoryID:  story.ID,
		AuthorID: story.AuthorID,
		Payload:  events.StoryUpdatedPayload{Status: story.Status},
	})
	return story, nil
}

func generateStoryKey() string {
	return "STY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *StoryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
