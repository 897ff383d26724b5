package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/events"
	"github.com/spec-kit/content-platform/internal/service"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

// memStoryRepo is an in-memory StoryRepository with the same absence
// and check-and-set semantics as the pgx implementation.
type memStoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	stories map[int64]domain.Story
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{stories: make(map[int64]domain.Story)}
}

func (r *memStoryRepo) Create(ctx context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	story.ID = r.nextID
	story.CreatedAt = time.Now()
	story.UpdatedAt = story.CreatedAt
	r.stories[story.ID] = *story
	return nil
}

func (r *memStoryRepo) GetByID(ctx context.Context, id int64) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &story, nil
}

func (r *memStoryRepo) Update(ctx context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[story.ID]; !ok {
		return pgx.ErrNoRows
	}
	story.UpdatedAt = time.Now()
	r.stories[story.ID] = *story
	return nil
}

func (r *memStoryRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.StoryStatus, publishedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[id]
	if !ok || story.Status != from {
		return false, nil
	}
	story.Status = to
	story.PublishedAt = &publishedAt
	story.UpdatedAt = time.Now()
	r.stories[id] = story
	return true, nil
}

func (r *memStoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[id]; !ok {
		return false, nil
	}
	delete(r.stories, id)
	return true, nil
}

func (r *memStoryRepo) ListByAuthor(ctx context.Context, authorID int64, includeDrafts bool, limit, offset int) ([]domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Story
	for _, story := range r.stories {
		if story.AuthorID != authorID {
			continue
		}
		if !includeDrafts && !story.Published() {
			continue
		}
		out = append(out, story)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memStoryRepo) ListLatest(ctx context.Context, limit, offset int) ([]domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Story
	for _, story := range r.stories {
		if story.Published() {
			out = append(out, story)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(*out[j].PublishedAt) })
	return out, nil
}

func newStoryService(repo *memStoryRepo) *service.StoryService {
	return service.NewStoryService(service.StoryDependencies{
		StoryRepo:  repo,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestCreateValidatesEmptyFields(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "   ", Content: "body"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Create(ctx, 1, service.StoryCreateInput{Title: "title", Content: ""})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "  title  ", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusDraft, story.Status)
	assert.Equal(t, "title", story.Title)
	assert.NotEmpty(t, story.PublicKey)
}

func TestDraftVisibility(t *testing.T) {
	repo := newMemStoryRepo()
	svc := newStoryService(repo)
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	// Owner sees the draft.
	got, err := svc.GetDraft(ctx, 1, story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)

	owner := int64(1)
	stranger := int64(2)

	_, err = svc.Get(ctx, &stranger, story.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	_, err = svc.Get(ctx, nil, story.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	got, err = svc.Get(ctx, &owner, story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)

	// Drafts never appear in the public listing.
	latest, err := svc.ListLatest(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestPublishTwiceFails(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	published, err := svc.Publish(ctx, 1, story.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	_, err = svc.Publish(ctx, 1, story.ID)
	assert.Equal(t, "INVALID_STATE", errCode(t, err))
}

func TestSaveDraftOnPublishedFails(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, 1, story.ID)
	require.NoError(t, err)

	title := "revised"
	_, err = svc.SaveDraft(ctx, 1, story.ID, service.StoryPatch{Title: &title})
	assert.Equal(t, "INVALID_STATE", errCode(t, err))

	// The owner can still edit through Update in either state.
	updated, err := svc.Update(ctx, 1, story.ID, service.StoryPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Title)
	assert.Equal(t, domain.StoryStatusPublished, updated.Status)
}

func TestNonOwnerMutationsMaskedAsNotFound(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	title := "x"
	_, err = svc.SaveDraft(ctx, 2, story.ID, service.StoryPatch{Title: &title})
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	_, err = svc.Publish(ctx, 2, story.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	_, err = svc.Update(ctx, 2, story.ID, service.StoryPatch{Title: &title})
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	err = svc.Delete(ctx, 2, story.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	// Identical to operating on an id that never existed.
	_, err = svc.Publish(ctx, 2, 12345)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestDeleteRemovesAddressability(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, 1, story.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, story.ID))

	owner := int64(1)
	_, err = svc.Get(ctx, &owner, story.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestListByAuthorFiltersDrafts(t *testing.T) {
	svc := newStoryService(newMemStoryRepo())
	ctx := context.Background()

	draft, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "draft", Content: "c"})
	require.NoError(t, err)
	published, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "published", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, 1, published.ID)
	require.NoError(t, err)

	owner := int64(1)
	stranger := int64(2)

	mine, err := svc.ListByAuthor(ctx, &owner, 1, 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := svc.ListByAuthor(ctx, &stranger, 1, 20, 0)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, published.ID, theirs[0].ID)
	assert.NotEqual(t, draft.ID, theirs[0].ID)

	public, err := svc.ListByAuthor(ctx, nil, 1, 20, 0)
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestConcurrentPublishSingleWinner(t *testing.T) {
	repo := newMemStoryRepo()
	svc := newStoryService(repo)
	ctx := context.Background()

	story, err := svc.Create(ctx, 1, service.StoryCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Publish(ctx, 1, story.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
		}
	}
	assert.Equal(t, 1, winners)
}
