package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-platform/internal/api/dto"
	"github.com/spec-kit/content-platform/internal/auth"
	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/service"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

// StoriesHandler manages story endpoints.
type StoriesHandler struct {
	service *service.StoryService
}

// NewStoriesHandler constructs handler.
func NewStoriesHandler(storyService *service.StoryService) *StoriesHandler {
	return &StoriesHandler{service: storyService}
}

// Create POST /stories.
func (h *StoriesHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	story, err := h.service.Create(c.Context(), identity.SubjectID, service.StoryCreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": storyResponse(story)})
}

// Get GET /stories/:id. Published stories are public; a draft is
// returned only to its owner.
func (h *StoriesHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("story", nil)
	}

	story, err := h.service.Get(c.Context(), viewerID(c), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponse(story)})
}

// GetDraft GET /stories/:id/draft. Runs behind ownership validation,
// so the story is already loaded.
func (h *StoriesHandler) GetDraft(c *fiber.Ctx) error {
	story, ok := auth.OwnedStoryFromContext(c)
	if !ok {
		return apperrors.NewNotFound("story", nil)
	}
	if story.Status != domain.StoryStatusDraft {
		return apperrors.NewInvalidState("story is published", nil)
	}
	return c.JSON(fiber.Map{"data": storyResponse(story)})
}

// SaveDraft PATCH /stories/:id/draft.
func (h *StoriesHandler) SaveDraft(c *fiber.Ctx) error {
	identity, story, req, err := h.patchContext(c)
	if err != nil {
		return err
	}
	updated, err := h.service.SaveDraft(c.Context(), identity.SubjectID, story.ID, service.StoryPatch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponse(updated)})
}

// Publish POST /stories/:id/publish.
func (h *StoriesHandler) Publish(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	story, ok := auth.OwnedStoryFromContext(c)
	if !ok {
		return apperrors.NewNotFound("story", nil)
	}

	published, err := h.service.Publish(c.Context(), identity.SubjectID, story.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponse(published)})
}

// Update PATCH /stories/:id.
func (h *StoriesHandler) Update(c *fiber.Ctx) error {
	identity, story, req, err := h.patchContext(c)
	if err != nil {
		return err
	}
	updated, err := h.service.Update(c.Context(), identity.SubjectID, story.ID, service.StoryPatch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponse(updated)})
}

// Delete DELETE /stories/:id.
func (h *StoriesHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	story, ok := auth.OwnedStoryFromContext(c)
	if !ok {
		return apperrors.NewNotFound("story", nil)
	}

	if err := h.service.Delete(c.Context(), identity.SubjectID, story.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLatest GET /stories/latest.
func (h *StoriesHandler) ListLatest(c *fiber.Ctx) error {
	stories, err := h.service.ListLatest(c.Context(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponses(stories)})
}

// ListByAuthor GET /authors/:id/stories.
func (h *StoriesHandler) ListByAuthor(c *fiber.Ctx) error {
	authorID, err := c.ParamsInt("id")
	if err != nil || authorID <= 0 {
		return apperrors.NewNotFound("author", nil)
	}

	stories, err := h.service.ListByAuthor(c.Context(), viewerID(c), int64(authorID),
		c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storyResponses(stories)})
}

func (h *StoriesHandler) patchContext(c *fiber.Ctx) (auth.Identity, *domain.Story, dto.PatchStoryRequest, error) {
	var req dto.PatchStoryRequest
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return identity, nil, req, apperrors.NewUnauthenticated("authentication required")
	}
	story, ok := auth.OwnedStoryFromContext(c)
	if !ok {
		return identity, nil, req, apperrors.NewNotFound("story", nil)
	}
	if err := c.BodyParser(&req); err != nil {
		return identity, nil, req, apperrors.NewValidationError("invalid payload", nil)
	}
	return identity, story, req, nil
}

func viewerID(c *fiber.Ctx) *int64 {
	if identity, ok := auth.IdentityFromContext(c); ok {
		return &identity.SubjectID
	}
	return nil
}

func storyResponse(story *domain.Story) dto.StoryResponse {
	return dto.StoryResponse{
		ID:          story.ID,
		PublicKey:   story.PublicKey,
		AuthorID:    story.AuthorID,
		Title:       story.Title,
		Content:     story.Content,
		Status:      string(story.Status),
		PublishedAt: story.PublishedAt,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
}

func storyResponses(stories []domain.Story) []dto.StoryResponse {
	out := make([]dto.StoryResponse, 0, len(stories))
	for i := range stories {
		out = append(out, storyResponse(&stories[i]))
	}
	return out
}
