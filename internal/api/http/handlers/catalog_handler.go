package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-platform/internal/api/dto"
	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/service"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

// CatalogHandler manages category and item endpoints for all three
// catalogs.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// ListRoots GET /catalogs/:kind/categories.
func (h *CatalogHandler) ListRoots(c *fiber.Ctx) error {
	roots, err := h.service.GetRootCategories(c.Context(), parseKind(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponses(roots)})
}

// CreateCategory POST /catalogs/:kind/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	category, err := h.service.CreateCategory(c.Context(), parseKind(c), req.ParentID, req.Title)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// GetCategory GET /categories/:id — the category with its direct
// children and items.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("category", nil)
	}

	detail, err := h.service.GetCategoryWithChildren(c.Context(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryDetailResponse{
		CategoryResponse: categoryResponse(&detail.Category),
		Children:         categoryResponses(detail.Children),
		Items:            itemResponses(detail.Items),
	}})
}

// UpdateCategory PATCH /categories/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("category", nil)
	}
	var req dto.PatchCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	category, err := h.service.UpdateCategory(c.Context(), int64(id), service.CategoryUpdateInput{
		Title:    req.Title,
		ParentID: req.ParentID,
		MakeRoot: req.MakeRoot,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

// DeleteCategory DELETE /categories/:id — cascades over the whole
// subtree.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("category", nil)
	}
	if err := h.service.DeleteCategory(c.Context(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BatchDeleteCategories POST /categories/batch-delete.
func (h *CatalogHandler) BatchDeleteCategories(c *fiber.Ctx) error {
	ids, err := parseBatchIDs(c)
	if err != nil {
		return err
	}
	results := h.service.BatchDeleteCategories(c.Context(), ids)
	return c.JSON(fiber.Map{"data": batchEntries(results)})
}

// CreateItem POST /categories/:id/items.
func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil || categoryID <= 0 {
		return apperrors.NewNotFound("category", nil)
	}
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.service.CreateItem(c.Context(), int64(categoryID), service.ItemCreateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": itemResponse(item)})
}

// UpdateItem PATCH /items/:id.
func (h *CatalogHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("item", nil)
	}
	var req dto.PatchItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.service.UpdateItem(c.Context(), int64(id), service.ItemUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

// DeleteItem DELETE /items/:id.
func (h *CatalogHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("item", nil)
	}
	if err := h.service.DeleteItem(c.Context(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BatchDeleteItems POST /items/batch-delete.
func (h *CatalogHandler) BatchDeleteItems(c *fiber.Ctx) error {
	ids, err := parseBatchIDs(c)
	if err != nil {
		return err
	}
	results := h.service.BatchDeleteItems(c.Context(), ids)
	return c.JSON(fiber.Map{"data": batchEntries(results)})
}

func parseKind(c *fiber.Ctx) domain.CatalogKind {
	return domain.CatalogKind(strings.ToUpper(c.Params("kind")))
}

func parseBatchIDs(c *fiber.Ctx) ([]int64, error) {
	var req dto.BatchDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.IDs) == 0 {
		return nil, apperrors.NewValidationError("ids required", nil)
	}
	return req.IDs, nil
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        category.ID,
		Kind:      string(category.Kind),
		ParentID:  category.ParentID,
		Title:     category.Title,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func categoryResponses(categories []domain.Category) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, categoryResponse(&categories[i]))
	}
	return out
}

func itemResponse(item *domain.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          item.ID,
		CategoryID:  item.CategoryID,
		Name:        item.Name,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func itemResponses(items []domain.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, itemResponse(&items[i]))
	}
	return out
}

func batchEntries(results []service.BatchDeleteResult) []dto.BatchDeleteEntry {
	out := make([]dto.BatchDeleteEntry, 0, len(results))
	for _, res := range results {
		out = append(out, dto.BatchDeleteEntry{
			ID:      res.ID,
			Deleted: res.Deleted,
			Code:    res.Code,
			Message: res.Message,
		})
	}
	return out
}
