package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/repository"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

// maxAncestorWalk bounds the reparent cycle check. Cycles are prevented
// at write time, so hitting the bound means the chain is corrupt.
const maxAncestorWalk = 64

// CatalogService implements the category/item tree shared by the three
// catalogs.
type CatalogService struct {
	categories repository.CategoryRepository
	items      repository.ItemRepository
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	CategoryRepo repository.CategoryRepository
	ItemRepo     repository.ItemRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{categories: deps.CategoryRepo, items: deps.ItemRepo}
}

// CategoryWithChildren is a single-level expansion of a category:
// direct child categories and direct items only. Deep trees are walked
// by the caller one level at a time.
type CategoryWithChildren struct {
	Category domain.Category
	Children []domain.Category
	Items    []domain.Item
}

// CategoryUpdateInput carries partial category updates. MakeRoot moves
// the category to the top of its catalog; otherwise a non-nil ParentID
// reparents it.
type CategoryUpdateInput struct {
	Title    *string
	ParentID *int64
	MakeRoot bool
}

// ItemCreateInput describes item creation payload.
type ItemCreateInput struct {
	Name        string
	Description string
	ImageURL    *string
}

// ItemUpdateInput carries partial item updates.
type ItemUpdateInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

// BatchDeleteResult reports the outcome of one id within a batch
// delete. Code is empty on success.
type BatchDeleteResult struct {
	ID      int64
	Deleted bool
	Code    string
	Message string
}

// CreateCategory adds a node to the given catalog. When a parent is
// supplied it must exist and belong to the same catalog kind.
func (s *CatalogService) CreateCategory(ctx context.Context, kind domain.CatalogKind, parentID *int64, title string) (*domain.Category, error) {
	if !domain.ValidCatalogKind(kind) {
		return nil, apperrors.NewValidationError("unknown catalog kind", map[string]any{"kind": kind})
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	if parentID != nil {
		parent, err := s.getCategory(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.Kind != kind {
			return nil, apperrors.NewNotFound("category", nil)
		}
	}

	category := &domain.Category{Kind: kind, ParentID: parentID, Title: title}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapStoreError(err, "category")
	}
	return category, nil
}

// GetRootCategories lists the top-level nodes of one catalog.
func (s *CatalogService) GetRootCategories(ctx context.Context, kind domain.CatalogKind) ([]domain.Category, error) {
	if !domain.ValidCatalogKind(kind) {
		return nil, apperrors.NewValidationError("unknown catalog kind", map[string]any{"kind": kind})
	}
	roots, err := s.categories.ListRoots(ctx, kind)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "categories")
	}
	return roots, nil
}

// GetCategoryWithChildren expands a category one level deep.
func (s *CatalogService) GetCategoryWithChildren(ctx context.Context, id int64) (*CategoryWithChildren, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	children, err := s.categories.ListChildren(ctx, id)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "categories")
	}
	items, err := s.items.ListByCategory(ctx, id)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "items")
	}
	return &CategoryWithChildren{Category: *category, Children: children, Items: items}, nil
}

// UpdateCategory patches a category. Reparenting never crosses catalog
// kinds and never targets the category itself or one of its
// descendants; violations fail with INVALID_OPERATION and leave the
// tree unchanged.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, input CategoryUpdateInput) (*domain.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title must not be empty", nil)
		}
		category.Title = title
	}

	switch {
	case input.MakeRoot:
		category.ParentID = nil
	case input.ParentID != nil:
		if err := s.checkReparent(ctx, category, *input.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = input.ParentID
	}

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", nil)
		}
		return nil, apperrors.MapStoreError(err, "category")
	}
	return category, nil
}

// DeleteCategory removes the category together with its whole subtree
// and every contained item, atomically.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	categories, _, err := s.categories.DeleteSubtree(ctx, id)
	if err != nil {
		return apperrors.MapStoreError(err, "category")
	}
	if categories == 0 {
		return apperrors.NewNotFound("category", nil)
	}
	return nil
}

// BatchDeleteCategories applies DeleteCategory per id, continuing on
// error and reporting a per-id outcome.
func (s *CatalogService) BatchDeleteCategories(ctx context.Context, ids []int64) []BatchDeleteResult {
	results := make([]BatchDeleteResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, batchOutcome(id, s.DeleteCategory(ctx, id)))
	}
	return results
}

// CreateItem adds an item to an existing category.
func (s *CatalogService) CreateItem(ctx context.Context, categoryID int64, input ItemCreateInput) (*domain.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if _, err := s.getCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	item := &domain.Item{
		CategoryID:  categoryID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    input.ImageURL,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapStoreError(err, "item")
	}
	return item, nil
}

// UpdateItem patches an item.
func (s *CatalogService) UpdateItem(ctx context.Context, id int64, input ItemUpdateInput) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("item", nil)
		}
		return nil, apperrors.MapStoreError(err, "item")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("item", nil)
		}
		return nil, apperrors.MapStoreError(err, "item")
	}
	return item, nil
}

// DeleteItem removes a single item.
func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		return apperrors.MapStoreError(err, "item")
	}
	if !deleted {
		return apperrors.NewNotFound("item", nil)
	}
	return nil
}

// BatchDeleteItems applies DeleteItem per id, continuing on error and
// reporting a per-id outcome.
func (s *CatalogService) BatchDeleteItems(ctx context.Context, ids []int64) []BatchDeleteResult {
	results := make([]BatchDeleteResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, batchOutcome(id, s.DeleteItem(ctx, id)))
	}
	return results
}

func (s *CatalogService) getCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", nil)
		}
		return nil, apperrors.MapStoreError(err, "category")
	}
	return category, nil
}

// checkReparent walks the ancestor chain of the proposed parent
// iteratively, bounded by maxAncestorWalk, refusing cross-kind moves
// and moves under the category's own subtree.
func (s *CatalogService) checkReparent(ctx context.Context, category *domain.Category, newParentID int64) error {
	if newParentID == category.ID {
		return apperrors.NewInvalidOperation("category cannot be its own parent", nil)
	}

	parent, err := s.getCategory(ctx, newParentID)
	if err != nil {
		return err
	}
	if parent.Kind != category.Kind {
		return apperrors.NewInvalidOperation("parent belongs to a different catalog", nil)
	}

	ancestor := parent
	for depth := 0; ancestor.ParentID != nil; depth++ {
		if depth >= maxAncestorWalk {
			return apperrors.NewInvalidOperation("ancestor chain too deep", nil)
		}
		if *ancestor.ParentID == category.ID {
			return apperrors.NewInvalidOperation("parent is a descendant of the category", nil)
		}
		ancestor, err = s.getCategory(ctx, *ancestor.ParentID)
		if err != nil {
			return err
		}
	}
	return nil
}

func batchOutcome(id int64, err error) BatchDeleteResult {
	if err == nil {
		return BatchDeleteResult{ID: id, Deleted: true}
	}
	domainErr := apperrors.ToDomainError(err)
	return BatchDeleteResult{ID: id, Code: domainErr.Code, Message: domainErr.Message}
}
