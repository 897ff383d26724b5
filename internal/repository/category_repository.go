package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-platform/internal/domain"
)

// maxSubtreeDepth bounds the cascade work-list. A chain deeper than
// this is treated as corrupt rather than walked forever.
const maxSubtreeDepth = 64

// CategoryRepository encapsulates category persistence for all three
// catalog kinds.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	ListRoots(ctx context.Context, kind domain.CatalogKind) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error)
	// DeleteSubtree removes the category, all descendant categories and
	// every contained item inside a single transaction. Returns the
	// number of categories and items removed; zero categories means the
	// root did not exist.
	DeleteSubtree(ctx context.Context, rootID int64) (categories int64, items int64, err error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `id, kind, parent_id, title, created_at, updated_at`

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (kind, parent_id, title)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		category.Kind,
		category.ParentID,
		category.Title,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Kind,
		&category.ParentID,
		&category.Title,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `
        UPDATE categories SET title=$1, parent_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, category.Title, category.ParentID, category.ID).Scan(&category.UpdatedAt)
}

func (r *categoryRepository) ListRoots(ctx context.Context, kind domain.CatalogKind) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
        WHERE kind=$1 AND parent_id IS NULL ORDER BY title`
	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (r *categoryRepository) ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
        WHERE parent_id=$1 ORDER BY title`
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (r *categoryRepository) DeleteSubtree(ctx context.Context, rootID int64) (int64, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Gather the whole subtree with an explicit work-list instead of
	// recursion; children are collected level by level so they can be
	// deleted in reverse order without tripping the parent FK.
	levels := [][]int64{{rootID}}
	subtree := []int64{rootID}
	for len(levels[len(levels)-1]) > 0 {
		if len(levels) > maxSubtreeDepth {
			return 0, 0, fmt.Errorf("category %d subtree exceeds depth %d", rootID, maxSubtreeDepth)
		}
		rows, err := tx.Query(ctx, `SELECT id FROM categories WHERE parent_id = ANY($1)`, levels[len(levels)-1])
		if err != nil {
			return 0, 0, err
		}
		var next []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return 0, 0, err
			}
			next = append(next, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, 0, err
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		subtree = append(subtree, next...)
	}

	itemsCmd, err := tx.Exec(ctx, `DELETE FROM items WHERE category_id = ANY($1)`, subtree)
	if err != nil {
		return 0, 0, err
	}

	var categoriesDeleted int64
	for i := len(levels) - 1; i >= 0; i-- {
		cmd, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = ANY($1)`, levels[i])
		if err != nil {
			return 0, 0, err
		}
		categoriesDeleted += cmd.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return categoriesDeleted, itemsCmd.RowsAffected(), nil
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Kind,
			&category.ParentID,
			&category.Title,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
