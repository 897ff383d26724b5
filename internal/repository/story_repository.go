package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-platform/internal/domain"
)

// StoryRepository encapsulates story persistence.
type StoryRepository interface {
	Create(ctx context.Context, story *domain.Story) error
	GetByID(ctx context.Context, id int64) (*domain.Story, error)
	Update(ctx context.Context, story *domain.Story) error
	// TransitionStatus performs the atomic check-and-set used by
	// publish: the row is updated only when its current status still
	// matches from. Returns false when no row matched.
	TransitionStatus(ctx context.Context, id int64, from, to domain.StoryStatus, publishedAt time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByAuthor(ctx context.Context, authorID int64, includeDrafts bool, limit, offset int) ([]domain.Story, error)
	ListLatest(ctx context.Context, limit, offset int) ([]domain.Story, error)
}

type storyRepository struct {
	pool *pgxpool.Pool
}

// NewStoryRepository instantiates repository.
func NewStoryRepository(pool *pgxpool.Pool) StoryRepository {
	return &storyRepository{pool: pool}
}

const storyColumns = `id, public_key, author_id, title, content, status, published_at, created_at, updated_at`

func (r *storyRepository) Create(ctx context.Context, story *domain.Story) error {
	const query = `
        INSERT INTO stories (public_key, author_id, title, content, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		story.PublicKey,
		story.AuthorID,
		story.Title,
		story.Content,
		story.Status,
	).Scan(&story.ID, &story.CreatedAt, &story.UpdatedAt)
}

func (r *storyRepository) GetByID(ctx context.Context, id int64) (*domain.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id=$1`
	var story domain.Story
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&story.ID,
		&story.PublicKey,
		&story.AuthorID,
		&story.Title,
		&story.Content,
		&story.Status,
		&story.PublishedAt,
		&story.CreatedAt,
		&story.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) Update(ctx context.Context, story *domain.Story) error {
	const query = `
        UPDATE stories SET title=$1, content=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, story.Title, story.Content, story.ID).Scan(&story.UpdatedAt)
}

func (r *storyRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.StoryStatus, publishedAt time.Time) (bool, error) {
	const query = `
        UPDATE stories SET status=$1, published_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, to, publishedAt, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *storyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *storyRepository) ListByAuthor(ctx context.Context, authorID int64, includeDrafts bool, limit, offset int) ([]domain.Story, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + storyColumns + ` FROM stories WHERE author_id=$1`
	if !includeDrafts {
		query += ` AND status='PUBLISHED'`
	}
	query += ` ORDER BY updated_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

func (r *storyRepository) ListLatest(ctx context.Context, limit, offset int) ([]domain.Story, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + storyColumns + ` FROM stories
        WHERE status='PUBLISHED'
        ORDER BY published_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

func scanStories(rows pgx.Rows) ([]domain.Story, error) {
	var result []domain.Story
	for rows.Next() {
		var story domain.Story
		if err := rows.Scan(
			&story.ID,
			&story.PublicKey,
			&story.AuthorID,
			&story.Title,
			&story.Content,
			&story.Status,
			&story.PublishedAt,
			&story.CreatedAt,
			&story.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, story)
	}
	return result, rows.Err()
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
