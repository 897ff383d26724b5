package dto

import "time"

// CreateStoryRequest payload for new drafts.
type CreateStoryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PatchStoryRequest carries partial story updates.
type PatchStoryRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// StoryResponse is the full story representation returned to its
// owner; public reads use the same shape.
type StoryResponse struct {
	ID          int64      `json:"id"`
	PublicKey   string     `json:"public_key"`
	AuthorID    int64      `json:"author_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
