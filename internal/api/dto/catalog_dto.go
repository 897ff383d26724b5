package dto

import "time"

// CreateCategoryRequest payload for new categories. ParentID nil
// creates a root.
type CreateCategoryRequest struct {
	ParentID *int64 `json:"parent_id"`
	Title    string `json:"title"`
}

// PatchCategoryRequest carries partial category updates. make_root
// moves the category to the top of its catalog.
type PatchCategoryRequest struct {
	Title    *string `json:"title"`
	ParentID *int64  `json:"parent_id"`
	MakeRoot bool    `json:"make_root"`
}

// CategoryResponse is the category representation.
type CategoryResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryDetailResponse expands a category one level deep.
type CategoryDetailResponse struct {
	CategoryResponse
	Children []CategoryResponse `json:"children"`
	Items    []ItemResponse     `json:"items"`
}

// CreateItemRequest payload for new items.
type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// PatchItemRequest carries partial item updates.
type PatchItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// ItemResponse is the item representation.
type ItemResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BatchDeleteRequest lists ids to delete.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchDeleteEntry reports one id's outcome within a batch delete.
type BatchDeleteEntry struct {
	ID      int64  `json:"id"`
	Deleted bool   `json:"deleted"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
