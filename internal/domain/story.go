package domain

import "time"

// StoryStatus enumerates lifecycle states for stories.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "DRAFT"
	StoryStatusPublished StoryStatus = "PUBLISHED"
)

// Story is the aggregate for authored content. A story is owned
// exclusively by its author and mutated only through lifecycle
// transitions; deletion is a hard delete, so there is no terminal
// state to model here.
type Story struct {
	ID          int64
	PublicKey   string
	AuthorID    int64
	Title       string
	Content     string
	Status      StoryStatus
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Published reports whether the story is visible to non-owners.
func (s *Story) Published() bool {
	return s.Status == StoryStatusPublished
}
