package events

import (
	"time"

	"github.com/spec-kit/content-platform/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStoryCreated   EventType = "story_created"
	EventStoryPublished EventType = "story_published"
	EventStoryUpdated   EventType = "story_updated"
	EventStoryDeleted   EventType = "story_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	StoryID   int64       `json:"story_id"`
	AuthorID  int64       `json:"author_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StoryCreatedPayload payload.
type StoryCreatedPayload struct {
	Title string `json:"title"`
}

// StoryPublishedPayload payload.
type StoryPublishedPayload struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// StoryUpdatedPayload payload.
type StoryUpdatedPayload struct {
	Status domain.StoryStatus `json:"status"`
}

// StoryDeletedPayload payload.
type StoryDeletedPayload struct {
	Status domain.StoryStatus `json:"status"`
}
