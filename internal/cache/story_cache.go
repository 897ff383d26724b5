package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/events"
)

const latestKeyPrefix = "stories:latest:"

// StoryCache keeps the first page of the public latest-stories listing
// in Redis. It is strictly an optimization: every failure degrades to
// the repository path.
type StoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStoryCache constructs the cache.
func NewStoryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StoryCache {
	return &StoryCache{client: client, ttl: ttl, logger: logger}
}

// GetLatest returns the cached listing for the given page size, if
// present.
func (c *StoryCache) GetLatest(ctx context.Context, limit int) ([]domain.Story, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, latestKey(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("story cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var stories []domain.Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		c.logger.Warn("story cache entry corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, latestKey(limit))
		return nil, false
	}
	return stories, true
}

// SetLatest stores a listing page.
func (c *StoryCache) SetLatest(ctx context.Context, limit int, stories []domain.Story) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(stories)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, latestKey(limit), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("story cache write failed", zap.Error(err))
	}
}

// Invalidate drops all cached listing pages.
func (c *StoryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, latestKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Debug("story cache invalidation failed", zap.Error(err))
	}
}

// RegisterInvalidation subscribes to story events so any mutation of
// published content drops the listing.
func (c *StoryCache) RegisterInvalidation(dispatcher events.Dispatcher) {
	if c == nil || dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		c.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventStoryPublished, handler)
	dispatcher.Subscribe(events.EventStoryUpdated, handler)
	dispatcher.Subscribe(events.EventStoryDeleted, handler)
}

func latestKey(limit int) string {
	return fmt.Sprintf("%s%d", latestKeyPrefix, limit)
}
