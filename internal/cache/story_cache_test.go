package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/content-platform/internal/cache"
	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/events"
)

func newTestCache(t *testing.T) (*cache.StoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewStoryCache(client, time.Minute, zap.NewNop()), mr
}

func sampleStories() []domain.Story {
	return []domain.Story{
		{ID: 1, PublicKey: "STY-aaaa1111", AuthorID: 7, Title: "first", Status: domain.StoryStatusPublished},
		{ID: 2, PublicKey: "STY-bbbb2222", AuthorID: 8, Title: "second", Status: domain.StoryStatusPublished},
	}
}

func TestLatestRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetLatest(ctx, 20)
	assert.False(t, ok)

	c.SetLatest(ctx, 20, sampleStories())

	got, ok := c.GetLatest(ctx, 20)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "STY-aaaa1111", got[0].PublicKey)

	ttl := mr.TTL("stories:latest:20")
	assert.Equal(t, time.Minute, ttl)

	// Pages are keyed per limit.
	_, ok = c.GetLatest(ctx, 10)
	assert.False(t, ok)
}

func TestInvalidateDropsAllPages(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetLatest(ctx, 10, sampleStories())
	c.SetLatest(ctx, 20, sampleStories())
	require.NoError(t, mr.Set("unrelated", "stays"))

	c.Invalidate(ctx)

	_, ok := c.GetLatest(ctx, 10)
	assert.False(t, ok)
	_, ok = c.GetLatest(ctx, 20)
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestInvalidationOnStoryEvents(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	c.RegisterInvalidation(dispatcher)

	for _, eventType := range []events.EventType{
		events.EventStoryPublished,
		events.EventStoryUpdated,
		events.EventStoryDeleted,
	} {
		c.SetLatest(ctx, 20, sampleStories())
		_, ok := c.GetLatest(ctx, 20)
		require.True(t, ok)

		err := dispatcher.Publish(ctx, events.Event{Type: eventType, StoryID: 1})
		require.NoError(t, err)

		_, ok = c.GetLatest(ctx, 20)
		assert.False(t, ok, "cache survived %s", eventType)
	}
}

func TestCorruptEntryDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("stories:latest:20", "{not json"))

	_, ok := c.GetLatest(ctx, 20)
	assert.False(t, ok)
	assert.False(t, mr.Exists("stories:latest:20"))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *cache.StoryCache
	ctx := context.Background()

	c.SetLatest(ctx, 20, sampleStories())
	_, ok := c.GetLatest(ctx, 20)
	assert.False(t, ok)
	c.Invalidate(ctx)
	c.RegisterInvalidation(events.NewInMemoryDispatcher())
}
