package filter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safetube/safetube-backend/internal/models"
)

const (
	termsSnapshotKey    = "filter:active:terms"
	keywordsSnapshotKey = "filter:active:keywords"
	channelsSnapshotKey = "filter:active:channels"
)

// snapshotCache is the slice of the redis cache the decorator needs.
type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedSource decorates a RuleSource with short-TTL redis snapshots of the
// active rule sets. Rule changes are rare and human-initiated, so a briefly
// stale snapshot costs at most one batch of over- or under-filtered content;
// Invalidate shrinks that window to the next read after any mutation.
//
// The cache is an optimization only: any cache failure falls through to the
// underlying source, and source failures still propagate to the caller.
type CachedSource struct {
	source RuleSource
	cache  snapshotCache
	ttl    time.Duration
}

func NewCachedSource(source RuleSource, cache snapshotCache, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl}
}

func (c *CachedSource) ActiveTerms(ctx context.Context) ([]models.BlockedTerm, error) {
	var terms []models.BlockedTerm
	if ok := c.lookup(ctx, termsSnapshotKey, &terms); ok {
		return terms, nil
	}
	terms, err := c.source.ActiveTerms(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, termsSnapshotKey, terms)
	return terms, nil
}

func (c *CachedSource) ActiveKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	var keywords []models.BlockedKeyword
	if ok := c.lookup(ctx, keywordsSnapshotKey, &keywords); ok {
		return keywords, nil
	}
	keywords, err := c.source.ActiveKeywords(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, keywordsSnapshotKey, keywords)
	return keywords, nil
}

func (c *CachedSource) ActiveChannels(ctx context.Context) ([]models.BlockedChannel, error) {
	var channels []models.BlockedChannel
	if ok := c.lookup(ctx, channelsSnapshotKey, &channels); ok {
		return channels, nil
	}
	channels, err := c.source.ActiveChannels(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, channelsSnapshotKey, channels)
	return channels, nil
}

// Invalidate drops all three snapshots. Called after every rule mutation.
func (c *CachedSource) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, termsSnapshotKey, keywordsSnapshotKey, channelsSnapshotKey); err != nil {
		slog.Warn("rule snapshot invalidation failed", "error", err)
	}
}

func (c *CachedSource) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := c.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("rule snapshot read failed, falling through to store", "key", key, "error", err)
	}
	return false
}

func (c *CachedSource) fill(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		slog.Warn("rule snapshot write failed", "key", key, "error", err)
	}
}
