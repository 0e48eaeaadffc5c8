package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FeedSource produces feed pages. *feed.Ranker implements it.
type FeedSource interface {
	Feed(ctx context.Context, req feed.Request) (*feed.Page, error)
}

// Store is the subset of *redis.Client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// FeedCache serves anonymous feed pages from Redis for a short TTL. Pages for
// signed-in viewers carry viewer flags and always go to the source.
type FeedCache struct {
	next   FeedSource
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewFeedCache wraps next with a Redis-backed page cache.
func NewFeedCache(next FeedSource, store Store, ttl time.Duration, logger zerolog.Logger) *FeedCache {
	return &FeedCache{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "feed_cache").Logger(),
	}
}

// Feed returns the cached page when one exists, otherwise builds it and
// stores it. Redis failures fall through to the source. Errors are not cached.
func (c *FeedCache) Feed(ctx context.Context, req feed.Request) (*feed.Page, error) {
	if req.ViewerID != 0 || c.ttl <= 0 {
		return c.next.Feed(ctx, req)
	}

	key := Key(req)
	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page feed.Page
		if jsonErr := json.Unmarshal(raw, &page); jsonErr == nil {
			metrics.ObserveCacheLookup("hit")
			return &page, nil
		}
		metrics.ObserveCacheLookup("error")
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cached page")
	case errors.Is(err, redis.Nil):
		metrics.ObserveCacheLookup("miss")
	default:
		metrics.ObserveCacheLookup("error")
		c.logger.Warn().Err(err).Msg("feed cache read failed")
	}

	page, err := c.next.Feed(ctx, req)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(page)
	if err != nil {
		return page, nil
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("feed cache write failed")
	}
	return page, nil
}

// Key identifies an anonymous page request.
func Key(req feed.Request) string {
	batch := "default"
	if req.BatchSize != nil {
		batch = strconv.Itoa(*req.BatchSize)
	}
	return strings.Join([]string{
		"feed:v1",
		string(feed.ParseSortMode(string(req.Sort))),
		url.QueryEscape(feed.NormalizeTag(req.Tag)),
		req.Cursor,
		batch,
	}, ":")
}
