// Package query is the server-side view cache. Reads go through Fetch under
// a Key; mutations call Invalidate for the entity they touched so the next
// read goes back to the store.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options tunes the client.
type Options struct {
	// StaleTime is how long a fetched view is served from cache. Zero disables caching.
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry int
	// RetryDelay is multiplied by the attempt number between attempts.
	RetryDelay time.Duration
}

// Client caches fetched views and coalesces concurrent fetches of one key.
type Client struct {
	cache  Cache
	opts   Options
	logger *zap.Logger
	group  singleflight.Group

	mu     sync.Mutex
	epochs map[string]uint64
}

func NewClient(cache Cache, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	return &Client{
		cache:  cache,
		opts:   opts,
		logger: logger,
		epochs: make(map[string]uint64),
	}
}

// Cache exposes the backing cache.
func (c *Client) Cache() Cache {
	return c.cache
}

// Fetcher loads a view from its source.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached view under key when present, otherwise runs
// fetch. At most one fetch per key is in flight; callers arriving meanwhile
// share its result. Failed fetches are retried and never cached. A caller
// whose ctx ends stops waiting, but the shared fetch carries on for the rest.
func Fetch[T any](ctx context.Context, c *Client, key Key, fetch Fetcher[T]) (T, error) {
	var zero T
	k := key.String()

	if raw, ok, err := c.cache.Get(ctx, k); err != nil {
		c.logger.Warn("query cache read failed", zap.String("key", k), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding undecodable cached view", zap.String("key", k))
	}

	epoch := c.epoch(key.Entity)
	flight := k + "#" + strconv.FormatUint(epoch, 10)
	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := c.retry(shared, k, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
		if err != nil {
			return nil, err
		}
		c.store(shared, key, epoch, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Client) retry(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.Retry; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.opts.RetryDelay):
			}
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		c.logger.Warn("query fetch failed",
			zap.String("key", key),
			zap.Int("attempt", attempt+1),
			zap.Int("attempts", c.opts.Retry+1),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

// store caches v unless the entity was invalidated while it was being fetched.
func (c *Client) store(ctx context.Context, key Key, epoch uint64, v any) {
	if c.opts.StaleTime <= 0 || c.epoch(key.Entity) != epoch {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("query view not cacheable", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key.String(), raw, c.opts.StaleTime); err != nil {
		c.logger.Warn("query cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *Client) epoch(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epochs[entity]
}

// Invalidate drops every view of the given entities, scoped or not.
func (c *Client) Invalidate(ctx context.Context, entities ...string) error {
	c.mu.Lock()
	for _, e := range entities {
		c.epochs[e]++
	}
	c.mu.Unlock()

	for _, e := range entities {
		n, err := c.cache.DeletePrefix(ctx, EntityPrefix(e))
		if err != nil {
			c.logger.Error("query invalidation failed", zap.String("entity", e), zap.Error(err))
			return fmt.Errorf("failed to invalidate %s: %w", e, err)
		}
		c.logger.Debug("query invalidated", zap.String("entity", e), zap.Int64("keys", n))
	}
	return nil
}
