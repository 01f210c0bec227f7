package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/logger"
	"github.com/guttosm/goldrate/internal/metrics"
)

const (
	DefaultTTL         = 300 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second

	// budgetSlack covers scheduling and body reads on top of Budget.
	budgetSlack = time.Second
)

// entry is one cached fetch cycle. It is replaced whole, never patched.
type entry struct {
	feed      models.Feed
	fetchedAt time.Time
}

// Cache wraps a Fetcher with a per-code-set TTL cache and retry with
// exponential backoff.
//
// At most one fetch runs per key at a time: concurrent callers for the same
// code set wait for the in-flight fetch and share its result. Failures are
// never cached.
type Cache struct {
	fetcher     Fetcher
	ttl         time.Duration
	maxAttempts int
	baseDelay   time.Duration
	// attemptTimeout is the per-request bound of the fetcher, used to size
	// the flight context.
	attemptTimeout time.Duration
	now            func() time.Time
	sleep          func(ctx context.Context, d time.Duration) error

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// CacheOption is a configuration option for Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a fetched feed stays fresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxAttempts sets the total number of fetch attempts per cycle.
func WithMaxAttempts(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; each later delay doubles.
func WithBaseDelay(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithAttemptTimeout tells the cache how long one fetch attempt may take.
// It must match the fetcher's own timeout (see WithTimeout).
func WithAttemptTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithClock overrides time.Now for freshness checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleeper overrides the backoff wait.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) CacheOption {
	return func(c *Cache) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewCache decorates f with caching and retries.
// Defaults: TTL 300s, 3 attempts, backoff 1s doubling.
func NewCache(f Fetcher, options ...CacheOption) *Cache {
	c := &Cache{
		fetcher:        f,
		ttl:            DefaultTTL,
		maxAttempts:    DefaultMaxAttempts,
		baseDelay:      DefaultBaseDelay,
		attemptTimeout: DefaultTimeout,
		now:            time.Now,
		sleep:          sleepContext,
		entries:        make(map[string]entry),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Key encodes a code set independently of order and duplicates.
func Key(codes []models.InstrumentCode) string {
	return keyOf(sortedCodes(codes))
}

func keyOf(sorted []models.InstrumentCode) string {
	parts := make([]string, len(sorted))
	for i, code := range sorted {
		parts[i] = string(code)
	}
	return strings.Join(parts, ",")
}

// GetOrFetch returns the feed for codes, from cache when the entry is
// younger than the TTL, otherwise from the upstream with retries.
//
// The returned Feed is a private copy. An empty code set yields an empty
// Feed without touching the network.
func (c *Cache) GetOrFetch(ctx context.Context, codes []models.InstrumentCode) (models.Feed, error) {
	return c.get(ctx, codes, false)
}

// Refresh fetches codes even when the entry is still fresh and replaces it
// on success. A failed refresh leaves the previous entry in place.
func (c *Cache) Refresh(ctx context.Context, codes []models.InstrumentCode) (models.Feed, error) {
	return c.get(ctx, codes, true)
}

// Budget is the longest a fetch cycle can take: every attempt timing out
// plus every backoff wait.
func (c *Cache) Budget() time.Duration {
	total := time.Duration(c.maxAttempts) * c.attemptTimeout
	delay := c.baseDelay
	for i := 1; i < c.maxAttempts; i++ {
		total += delay
		delay *= 2
	}
	return total
}

func (c *Cache) get(ctx context.Context, codes []models.InstrumentCode, force bool) (models.Feed, error) {
	sorted := sortedCodes(codes)
	if len(sorted) == 0 {
		return models.Feed{}, nil
	}
	key := keyOf(sorted)

	if !force {
		if feed, ok := c.lookup(key); ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			log := logger.With("cache")
			log.Debug().Str("key", key).Msg("cache hit")
			return feed.Clone(), nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Another flight may have stored the key after our lookup.
		if !force {
			if feed, ok := c.lookup(key); ok {
				return feed, nil
			}
		}
		// The flight outlives any single caller: it runs on the full retry
		// budget so callers that joined it are not cut short by the first
		// caller leaving.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Budget()+budgetSlack)
		defer cancel()

		feed, err := c.fetchWithRetry(fctx, key, sorted)
		if err != nil {
			return nil, err
		}
		c.store(key, feed)
		return feed, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Feed).Clone(), nil
	}
}

// Len returns the number of cached code sets, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (models.Feed, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.feed, true
}

func (c *Cache) store(key string, feed models.Feed) {
	c.mu.Lock()
	c.entries[key] = entry{feed: feed, fetchedAt: c.now()}
	c.mu.Unlock()
}

// fetchWithRetry makes up to maxAttempts calls, sleeping baseDelay, then
// twice that, and so on between them.
func (c *Cache) fetchWithRetry(ctx context.Context, key string, codes []models.InstrumentCode) (models.Feed, error) {
	log := logger.With("cache")
	delay := c.baseDelay

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		feed, err := c.fetcher.Fetch(ctx, codes)
		if err == nil {
			if feed == nil {
				feed = models.Feed{}
			}
			if attempt > 1 {
				log.Info().Str("key", key).Int("attempt", attempt).Msg("fetch recovered after retry")
			}
			return feed, nil
		}
		lastErr = err

		ev := log.Warn().Err(err).
			Str("key", key).
			Str("kind", ErrorKind(err)).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts)
		if attempt == c.maxAttempts {
			ev.Msg("fetch failed, giving up")
			break
		}
		ev.Dur("backoff", delay).Msg("fetch failed, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("fetch %s interrupted after %d attempts: %w (last error: %w)", key, attempt, err, lastErr)
		}
		delay *= 2
	}

	metrics.RetryExhausted.Inc()
	return nil, &RetryExhaustedError{Key: key, Attempts: c.maxAttempts, Err: lastErr}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
