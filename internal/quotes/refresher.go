package quotes

import (
	"context"
	"time"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/logger"
)

// Refresher keeps the cache warm for one code set by forcing a Refresh on
// a fixed interval, so readers never wait on an expired entry.
type Refresher struct {
	cache    *Cache
	codes    []models.InstrumentCode
	interval time.Duration

	// OnRefresh, when set, is called after every cycle with its result.
	OnRefresh func(models.Feed, error)
}

// NewRefresher returns a Refresher for codes. Run returns immediately when
// interval is not positive.
func NewRefresher(cache *Cache, codes []models.InstrumentCode, interval time.Duration) *Refresher {
	return &Refresher{cache: cache, codes: codes, interval: interval}
}

// Run refreshes once right away, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	log := logger.With("refresher")
	log.Info().Str("key", Key(r.codes)).Dur("interval", r.interval).Msg("refresher started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	feed, err := r.cache.Refresh(ctx, r.codes)
	log := logger.With("refresher")
	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Str("key", Key(r.codes)).Str("kind", ErrorKind(err)).Int("cache_entries", r.cache.Len()).Msg("refresh failed")
	} else if err == nil {
		log.Debug().Str("key", Key(r.codes)).Int("records", len(feed)).Int("cache_entries", r.cache.Len()).Msg("cache refreshed")
	}
	if r.OnRefresh != nil {
		r.OnRefresh(feed, err)
	}
}
