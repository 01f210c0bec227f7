package app

import (
	"fmt"

	"github.com/guttosm/goldrate/config"
	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/quotes"
	"github.com/guttosm/goldrate/internal/service"
)

// Pipeline is the quote stack shared by every run mode: the upstream
// client, the cache around it and the service on top.
type Pipeline struct {
	Client      *quotes.Client
	Cache       *quotes.Cache
	Service     service.QuoteService
	Instruments []models.Instrument
}

// clientOpener is an indirection for unit testing; defaults to Client.Open.
var clientOpener = func(c *quotes.Client) error { return c.Open() }

// NewPipeline builds and opens the quote stack from cfg.
//
// Behavior:
//   - Loads the instrument mapping from cfg.Quotes.InstrumentsFile, falling
//     back to the built-in list.
//   - Opens the upstream client; an error here is returned as is.
//   - Wraps the client in a TTL cache with retry and backoff.
//
// Example usage:
//
//	p, err := app.NewPipeline(config.AppConfig)
//	if err != nil {
//	    logger.L().Fatal().Err(err).Msg("pipeline init failed")
//	}
//	defer p.Close()
func NewPipeline(cfg config.Config) (*Pipeline, error) {
	instruments := config.LoadInstruments(cfg.Quotes.InstrumentsFile)

	client := quotes.NewClient(
		quotes.WithURLTemplate(cfg.Quotes.URLTemplate),
		quotes.WithTimeout(cfg.Quotes.Timeout),
		quotes.WithUserAgent(cfg.Quotes.UserAgent),
	)
	if err := clientOpener(client); err != nil {
		return nil, fmt.Errorf("failed to open quote client: %w", err)
	}

	cache := quotes.NewCache(client,
		quotes.WithTTL(cfg.Quotes.CacheTTL),
		quotes.WithMaxAttempts(cfg.Quotes.MaxAttempts),
		quotes.WithBaseDelay(cfg.Quotes.BaseDelay),
		quotes.WithAttemptTimeout(cfg.Quotes.Timeout),
	)

	return &Pipeline{
		Client:      client,
		Cache:       cache,
		Service:     service.NewQuoteService(cache, instruments),
		Instruments: instruments,
	}, nil
}

// Codes returns the codes of every configured instrument.
func (p *Pipeline) Codes() []models.InstrumentCode {
	codes := make([]models.InstrumentCode, len(p.Instruments))
	for i, in := range p.Instruments {
		codes[i] = in.Code
	}
	return codes
}

// Ready is the readiness check of the pipeline.
func (p *Pipeline) Ready() error {
	if !p.Client.Ready() {
		return quotes.ErrClientClosed
	}
	return nil
}

// Close releases the upstream client.
func (p *Pipeline) Close() {
	_ = p.Client.Close()
}
