package service

import (
	"context"
	"strings"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/format"
	"github.com/guttosm/goldrate/internal/logger"
	"github.com/guttosm/goldrate/internal/metrics"
	"github.com/guttosm/goldrate/internal/quotes"
)

// FeedSource returns the parsed upstream feed for a set of codes.
// *quotes.Cache is the production implementation.
type FeedSource interface {
	GetOrFetch(ctx context.Context, codes []models.InstrumentCode) (models.Feed, error)
}

// QuoteService is the one operation the hosts (HTTP API, CLI) consume:
// given instrument names, return per-instrument quotes or display text.
//
// It never returns an error; every failure ends up as an unavailable Quote.
type QuoteService interface {
	Quotes(ctx context.Context, names []string) []models.Quote
	Summary(ctx context.Context, names []string, rich bool) string
	Instruments() []models.Instrument
	Codes(names []string) []models.InstrumentCode
}

type quoteService struct {
	source      FeedSource
	instruments []models.Instrument
	byName      map[string]models.Instrument
	byCode      map[models.InstrumentCode]models.Instrument
}

// NewQuoteService builds the service over a feed source and the configured
// instruments.
func NewQuoteService(source FeedSource, instruments []models.Instrument) QuoteService {
	s := &quoteService{
		source:      source,
		instruments: append([]models.Instrument(nil), instruments...),
		byName:      make(map[string]models.Instrument, len(instruments)),
		byCode:      make(map[models.InstrumentCode]models.Instrument, len(instruments)),
	}
	for _, in := range instruments {
		s.byName[strings.ToLower(strings.TrimSpace(in.Name))] = in
		if _, ok := s.byCode[in.Code]; !ok {
			s.byCode[in.Code] = in
		}
	}
	return s
}

func (s *quoteService) Instruments() []models.Instrument {
	return append([]models.Instrument(nil), s.instruments...)
}

// Quotes resolves names (case-insensitive name, or exact code) and fetches
// every resolved code in a single cycle. An empty names list means all
// configured instruments. Each instrument is normalized on its own, so one
// malformed record never hides its siblings.
func (s *quoteService) Quotes(ctx context.Context, names []string) []models.Quote {
	log := logger.With("service")

	out, codes := s.resolve(names)
	if len(codes) == 0 {
		return out
	}

	feed, err := s.source.GetOrFetch(ctx, codes)
	if err != nil {
		log.Error().Err(err).
			Str("codes", quotes.Key(codes)).
			Str("kind", quotes.ErrorKind(err)).
			Msg("quote fetch failed")
		for i := range out {
			if out[i].Err == nil {
				out[i].Err = err
			}
		}
		return out
	}

	for i := range out {
		if out[i].Err != nil {
			continue
		}
		code := out[i].Instrument.Code
		rec, ok := feed[code]
		if !ok {
			out[i].Err = quotes.ErrNoData
			log.Warn().Str("code", string(code)).Msg("instrument missing from feed")
			continue
		}
		pr, err := quotes.Normalize(rec)
		if err != nil {
			kind := quotes.ErrorKind(err)
			metrics.NormalizeFailures.WithLabelValues(kind).Inc()
			log.Warn().Err(err).Str("code", string(code)).Str("kind", kind).Msg("quote record rejected")
			out[i].Err = err
			continue
		}
		out[i].Record = &pr
	}
	return out
}

// Codes returns the codes Quotes would fetch for names, so a refresher can
// warm exactly the cache entry those queries read.
func (s *quoteService) Codes(names []string) []models.InstrumentCode {
	_, codes := s.resolve(names)
	return codes
}

func (s *quoteService) Summary(ctx context.Context, names []string, rich bool) string {
	return format.Summary(s.Quotes(ctx, names), rich)
}

// resolve maps requested names to instruments, in request order and without
// duplicates. Unknown names come back with *quotes.UnsupportedInstrumentError.
func (s *quoteService) resolve(names []string) ([]models.Quote, []models.InstrumentCode) {
	var requested []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			requested = append(requested, n)
		}
	}
	if len(requested) == 0 {
		for _, in := range s.instruments {
			requested = append(requested, in.Name)
		}
	}

	out := make([]models.Quote, 0, len(requested))
	codes := make([]models.InstrumentCode, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))

	for _, name := range requested {
		in, ok := s.lookup(name)
		if !ok {
			key := "?" + strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, models.Quote{
				Instrument: models.Instrument{Name: name},
				Err:        &quotes.UnsupportedInstrumentError{Name: name},
			})
			continue
		}
		key := strings.ToLower(in.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Quote{Instrument: in})
		codes = append(codes, in.Code)
	}
	return out, codes
}

func (s *quoteService) lookup(name string) (models.Instrument, bool) {
	if in, ok := s.byName[strings.ToLower(name)]; ok {
		return in, true
	}
	in, ok := s.byCode[models.InstrumentCode(name)]
	return in, ok
}
