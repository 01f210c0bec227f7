package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/metrics"
	"github.com/guttosm/goldrate/internal/quotes"
)

type stubSource struct {
	feed  models.Feed
	err   error
	calls int
	codes []models.InstrumentCode
}

func (s *stubSource) GetOrFetch(_ context.Context, codes []models.InstrumentCode) (models.Feed, error) {
	s.calls++
	s.codes = codes
	return s.feed, s.err
}

var instruments = []models.Instrument{
	{Name: "Shanghai", Code: "gds_AUTD"},
	{Name: "New York", Code: "hf_GC"},
	{Name: "London", Code: "hf_XAU"},
}

func goodRecord() models.RawQuoteRecord {
	return models.RawQuoteRecord{"480.50", "0", "0", "0", "482.00", "478.00", "0", "479.00", "481.00"}
}

func TestQuotes_MalformedSiblingDoesNotHideOthers(t *testing.T) {
	src := &stubSource{feed: models.Feed{
		"gds_AUTD": goodRecord(),
		"hf_GC":    {"2350", "0", "0"},
		"hf_XAU":   {"oops", "0", "0", "0", "1", "1", "0", "1", "1"},
	}}
	svc := NewQuoteService(src, instruments)
	incomplete := metrics.NormalizeFailures.WithLabelValues("incomplete_record")
	before := testutil.ToFloat64(incomplete)

	qs := svc.Quotes(context.Background(), nil)

	require.Equal(t, 1, src.calls, "one fetch cycle for the whole batch")
	require.ElementsMatch(t, []models.InstrumentCode{"gds_AUTD", "hf_GC", "hf_XAU"}, src.codes)
	require.Len(t, qs, 3)

	require.True(t, qs[0].Available())
	require.InDelta(t, 1.5, qs[0].Record.Change, 1e-9)

	var inc *quotes.IncompleteRecordError
	require.ErrorAs(t, qs[1].Err, &inc)
	require.Nil(t, qs[1].Record)

	var mal *quotes.MalformedFieldError
	require.ErrorAs(t, qs[2].Err, &mal)

	require.Equal(t, before+1, testutil.ToFloat64(incomplete))

	summary := svc.Summary(context.Background(), nil, false)
	require.Contains(t, summary, "Shanghai (gds_AUTD)\nPrice:      480.50 ↑")
	require.Contains(t, summary, "New York (hf_GC): data unavailable")
	require.Contains(t, summary, "London (hf_XAU): data unavailable")
}

func TestQuotes_Resolution(t *testing.T) {
	src := &stubSource{feed: models.Feed{"gds_AUTD": goodRecord(), "hf_XAU": goodRecord()}}
	svc := NewQuoteService(src, instruments)

	qs := svc.Quotes(context.Background(), []string{" shanghai ", "hf_XAU", "Tokyo", "SHANGHAI", "tokyo", ""})

	require.Len(t, qs, 3)
	require.Equal(t, "Shanghai", qs[0].Instrument.Name)
	require.True(t, qs[0].Available())
	require.Equal(t, "London", qs[1].Instrument.Name)
	require.True(t, qs[1].Available())

	require.Equal(t, "Tokyo", qs[2].Instrument.Name)
	var uns *quotes.UnsupportedInstrumentError
	require.ErrorAs(t, qs[2].Err, &uns)

	require.Equal(t, []models.InstrumentCode{"gds_AUTD", "hf_XAU"}, src.codes)
}

func TestQuotes_OnlyUnsupportedSkipsFetch(t *testing.T) {
	src := &stubSource{}
	svc := NewQuoteService(src, instruments)

	qs := svc.Quotes(context.Background(), []string{"Tokyo"})
	require.Len(t, qs, 1)
	require.Equal(t, "unsupported_instrument", quotes.ErrorKind(qs[0].Err))
	require.Zero(t, src.calls)
	require.Equal(t, "Tokyo: data unavailable (unsupported instrument)", svc.Summary(context.Background(), []string{"Tokyo"}, false))
}

func TestQuotes_FetchFailure(t *testing.T) {
	boom := &quotes.RetryExhaustedError{Key: "gds_AUTD,hf_GC", Attempts: 3, Err: errors.New("down")}
	src := &stubSource{err: boom}
	svc := NewQuoteService(src, instruments)

	qs := svc.Quotes(context.Background(), []string{"Shanghai", "New York", "Tokyo"})

	require.Len(t, qs, 3)
	require.ErrorIs(t, qs[0].Err, boom)
	require.ErrorIs(t, qs[1].Err, boom)
	var uns *quotes.UnsupportedInstrumentError
	require.ErrorAs(t, qs[2].Err, &uns, "unsupported keeps its own reason")

	require.Equal(t,
		"Shanghai (gds_AUTD): data unavailable\n\nNew York (hf_GC): data unavailable\n\nTokyo: data unavailable (unsupported instrument)",
		svc.Summary(context.Background(), []string{"Shanghai", "New York", "Tokyo"}, false))
}

func TestQuotes_MissingFromFeed(t *testing.T) {
	src := &stubSource{feed: models.Feed{"gds_AUTD": goodRecord()}}
	svc := NewQuoteService(src, instruments)

	qs := svc.Quotes(context.Background(), []string{"Shanghai", "London"})
	require.True(t, qs[0].Available())
	require.ErrorIs(t, qs[1].Err, quotes.ErrNoData)
}

func TestInstrumentsAndCodes(t *testing.T) {
	svc := NewQuoteService(&stubSource{}, instruments)

	list := svc.Instruments()
	require.Equal(t, instruments, list)
	list[0].Name = "changed"
	require.Equal(t, "Shanghai", svc.Instruments()[0].Name)

	require.Equal(t, []models.InstrumentCode{"gds_AUTD", "hf_GC", "hf_XAU"}, svc.Codes(nil))
	require.Equal(t, []models.InstrumentCode{"hf_XAU"}, svc.Codes([]string{"london", "Tokyo"}))
}
