package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/format"
	"github.com/guttosm/goldrate/internal/quotes"
	"github.com/guttosm/goldrate/internal/service"
)

type staticFetcher struct {
	mu    sync.Mutex
	calls int
	feed  models.Feed
}

func (f *staticFetcher) Fetch(context.Context, []models.InstrumentCode) (models.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.feed, nil
}

func (f *staticFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// syncBuffer guards a bytes.Buffer written by the refresher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var testInstruments = []models.Instrument{
	{Name: "Shanghai", Code: "gds_AUTD"},
	{Name: "London", Code: "hf_XAU"},
}

func newTestStack() (*staticFetcher, *quotes.Cache, service.QuoteService) {
	f := &staticFetcher{feed: models.Feed{
		"gds_AUTD": {"480.50", "0", "0", "0", "482.00", "478.00", "0", "479.00", "481.00"},
	}}
	cache := quotes.NewCache(f, quotes.WithTTL(time.Hour), quotes.WithBaseDelay(0))
	return f, cache, service.NewQuoteService(cache, testInstruments)
}

func TestParseNames(t *testing.T) {
	require.Nil(t, parseNames(""))
	require.Nil(t, parseNames(" , "))
	require.Equal(t, []string{"Shanghai", "New York"}, parseNames("Shanghai, New York,"))
}

func TestNewSink(t *testing.T) {
	var buf bytes.Buffer
	_, rich := newSink(&buf, true).(format.RichSink)
	require.True(t, rich)
	_, rich = newSink(&buf, false).(format.RichSink)
	require.False(t, rich)
}

func TestRunOnce(t *testing.T) {
	_, _, svc := newTestStack()

	var buf bytes.Buffer
	unavailable, err := runOnce(context.Background(), svc, []string{"Shanghai", "London"}, newSink(&buf, false))
	require.NoError(t, err)
	require.Equal(t, 1, unavailable)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Shanghai (gds_AUTD)\nPrice:      480.50 ↑"), out)
	require.Contains(t, out, "\n\nLondon (hf_XAU): data unavailable\n")
}

func TestRunOnce_Rich(t *testing.T) {
	_, _, svc := newTestStack()

	var buf bytes.Buffer
	_, err := runOnce(context.Background(), svc, []string{"Shanghai"}, newSink(&buf, true))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(buf.String(), "**Shanghai** `gds_AUTD`"), buf.String())
}

func TestRunWatch(t *testing.T) {
	f, cache, svc := newTestStack()

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		runWatch(ctx, cache, svc, []string{"Shanghai"}, time.Hour, newSink(&out, false))
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Shanghai (gds_AUTD)")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	// The refresh and the delivery share one cache entry.
	require.Equal(t, 1, f.Calls())
}
