// Package format renders quotes as display text.
//
// Every function here is pure: the output depends only on the Quote values
// passed in, so results can be compared byte for byte.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/quotes"
)

const (
	SymbolUp   = "↑"
	SymbolDown = "↓"
	SymbolFlat = "–"

	Unavailable = "data unavailable"
)

// Direction maps the sign of change to an arrow.
func Direction(change float64) string {
	switch {
	case change > 0:
		return SymbolUp
	case change < 0:
		return SymbolDown
	default:
		return SymbolFlat
	}
}

// Text renders one quote as a plain-text block:
//
//	Shanghai (gds_AUTD)
//	Price:      480.50 ↑
//	Change:     +1.50 (+0.31%)
//	Open:       481.00
//	Prev close: 479.00
//	High:       482.00
//	Low:        478.00
func Text(q models.Quote) string {
	if !q.Available() {
		return fmt.Sprintf("%s: %s", title(q.Instrument), unavailableReason(q.Err))
	}
	r := q.Record

	var b strings.Builder
	b.WriteString(title(q.Instrument))
	fmt.Fprintf(&b, "\nPrice:      %.2f %s", r.Price, Direction(r.Change))
	fmt.Fprintf(&b, "\nChange:     %+.2f (%+.2f%%)", r.Change, r.ChangeRatePercent)
	fmt.Fprintf(&b, "\nOpen:       %.2f", r.Open)
	fmt.Fprintf(&b, "\nPrev close: %.2f", r.PreviousClose)
	fmt.Fprintf(&b, "\nHigh:       %.2f", r.High)
	fmt.Fprintf(&b, "\nLow:        %.2f", r.Low)
	return b.String()
}

// Markdown renders the same data for sinks that accept rich content.
func Markdown(q models.Quote) string {
	head := "**" + q.Instrument.Name + "**"
	if q.Instrument.Code != "" {
		head += " `" + string(q.Instrument.Code) + "`"
	}
	if !q.Available() {
		return fmt.Sprintf("%s: _%s_", head, unavailableReason(q.Err))
	}
	r := q.Record

	var b strings.Builder
	b.WriteString(head)
	fmt.Fprintf(&b, "\n- Price: **%.2f** %s", r.Price, Direction(r.Change))
	fmt.Fprintf(&b, "\n- Change: %+.2f (%+.2f%%)", r.Change, r.ChangeRatePercent)
	fmt.Fprintf(&b, "\n- Open: %.2f", r.Open)
	fmt.Fprintf(&b, "\n- Prev close: %.2f", r.PreviousClose)
	fmt.Fprintf(&b, "\n- High: %.2f", r.High)
	fmt.Fprintf(&b, "\n- Low: %.2f", r.Low)
	return b.String()
}

// Summary renders every quote and separates the blocks with a blank line.
func Summary(qs []models.Quote, rich bool) string {
	render := Text
	if rich {
		render = Markdown
	}
	blocks := make([]string, 0, len(qs))
	for _, q := range qs {
		blocks = append(blocks, render(q))
	}
	return strings.Join(blocks, "\n\n")
}

func title(in models.Instrument) string {
	if in.Code == "" {
		return in.Name
	}
	return fmt.Sprintf("%s (%s)", in.Name, in.Code)
}

func unavailableReason(err error) string {
	var uns *quotes.UnsupportedInstrumentError
	if errors.As(err, &uns) {
		return Unavailable + " (unsupported instrument)"
	}
	return Unavailable
}
