package models

// RawQuoteRecord is the ordered list of CSV fields taken from one
// `var hq_str_<code>="...";` statement of the upstream feed.
//
// Only indices 0, 4, 5, 7 and 8 carry meaning here; a record with fewer
// than 9 fields is incomplete.
type RawQuoteRecord []string

// Feed maps every instrument code found in one upstream response to its
// raw record. A Feed is produced whole by one fetch cycle and never merged
// with the result of another cycle.
type Feed map[InstrumentCode]RawQuoteRecord

// Clone returns a shallow copy of the feed. Records are shared; they are
// never modified after parsing.
func (f Feed) Clone() Feed {
	out := make(Feed, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// PriceRecord is the typed view of a RawQuoteRecord.
//
// Change is Price - PreviousClose. ChangeRatePercent is 100*Change/PreviousClose,
// or 0 when PreviousClose is 0.
type PriceRecord struct {
	Price             float64 `json:"price" example:"480.50"`
	Open              float64 `json:"open" example:"481.00"`
	High              float64 `json:"high" example:"482.00"`
	Low               float64 `json:"low" example:"478.00"`
	PreviousClose     float64 `json:"previous_close" example:"479.00"`
	Change            float64 `json:"change" example:"1.50"`
	ChangeRatePercent float64 `json:"change_rate_percent" example:"0.31"`
}

// Quote is the per-instrument outcome of one query. Exactly one of Record
// and Err is set.
type Quote struct {
	Instrument Instrument
	Record     *PriceRecord
	Err        error
}

// Available reports whether the quote carries a price record.
func (q Quote) Available() bool {
	return q.Record != nil && q.Err == nil
}
