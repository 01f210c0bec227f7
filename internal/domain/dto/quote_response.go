package dto

import (
	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/format"
	"github.com/guttosm/goldrate/internal/quotes"
)

// QuoteItem is one instrument in a QuotesResponse.
//
// When Available is false, Price is omitted and Error/ErrorKind say why.
type QuoteItem struct {
	Name      string              `json:"name" example:"Shanghai"`
	Code      string              `json:"code,omitempty" example:"gds_AUTD"`
	Available bool                `json:"available" example:"true"`
	Direction string              `json:"direction,omitempty" example:"↑"`
	Price     *models.PriceRecord `json:"price,omitempty"`
	Text      string              `json:"text" example:"Shanghai (gds_AUTD)\nPrice:      480.50 ↑"`
	ErrorKind string              `json:"error_kind,omitempty" example:"network"`
	Error     string              `json:"error,omitempty"`
}

// QuotesResponse is returned by GET /api/v1/quotes.
type QuotesResponse struct {
	Quotes []QuoteItem `json:"quotes"`
}

// InstrumentsResponse is returned by GET /api/v1/instruments.
type InstrumentsResponse struct {
	Instruments []models.Instrument `json:"instruments"`
}

// NewQuotesResponse maps service results to the API contract.
func NewQuotesResponse(qs []models.Quote) QuotesResponse {
	items := make([]QuoteItem, 0, len(qs))
	for _, q := range qs {
		item := QuoteItem{
			Name:      q.Instrument.Name,
			Code:      string(q.Instrument.Code),
			Available: q.Available(),
			Text:      format.Text(q),
		}
		if item.Available {
			item.Direction = format.Direction(q.Record.Change)
			item.Price = q.Record
		} else if q.Err != nil {
			item.ErrorKind = quotes.ErrorKind(q.Err)
			item.Error = q.Err.Error()
		}
		items = append(items, item)
	}
	return QuotesResponse{Quotes: items}
}
