package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/goldrate/internal/domain/dto"
	"github.com/guttosm/goldrate/internal/middleware"
	"github.com/guttosm/goldrate/internal/service"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
)

// Handler provides HTTP handlers for the quote endpoints.
//
// Responsibilities:
//   - Read the requested instrument names from the query string
//   - Call the QuoteService, which never fails as a whole
//   - Translate quotes into response DTOs or display text
type Handler struct {
	svc service.QuoteService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.QuoteService) *Handler {
	return &Handler{svc: svc}
}

// GetQuotes handles GET /api/v1/quotes.
//
// Query Parameters:
//   - name (string, repeatable, optional): instrument name or code. Comma
//     separated lists are accepted too. Empty means every configured instrument.
//
// Unavailable instruments are part of a 200 response with available=false.
//
// GetQuotes godoc
// @Summary      Get quotes
// @Description  Returns the latest price record for each requested instrument
// @Tags         quotes
// @Produce      json
// @Param        name  query     []string  false  "Instrument name or code" collectionFormat(multi) example(Shanghai)
// @Success      200   {object}  dto.QuotesResponse  "Success"
// @Failure      429   {object}  dto.ErrorResponse   "Too Many Requests"
// @Failure      500   {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/quotes [get]
func (h *Handler) GetQuotes(c *gin.Context) {
	qs := h.svc.Quotes(c.Request.Context(), requestedNames(c))
	c.JSON(http.StatusOK, dto.NewQuotesResponse(qs))
}

// GetSummary handles GET /api/v1/quotes/summary and returns the display
// text of the requested instruments.
//
// GetSummary godoc
// @Summary      Get quote summary
// @Description  Returns the quotes rendered as plain text or Markdown, blocks separated by a blank line
// @Tags         quotes
// @Produce      plain
// @Produce      markdown
// @Param        name    query     []string  false  "Instrument name or code" collectionFormat(multi) example(London)
// @Param        format  query     string    false  "Output format" Enums(text, markdown) default(text)
// @Success      200     {string}  string             "Summary"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Router       /api/v1/quotes/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	f := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", formatText)))

	var contentType string
	switch f {
	case formatText:
		contentType = "text/plain; charset=utf-8"
	case formatMarkdown:
		contentType = "text/markdown; charset=utf-8"
	default:
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid format, expected text or markdown", nil)
		return
	}

	summary := h.svc.Summary(c.Request.Context(), requestedNames(c), f == formatMarkdown)
	c.Data(http.StatusOK, contentType, []byte(summary))
}

// ListInstruments handles GET /api/v1/instruments.
//
// ListInstruments godoc
// @Summary      List instruments
// @Description  Returns the configured instrument names and upstream codes
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  dto.InstrumentsResponse  "Success"
// @Router       /api/v1/instruments [get]
func (h *Handler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, dto.InstrumentsResponse{Instruments: h.svc.Instruments()})
}

// requestedNames collects ?name=a&name=b and ?name=a,b forms.
func requestedNames(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("name") {
		for _, n := range strings.Split(raw, ",") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}
