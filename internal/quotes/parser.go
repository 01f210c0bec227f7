package quotes

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/goldrate/internal/domain/models"
)

const (
	// statementPrefix marks the feed statements we care about:
	//
	//	var hq_str_gds_AUTD="480.50,0,0,0,482.00,478.00,0,479.00,481.00,0,0";
	statementPrefix = "var hq_str_"
	namePrefix      = "hq_str_"

	// MinFields is the smallest record Normalize accepts (index 8 is the
	// last field it reads).
	MinFields = 9

	// quoteCutset is stripped around values and individual fields.
	quoteCutset = " \t\r\n\"'"
)

// Positional layout of a quote record. Indices 1-3, 6 and everything past 8
// exist upstream but are not used.
const (
	fieldPrice         = 0
	fieldHigh          = 4
	fieldLow           = 5
	fieldPreviousClose = 7
	fieldOpen          = 8
)

var errNotFinite = errors.New("value is not finite")

// ParseFeed turns the upstream JavaScript payload into a Feed.
//
// It never fails: statements that do not look like `var hq_str_<code>=...`
// are skipped, and an empty or unrecognised body yields an empty Feed.
func ParseFeed(text string) models.Feed {
	feed, _ := ParseFeedStats(text)
	return feed
}

// ParseFeedStats is ParseFeed plus the number of non-empty statements it
// dropped, so callers can log partial upstream breakage.
func ParseFeedStats(text string) (models.Feed, int) {
	feed := models.Feed{}
	skipped := 0

	for _, stmt := range strings.Split(text, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		code, rec, ok := parseStatement(stmt)
		if !ok {
			skipped++
			continue
		}
		feed[code] = rec
	}
	return feed, skipped
}

// parseStatement splits one trimmed statement on its first '='. The name
// token after "var" gives the code; the quoted value gives the fields.
func parseStatement(stmt string) (models.InstrumentCode, models.RawQuoteRecord, bool) {
	if !strings.HasPrefix(stmt, statementPrefix) {
		return "", nil, false
	}
	lhs, rhs, ok := strings.Cut(stmt, "=")
	if !ok {
		return "", nil, false
	}

	tokens := strings.Fields(lhs)
	if len(tokens) != 2 {
		return "", nil, false
	}
	code := strings.TrimPrefix(tokens[1], namePrefix)
	if code == "" {
		return "", nil, false
	}

	value := strings.Trim(rhs, quoteCutset)
	return models.InstrumentCode(code), models.RawQuoteRecord(strings.Split(value, ",")), true
}

// Normalize converts a raw record into a PriceRecord.
//
// Field layout:
//
//	0 current price
//	4 high
//	5 low
//	7 previous close
//	8 today's open
//
// Fewer than MinFields fields gives *IncompleteRecordError; a required
// field that is not a finite number gives *MalformedFieldError.
func Normalize(rec models.RawQuoteRecord) (models.PriceRecord, error) {
	var pr models.PriceRecord

	if len(rec) < MinFields {
		return pr, &IncompleteRecordError{Fields: len(rec)}
	}

	var err error
	if pr.Price, err = parseField(rec, fieldPrice, "price"); err != nil {
		return models.PriceRecord{}, err
	}
	if pr.High, err = parseField(rec, fieldHigh, "high"); err != nil {
		return models.PriceRecord{}, err
	}
	if pr.Low, err = parseField(rec, fieldLow, "low"); err != nil {
		return models.PriceRecord{}, err
	}
	if pr.PreviousClose, err = parseField(rec, fieldPreviousClose, "previous close"); err != nil {
		return models.PriceRecord{}, err
	}
	if pr.Open, err = parseField(rec, fieldOpen, "open"); err != nil {
		return models.PriceRecord{}, err
	}

	pr.Change = pr.Price - pr.PreviousClose
	pr.ChangeRatePercent = changeRate(pr.Change, pr.PreviousClose)
	return pr, nil
}

// changeRate is 100*change/previousClose, or 0 when previousClose is 0.
// The magnitude of previousClose is used so the sign always follows change.
func changeRate(change, previousClose float64) float64 {
	if previousClose == 0 || change == 0 {
		return 0
	}
	return 100 * change / math.Abs(previousClose)
}

func parseField(rec models.RawQuoteRecord, idx int, name string) (float64, error) {
	raw := strings.Trim(rec[idx], quoteCutset)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &MalformedFieldError{Index: idx, Field: name, Value: rec[idx], Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedFieldError{Index: idx, Field: name, Value: rec[idx], Err: errNotFinite}
	}
	return v, nil
}
