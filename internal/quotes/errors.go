package quotes

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by Client.Fetch when Open has not been called
// or Close already ran.
var ErrClientClosed = errors.New("quotes: client is not open")

// ErrNoData is reported for an instrument whose code is absent from an
// otherwise successful feed.
var ErrNoData = errors.New("quotes: no record for instrument in feed")

// ErrBodyTooLarge is returned by Client.Fetch when the upstream response
// exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("quotes: upstream body too large")

// NetworkError reports a transport-level failure (connection refused,
// DNS, timeout, cancelled context) for one upstream request.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error requesting %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response from the upstream endpoint.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("upstream %s returned http %d", e.URL, e.StatusCode)
}

// IncompleteRecordError is returned by Normalize for records with fewer
// than MinFields fields.
type IncompleteRecordError struct {
	Fields int
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("incomplete record: %d fields, need at least %d", e.Fields, MinFields)
}

// MalformedFieldError is returned by Normalize when a required field is not
// a finite number.
type MalformedFieldError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s (field %d) %q: %v", e.Field, e.Index, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s (field %d) %q", e.Field, e.Index, e.Value)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// UnsupportedInstrumentError is reported for a requested name that is not
// in the instrument configuration.
type UnsupportedInstrumentError struct {
	Name string
}

func (e *UnsupportedInstrumentError) Error() string {
	return fmt.Sprintf("unsupported instrument %q", e.Name)
}

// RetryExhaustedError wraps the last failure once every attempt for a code
// set has failed.
type RetryExhaustedError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.Key, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// ErrorKind returns a short, stable label for err, used in logs and metric
// labels.
func ErrorKind(err error) string {
	var (
		netErr    *NetworkError
		statusErr *HTTPStatusError
		incErr    *IncompleteRecordError
		malErr    *MalformedFieldError
		unsErr    *UnsupportedInstrumentError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrClientClosed):
		return "client_closed"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrBodyTooLarge):
		return "body_too_large"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &incErr):
		return "incomplete_record"
	case errors.As(err, &malErr):
		return "malformed_field"
	case errors.As(err, &unsErr):
		return "unsupported_instrument"
	default:
		return "unknown"
	}
}
