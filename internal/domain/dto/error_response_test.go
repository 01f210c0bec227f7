package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestErrorResponse_Error(t *testing.T) {
	e := ErrorResponse{Message: "oops"}
	if e.Error() != "oops" {
		t.Fatalf("want 'oops' got %q", e.Error())
	}
	e2 := ErrorResponse{Message: "oops", ErrorDetails: "bad"}
	if e2.Error() != "oops: bad" {
		t.Fatalf("want 'oops: bad' got %q", e2.Error())
	}
}

func TestNewErrorResponse(t *testing.T) {
	// without inner error
	e := NewErrorResponse("msg", nil)
	if e.Message != "msg" || e.ErrorDetails != "" {
		t.Fatalf("unexpected %+v", e)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Second {
		t.Fatalf("timestamp not set")
	}

	// with inner error
	err := errors.New("boom")
	e2 := NewErrorResponse("msg", err)
	if e2.ErrorDetails != "boom" || e2.Message != "msg" {
		t.Fatalf("unexpected %+v", e2)
	}
}

func TestNewErrorResponse_RateLimitBody(t *testing.T) {
	e := NewErrorResponse("rate limit exceeded", nil)
	if e.Error() != "rate limit exceeded" {
		t.Fatalf("want 'rate limit exceeded' got %q", e.Error())
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] != "rate limit exceeded" {
		t.Fatalf("unexpected message in %s", raw)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("empty details must be omitted, got %s", raw)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Fatalf("missing timestamp in %s", raw)
	}
}

func TestNewErrorResponse_UpstreamDetails(t *testing.T) {
	e := NewErrorResponse("quote fetch failed", errors.New("upstream returned http 503"))
	if e.Error() != "quote fetch failed: upstream returned http 503" {
		t.Fatalf("unexpected %q", e.Error())
	}
}
