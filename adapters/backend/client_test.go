package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"vanquote/core/workflow"
	vqerrors "vanquote/internal/errors"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testSubmission(t *testing.T) workflow.QuoteSubmission {
	t.Helper()
	return workflow.QuoteSubmission{
		RequestID:  "REQ-1042",
		TierID:     "staff_2",
		TotalPrice: dec(t, "150.00"),
		Breakdown: map[string]decimal.Decimal{
			"base_price": dec(t, "80"),
			"staff_cost": dec(t, "70"),
		},
	}
}

func TestSubmitQuote(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	if err := c.SubmitQuote(context.Background(), testSubmission(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/requests/REQ-1042/submit/" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody["staff_count"] != "staff_2" {
		t.Errorf("unexpected staff_count %v", gotBody["staff_count"])
	}
	if gotBody["requestid"] != "REQ-1042" {
		t.Errorf("unexpected requestid %v", gotBody["requestid"])
	}

	// Monetary values go over the wire as raw numbers, not strings.
	if price, ok := gotBody["total_price"].(float64); !ok || price != 150.0 {
		t.Errorf("expected numeric total_price 150, got %v (%T)", gotBody["total_price"], gotBody["total_price"])
	}
	breakdown, ok := gotBody["price_breakdown"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected breakdown map, got %T", gotBody["price_breakdown"])
	}
	if base, ok := breakdown["base_price"].(float64); !ok || base != 80.0 {
		t.Errorf("expected numeric base_price 80, got %v", breakdown["base_price"])
	}
}

func TestSubmitQuoteNon200IsFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"client error", http.StatusBadRequest},
		{"created is still not 200", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := New(Config{BaseURL: srv.URL}, nil)
			err := c.SubmitQuote(context.Background(), testSubmission(t))
			if !vqerrors.IsType(err, vqerrors.TypeSubmission) {
				t.Errorf("expected submission error, got %v", err)
			}
		})
	}
}

func TestSubmitQuoteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(Config{BaseURL: srv.URL}, nil)
	err := c.SubmitQuote(context.Background(), testSubmission(t))
	if !vqerrors.IsType(err, vqerrors.TypeSubmission) {
		t.Errorf("expected submission error, got %v", err)
	}
}

func TestSubmitQuoteHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	if err := c.SubmitQuote(ctx, testSubmission(t)); err == nil {
		t.Error("expected cancelled context to fail the call")
	}
}

func TestRecordSelection(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	sel := workflow.SelectionEvent{Date: "2025-06-14", TierID: "staff_1", Price: dec(t, "99.99")}
	if err := c.RecordSelection(context.Background(), sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/price-selection" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody["date"] != "2025-06-14" || gotBody["staff_option"] != "staff_1" {
		t.Errorf("unexpected body: %v", gotBody)
	}
	if price, ok := gotBody["price"].(float64); !ok || price != 99.99 {
		t.Errorf("expected numeric price 99.99, got %v", gotBody["price"])
	}
}

func TestRecordSelectionFailureIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	sel := workflow.SelectionEvent{Date: "2025-06-14", TierID: "staff_1", Price: dec(t, "99.99")}
	err := c.RecordSelection(context.Background(), sel)
	if !vqerrors.IsType(err, vqerrors.TypeNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}
