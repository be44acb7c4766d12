package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vanquote/core/forecast"
)

// fakeService is a controllable backend double
type fakeService struct {
	mu sync.Mutex

	submitErr error
	submits   []QuoteSubmission

	selectErr  error
	selections []SelectionEvent

	// block, when non-nil, holds SubmitQuote until closed
	block chan struct{}
}

func (s *fakeService) SubmitQuote(ctx context.Context, sub QuoteSubmission) error {
	s.mu.Lock()
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits = append(s.submits, sub)
	return s.submitErr
}

func (s *fakeService) RecordSelection(ctx context.Context, sel SelectionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = append(s.selections, sel)
	return s.selectErr
}

func (s *fakeService) submitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submits)
}

func (s *fakeService) selectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections)
}

// waitFor polls until cond holds or the deadline passes
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", msg)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func pricePtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

// testDay builds a day with two tiers: staff_1 at 99.99, staff_2 at 150
func testDay(t *testing.T) forecast.DayPrice {
	t.Helper()
	return forecast.DayPrice{
		Date:        "2025-06-14",
		IsWeekend:   true,
		WeatherType: "sunny",
		Status:      "available",
		StaffPrices: []forecast.StaffPrice{
			{
				StaffCount:  1,
				Price:       pricePtr(t, "99.99"),
				Components:  map[string]decimal.Decimal{"base_price": dec(t, "80"), "staff_cost": dec(t, "19.99")},
				Multipliers: map[string]decimal.Decimal{"time_multiplier": dec(t, "1.2")},
			},
			{
				StaffCount:  2,
				Price:       pricePtr(t, "150"),
				Components:  map[string]decimal.Decimal{"base_price": dec(t, "80"), "staff_cost": dec(t, "70")},
				Multipliers: map[string]decimal.Decimal{"time_multiplier": dec(t, "1.2")},
			},
		},
	}
}

// testForecast wraps testDay plus a day where staff_2 is unavailable
func testForecast(t *testing.T) *forecast.PriceForecast {
	t.Helper()
	gapDay := forecast.DayPrice{
		Date: "2025-06-15",
		StaffPrices: []forecast.StaffPrice{
			{StaffCount: 1, Price: pricePtr(t, "110"), Components: map[string]decimal.Decimal{"base_price": dec(t, "110")}},
			{StaffCount: 2},
		},
	}
	return &forecast.PriceForecast{
		PricingConfiguration: "cfg-test",
		MonthlyCalendar: map[string][]forecast.DayPrice{
			"2025-06": {testDay(t), gapDay},
		},
	}
}

// testConfig removes production pacing so tests run fast
func testConfig() Config {
	return Config{
		MinDisplayDelay:  0,
		SubmitTimeout:    time.Second,
		TelemetryTimeout: time.Second,
	}
}
