// Package workflow implements the price quotation and acceptance workflow:
// a forecast presenter showing a two-month price calendar, a detail
// presenter showing one day's breakdown and submitting the accepted choice,
// and a preparation gate pacing perceived readiness.
//
// All presenter state is driven from a single caller at a time, the
// event-loop model of a single-user interactive session. The only asynchronous work
// is the quote submission and the best-effort selection telemetry; results
// arriving after a presenter has been closed are discarded.
package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vanquote/core/forecast"
)

// Service is the backend surface the workflow calls into. Implementations
// are expected to honour context cancellation; the workflow bounds every
// call with a timeout tied to the owning presenter's lifetime.
type Service interface {
	// SubmitQuote submits the accepted price choice for a booking
	// request. Any error is treated as a retryable failure.
	SubmitQuote(ctx context.Context, sub QuoteSubmission) error

	// RecordSelection records a day selection for analytics. Failures
	// are logged by the caller and never block the workflow.
	RecordSelection(ctx context.Context, sel SelectionEvent) error
}

// QuoteSubmission carries the user's final choice to the backend
type QuoteSubmission struct {
	// RequestID is the enclosing booking request
	RequestID string

	// TierID is the chosen staff tier
	TierID forecast.TierID

	// TotalPrice is the chosen tier's total price
	TotalPrice decimal.Decimal

	// Breakdown is the chosen tier's full component breakdown
	Breakdown map[string]decimal.Decimal
}

// SelectionEvent is the non-critical telemetry payload recorded when a
// day is selected in the forecast presenter
type SelectionEvent struct {
	// Date is the selected day
	Date string

	// TierID is the staff tier active at selection time
	TierID forecast.TierID

	// Price is the displayed price for that tier on that day
	Price decimal.Decimal
}

// DaySelection is the ephemeral record of the day currently open in the
// detail presenter. It is created when the user selects a day and
// destroyed when the detail presenter closes.
type DaySelection struct {
	// Day is the selected day, read by reference from the forecast
	Day forecast.DayPrice

	// RequestID is the enclosing booking request
	RequestID string
}

// AcceptedChoice is the pair handed to the accept callback once a
// submission succeeds. It has no storage of its own; the backend is the
// system of record for an accepted price.
type AcceptedChoice struct {
	// TierID is the accepted staff tier
	TierID forecast.TierID

	// Price is the accepted total price
	Price decimal.Decimal
}

// Config holds pacing and timeout settings shared by the presenters
type Config struct {
	// MinDisplayDelay is how long the detail presenter stays
	// non-interactive after opening, even when data is already available
	MinDisplayDelay time.Duration

	// SubmitTimeout bounds the quote submission call
	SubmitTimeout time.Duration

	// TelemetryTimeout bounds the selection telemetry call
	TelemetryTimeout time.Duration
}

// DefaultConfig returns the observed production pacing
func DefaultConfig() Config {
	return Config{
		MinDisplayDelay:  2 * time.Second,
		SubmitTimeout:    15 * time.Second,
		TelemetryTimeout: 15 * time.Second,
	}
}

// withDefaults fills unset timeouts so a zero-value Config never produces
// an already-expired context
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = def.SubmitTimeout
	}
	if c.TelemetryTimeout <= 0 {
		c.TelemetryTimeout = def.TelemetryTimeout
	}
	return c
}
