// Package backend is the HTTP adapter for the marketplace REST backend.
// It implements the workflow's Service contract: quote submission on the
// critical path and best-effort selection telemetry.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vanquote/core/workflow"
	"vanquote/internal/errors"
)

// Config holds backend client configuration
type Config struct {
	// BaseURL is the backend base URL
	BaseURL string `json:"base_url"`

	// RequestTimeout is the transport-level ceiling per call. Workflow
	// callers additionally bound calls with their own context timeouts.
	RequestTimeout time.Duration `json:"request_timeout"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
	}
}

// Client talks to the marketplace backend
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Client implements the workflow Service contract
var _ workflow.Service = (*Client)(nil)

// New creates a backend client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// submitBody is the wire form of a quote submission. Monetary values are
// raw numbers, never formatted strings.
type submitBody struct {
	StaffCount     string                 `json:"staff_count"`
	TotalPrice     json.Number            `json:"total_price"`
	PriceBreakdown map[string]json.Number `json:"price_breakdown"`
	RequestID      string                 `json:"requestid"`
}

// selectionBody is the wire form of the selection telemetry call
type selectionBody struct {
	Date        string      `json:"date"`
	StaffOption string      `json:"staff_option"`
	Price       json.Number `json:"price"`
}

// SubmitQuote submits the accepted choice for a booking request. Success
// is HTTP 200; any other status or transport error is a submission
// failure.
func (c *Client) SubmitQuote(ctx context.Context, sub workflow.QuoteSubmission) error {
	breakdown := make(map[string]json.Number, len(sub.Breakdown))
	for k, v := range sub.Breakdown {
		breakdown[k] = json.Number(v.String())
	}

	body := submitBody{
		StaffCount:     sub.TierID.String(),
		TotalPrice:     json.Number(sub.TotalPrice.String()),
		PriceBreakdown: breakdown,
		RequestID:      sub.RequestID,
	}

	url := fmt.Sprintf("%s/requests/%s/submit/", strings.TrimSuffix(c.cfg.BaseURL, "/"), sub.RequestID)
	status, err := c.post(ctx, url, body)
	if err != nil {
		return errors.Submission("quote submission request failed", err)
	}
	if status != http.StatusOK {
		return errors.Newf(errors.TypeSubmission, "quote submission returned status %d", status)
	}
	return nil
}

// RecordSelection records a day selection. The caller treats any error as
// non-blocking telemetry failure.
func (c *Client) RecordSelection(ctx context.Context, sel workflow.SelectionEvent) error {
	body := selectionBody{
		Date:        sel.Date,
		StaffOption: sel.TierID.String(),
		Price:       json.Number(sel.Price.String()),
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/price-selection"
	status, err := c.post(ctx, url, body)
	if err != nil {
		return errors.Network("selection telemetry request failed", err)
	}
	if status < 200 || status >= 300 {
		return errors.Newf(errors.TypeNetwork, "selection telemetry returned status %d", status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("backend call",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return resp.StatusCode, nil
}
