// Package cmd - accept command
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vanquote/adapters/backend"
	"vanquote/core/currency"
	"vanquote/core/forecast"
	"vanquote/core/workflow"
	"vanquote/internal/config"
	"vanquote/internal/logging"
)

var (
	acceptRequestID string
	acceptDate      string
	acceptTier      string
	acceptBackend   string
)

// acceptCmd drives the quote acceptance workflow against a backend
var acceptCmd = &cobra.Command{
	Use:   "accept [file]",
	Short: "Accept a quoted price for a booking request",
	Long: `Drive the quotation workflow end to end: open the forecast, select a
day and staff tier, review the breakdown, and submit the acceptance to the
marketplace backend.

Examples:
  vanquote accept --request REQ-1042 --date 2025-06-14 ./forecast.json
  vanquote accept --request REQ-1042 --date 2025-06-14 --tier staff_2 ./forecast.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAccept,
}

func init() {
	acceptCmd.Flags().StringVarP(&acceptRequestID, "request", "r", "", "booking request id (required)")
	acceptCmd.Flags().StringVarP(&acceptDate, "date", "d", "", "moving date to accept (required)")
	acceptCmd.Flags().StringVarP(&acceptTier, "tier", "t", "", "staff tier (default: first tier)")
	acceptCmd.Flags().StringVar(&acceptBackend, "backend", "", "backend base URL (default: from config)")
	_ = acceptCmd.MarkFlagRequired("request")
	_ = acceptCmd.MarkFlagRequired("date")
}

func runAccept(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read forecast: %w", err)
	}
	f, err := forecast.Parse(data)
	if err != nil {
		return err
	}

	cfg := config.Get()
	baseURL := cfg.Backend.BaseURL
	if acceptBackend != "" {
		baseURL = acceptBackend
	}

	svc := backend.New(backend.Config{BaseURL: baseURL}, logging.Named("backend"))
	wfCfg := workflow.Config{
		MinDisplayDelay:  time.Duration(cfg.Workflow.MinDisplayDelayMS) * time.Millisecond,
		SubmitTimeout:    time.Duration(cfg.Backend.SubmitTimeoutSeconds) * time.Second,
		TelemetryTimeout: time.Duration(cfg.Backend.TelemetryTimeoutSeconds) * time.Second,
	}

	runPreparationGate(cfg)

	accepted := make(chan workflow.AcceptedChoice, 1)
	presenter := workflow.NewForecastPresenter(f, acceptRequestID, svc, wfCfg,
		logging.Named("workflow", zap.String("request_id", acceptRequestID)),
		workflow.ForecastCallbacks{
			OnAccept: func(choice workflow.AcceptedChoice) { accepted <- choice },
		})
	presenter.Open()
	defer presenter.Close()

	if acceptTier != "" {
		if err := presenter.SelectTier(forecast.TierID(acceptTier)); err != nil {
			return err
		}
	}

	detail, err := presenter.SelectDay(acceptDate)
	if err != nil {
		return err
	}

	// Wait out the minimum display delay before pricing is interactive.
	for !detail.Ready() {
		time.Sleep(50 * time.Millisecond)
	}

	fmtr := currency.Formatter{Symbol: cfg.Currency.Symbol}
	detail.ToggleBreakdown()
	fmt.Printf("\nPrice breakdown for %s (%s):\n", acceptDate, detail.SelectedTier())
	for _, row := range detail.Breakdown() {
		fmt.Printf("  %-20s %s\n", row.Name, row.Amount)
	}
	for _, row := range detail.Multipliers() {
		fmt.Printf("  %-20s %s\n", row.Name, row.Factor)
	}

	if err := detail.Accept(); err != nil {
		return err
	}
	fmt.Println("\nSubmitting your quote...")

	for {
		select {
		case choice := <-accepted:
			fmt.Printf("Accepted: %s at %s\n", choice.TierID, fmtr.Format(choice.Price))
			return nil
		default:
			if !detail.Submitting() {
				if msg := detail.InlineError(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// runPreparationGate shows the fixed preparation checklist before pricing
// is revealed. The forecast is already loaded here, so the gate is only
// pacing the step sequence.
func runPreparationGate(cfg *config.Config) {
	gateCfg := workflow.DefaultGateConfig()
	if cfg.Workflow.GateStepIntervalMS > 0 {
		gateCfg.StepInterval = time.Duration(cfg.Workflow.GateStepIntervalMS) * time.Millisecond
	}

	done := make(chan struct{})
	gate := workflow.NewPreparationGate(gateCfg, logging.Named("gate"), func() { close(done) })
	gate.Open()
	gate.SetLoading(false)

	fmt.Println("Preparing your quote...")
	steps := gate.Steps()
	printed := 0
	for {
		for printed <= gate.Step() && printed < len(steps) {
			fmt.Printf("  ✓ %s\n", steps[printed])
			printed++
		}
		select {
		case <-done:
			for printed < len(steps) {
				fmt.Printf("  ✓ %s\n", steps[printed])
				printed++
			}
			return
		default:
			time.Sleep(20 * time.Millisecond)
		}
	}
}
