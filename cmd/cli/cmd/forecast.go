// Package cmd - forecast command
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vanquote/core/currency"
	"vanquote/core/forecast"
	"vanquote/internal/config"
	"vanquote/internal/logging"
)

var forecastTier string

// forecastCmd renders a price forecast as a calendar
var forecastCmd = &cobra.Command{
	Use:   "forecast [file]",
	Short: "Render a price forecast calendar",
	Long: `Load a price forecast payload and render its two-month calendar,
marking the cheapest available tier per day.

Examples:
  vanquote forecast ./forecast.json
  vanquote forecast --tier staff_2 ./forecast.json`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVarP(&forecastTier, "tier", "t", "", "staff tier to display (default: first tier)")
}

func runForecast(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read forecast: %w", err)
	}

	f, err := forecast.Parse(data)
	if err != nil {
		return err
	}

	options := f.TierOptions()
	if len(options) == 0 {
		fmt.Println("Forecast has no staff tiers; no day is selectable.")
		return nil
	}

	tier := options[0]
	if forecastTier != "" {
		tier = forecast.TierID(forecastTier)
		if _, found := findTier(options, tier); !found {
			return fmt.Errorf("unknown tier %q (have %v)", forecastTier, options)
		}
	}

	logging.Info("rendering forecast")
	fmtr := currency.Formatter{Symbol: config.Get().Currency.Symbol}

	fmt.Printf("Pricing configuration: %s\n", f.PricingConfiguration)
	fmt.Printf("Displayed tier:        %s\n\n", tier)

	for _, month := range f.Months() {
		fmt.Println(monthHeading(month))
		for _, day := range f.Days(month) {
			line := "  " + day.Date
			if wd, err := day.Weekday(); err == nil {
				line += " " + wd.String()[:3]
			}
			if sp, ok := day.Tier(tier); ok && sp.Available() {
				line += "  " + fmtr.Format(*sp.Price)
				if forecast.IsBest(day, tier) {
					line += "  (best price)"
				}
			} else {
				line += "  unavailable"
			}
			if day.IsHoliday {
				name := "Holiday"
				if day.HolidayName != nil {
					name = *day.HolidayName
				}
				line += "  [" + name + "]"
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
	return nil
}

func monthHeading(month string) string {
	if t, err := time.Parse("2006-01", month); err == nil {
		return t.Format("January 2006")
	}
	return month
}

func findTier(options []forecast.TierID, want forecast.TierID) (int, bool) {
	for i, opt := range options {
		if opt == want {
			return i, true
		}
	}
	return 0, false
}
