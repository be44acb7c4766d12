// Package cmd provides the CLI commands for vanquote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vanquote/internal/config"
	"vanquote/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vanquote",
	Short: "Drive the moving-marketplace price quotation workflow",
	Long: `vanquote renders price forecasts and drives the quote acceptance
workflow of the moving marketplace from the terminal.

Examples:
  vanquote forecast ./forecast.json
  vanquote forecast --tier staff_2 ./forecast.json
  vanquote accept --request REQ-1042 --date 2025-06-14 --tier staff_2 ./forecast.json`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vanquote.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vanquote version 0.1.0")
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = home + "/.vanquote.json"
		}
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Backend:     %s\n", cfg.Backend.BaseURL)
		fmt.Printf("Currency:    %s\n", cfg.Currency.Symbol)
		fmt.Printf("Log level:   %s\n", cfg.Logging.Level)
		return nil
	},
}
