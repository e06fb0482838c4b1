// Package main is the entry point for the usage analytics CLI.
// It loads configuration and input files, runs the analysis engine and
// prints the report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"

	"github.com/j-veylop/usage-analytics/internal/config"
	"github.com/j-veylop/usage-analytics/internal/dataset"
	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/report"
	"github.com/j-veylop/usage-analytics/internal/services"
	"github.com/j-veylop/usage-analytics/internal/version"
)

const defaultWidth = 100

type options struct {
	json   bool
	notify bool
}

func main() {
	opts := options{}
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v", "--version":
			fmt.Println(version.Info())
			os.Exit(0)
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--json":
			opts.json = true
		case "--notify":
			opts.notify = true
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown flag %q\n\n", arg)
			printUsage()
			os.Exit(2)
		}
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run(opts options, out io.Writer) error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// 2. Read inputs
	records, err := dataset.LoadRecords(cfg.RecordsPath)
	if err != nil {
		return err
	}
	pricing, err := dataset.LoadPricing(cfg.PricingPath)
	if err != nil {
		return err
	}

	// 3. Build the engine
	engine := services.NewEngine(cfg)
	engine.LoadPricing(pricing)

	// 4. Cancel the analysis on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := engine.Analyze(ctx, records, engine.ConfiguredBudget())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if opts.notify {
		if sent := engine.NotifyCritical(rep); sent > 0 {
			logger.Info("sent notifications", "count", sent)
		}
	}

	// 5. Print the report
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	_, err = fmt.Fprintln(out, report.Render(rep, terminalWidth()))
	return err
}

func terminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`usage-analytics - API usage cost and trend analysis

Usage:
  usage-analytics [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information
  --json          Print the report as JSON
  --notify        Send a desktop notification for critical insights

Environment Variables:
  RECORDS_PATH                Usage records JSON file (default: usage.json)
  PRICING_PATH                Pricing history JSON file (default: pricing.json)
  COST_CURRENCY               Report currency (default: USD)
  COST_TAX_RATE               Tax rate in percent
  COST_INCLUDE_TAX            Apply the tax rate to computed costs
  BUDGET_MONTHLY_LIMIT        Monthly budget; 0 disables budget analysis
  TREND_ANALYSIS_PERIOD_DAYS  Days of history analyzed for trends
  INSIGHTS_MIN_CONFIDENCE     Minimum confidence of reported insights
  LOG_LEVEL                   debug, info, warn or error

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/usage-analytics/.env
  - ~/.usage-analytics/.env`)
}
