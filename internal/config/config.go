// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Currency string
	LogLevel string

	RecordsPath string
	PricingPath string

	CostTaxRate            float64
	CostEnableBreakdown    bool
	CostIncludeTax         bool
	CostEnableOptimization bool

	AnalysisPeriodDays     int
	SmoothingFactor        float64
	AnomalyThreshold       float64
	ForecastHorizonDays    int
	EnableAnomalyDetection bool
	EnableForecasting      bool

	MinConfidence         float64
	MaxInsights           int
	EnableCostInsights    bool
	EnableUsageInsights   bool
	EnableAnomalyInsights bool
	EnableTrendInsights   bool
	EnableBudgetInsights  bool

	// BudgetMonthlyLimit of 0 means no budget is configured.
	BudgetMonthlyLimit     float64
	BudgetWarningThreshold float64
	BudgetAlertThreshold   float64
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		Currency:    getEnvString("COST_CURRENCY", defaultCurrency),
		LogLevel:    getEnvString("LOG_LEVEL", defaultLogLevel),
		RecordsPath: getEnvString("RECORDS_PATH", defaultRecordsFile),
		PricingPath: getEnvString("PRICING_PATH", defaultPricingFile),

		CostTaxRate:            getEnvFloat("COST_TAX_RATE", defaultTaxRate),
		CostEnableBreakdown:    getEnvBool("COST_ENABLE_BREAKDOWN", true),
		CostIncludeTax:         getEnvBool("COST_INCLUDE_TAX", false),
		CostEnableOptimization: getEnvBool("COST_ENABLE_OPTIMIZATION", true),

		AnalysisPeriodDays:     getEnvInt("TREND_ANALYSIS_PERIOD_DAYS", defaultAnalysisPeriodDays),
		SmoothingFactor:        getEnvFloat("TREND_SMOOTHING_FACTOR", defaultSmoothingFactor),
		AnomalyThreshold:       getEnvFloat("TREND_ANOMALY_THRESHOLD", defaultAnomalyThreshold),
		ForecastHorizonDays:    getEnvInt("TREND_FORECAST_HORIZON_DAYS", defaultForecastHorizon),
		EnableAnomalyDetection: getEnvBool("TREND_ENABLE_ANOMALY_DETECTION", true),
		EnableForecasting:      getEnvBool("TREND_ENABLE_FORECASTING", true),

		MinConfidence:         getEnvFloat("INSIGHTS_MIN_CONFIDENCE", defaultMinConfidence),
		MaxInsights:           getEnvInt("INSIGHTS_MAX", defaultMaxInsights),
		EnableCostInsights:    getEnvBool("INSIGHTS_ENABLE_COST", true),
		EnableUsageInsights:   getEnvBool("INSIGHTS_ENABLE_USAGE", true),
		EnableAnomalyInsights: getEnvBool("INSIGHTS_ENABLE_ANOMALY", true),
		EnableTrendInsights:   getEnvBool("INSIGHTS_ENABLE_TREND", true),
		EnableBudgetInsights:  getEnvBool("INSIGHTS_ENABLE_BUDGET", true),

		BudgetMonthlyLimit:     getEnvFloat("BUDGET_MONTHLY_LIMIT", 0),
		BudgetWarningThreshold: getEnvFloat("BUDGET_WARNING_THRESHOLD", defaultWarningThreshold),
		BudgetAlertThreshold:   getEnvFloat("BUDGET_ALERT_THRESHOLD", defaultAlertThreshold),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		Currency:               defaultCurrency,
		LogLevel:               defaultLogLevel,
		RecordsPath:            defaultRecordsFile,
		PricingPath:            defaultPricingFile,
		CostTaxRate:            defaultTaxRate,
		CostEnableBreakdown:    true,
		CostEnableOptimization: true,
		AnalysisPeriodDays:     defaultAnalysisPeriodDays,
		SmoothingFactor:        defaultSmoothingFactor,
		AnomalyThreshold:       defaultAnomalyThreshold,
		ForecastHorizonDays:    defaultForecastHorizon,
		EnableAnomalyDetection: true,
		EnableForecasting:      true,
		MinConfidence:          defaultMinConfidence,
		MaxInsights:            defaultMaxInsights,
		EnableCostInsights:     true,
		EnableUsageInsights:    true,
		EnableAnomalyInsights:  true,
		EnableTrendInsights:    true,
		EnableBudgetInsights:   true,
		BudgetWarningThreshold: defaultWarningThreshold,
		BudgetAlertThreshold:   defaultAlertThreshold,
	}
}

// Validate rejects values the analysis cannot work with.
func (c *Config) Validate() error {
	if c.CostTaxRate < 0 {
		return fmt.Errorf("COST_TAX_RATE must not be negative, got %v", c.CostTaxRate)
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("TREND_SMOOTHING_FACTOR must be in (0, 1], got %v", c.SmoothingFactor)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("INSIGHTS_MIN_CONFIDENCE must be in [0, 1], got %v", c.MinConfidence)
	}
	if c.BudgetMonthlyLimit < 0 {
		return fmt.Errorf("BUDGET_MONTHLY_LIMIT must not be negative, got %v", c.BudgetMonthlyLimit)
	}
	return nil
}

// HasBudget reports whether a monthly limit is configured.
func (c *Config) HasBudget() bool {
	return c.BudgetMonthlyLimit > 0
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDir, ".env"),
			filepath.Join(home, "."+appDir, ".env"),
		)
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts the forms strconv.ParseBool does plus "yes"/"no".
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
