package config

// Default values
const (
	defaultCurrency           = "USD"
	defaultTaxRate            = 0.0
	defaultAnalysisPeriodDays = 30
	defaultSmoothingFactor    = 0.3
	defaultAnomalyThreshold   = 2.5
	defaultForecastHorizon    = 7
	defaultMinConfidence      = 0.7
	defaultMaxInsights        = 20
	defaultWarningThreshold   = 80.0
	defaultAlertThreshold     = 95.0
	defaultLogLevel           = "info"
	defaultRecordsFile        = "usage.json"
	defaultPricingFile        = "pricing.json"
)

// appDir is the per-user directory searched for .env and data files.
const appDir = "usage-analytics"
