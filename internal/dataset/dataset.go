// Package dataset reads usage records and pricing history from JSON files.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
)

// ErrInvalidFormat is returned when a file is neither a JSON array nor an
// object wrapping one.
var ErrInvalidFormat = errors.New("invalid format")

// RecordsFile is the wrapped form of a records file.
type RecordsFile struct {
	Records []models.UsageRecord `json:"records"`
	Version int                  `json:"version,omitempty"`
}

// PricingFile is the wrapped form of a pricing file.
type PricingFile struct {
	Pricing []models.PricingInfo `json:"pricing"`
	Version int                  `json:"version,omitempty"`
}

// LoadRecords reads usage records from path. Records without an ID get
// the same content-derived ID NewUsageRecord assigns.
func LoadRecords(path string) ([]models.UsageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	records, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("records loaded", "path", path, "count", len(records))
	return records, nil
}

// ParseRecords decodes either a bare array of records or a RecordsFile.
func ParseRecords(data []byte) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	switch firstByte(data) {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
	case '{':
		var file RecordsFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		records = file.Records
	default:
		return nil, fmt.Errorf("failed to parse records: %w", ErrInvalidFormat)
	}

	for i := range records {
		r := &records[i]
		if r.Model == "" {
			return nil, fmt.Errorf("record %d: missing model", i)
		}
		if r.InputTokens < 0 || r.OutputTokens < 0 {
			return nil, fmt.Errorf("record %d: negative token count", i)
		}
		if r.ID == "" {
			fresh := models.NewUsageRecord(r.Timestamp, r.Model, r.InputTokens, r.OutputTokens, r.Cost)
			r.ID = fresh.ID
		}
		r.Timestamp = r.Timestamp.UTC()
	}
	if records == nil {
		records = []models.UsageRecord{}
	}
	return records, nil
}

// LoadPricing reads price history from path.
func LoadPricing(path string) ([]models.PricingInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing: %w", err)
	}

	entries, err := ParsePricing(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("pricing loaded", "path", path, "count", len(entries))
	return entries, nil
}

// ParsePricing decodes either a bare array of entries or a PricingFile.
func ParsePricing(data []byte) ([]models.PricingInfo, error) {
	var entries []models.PricingInfo
	switch firstByte(data) {
	case '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse pricing: %w", err)
		}
	case '{':
		var file PricingFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse pricing: %w", err)
		}
		entries = file.Pricing
	default:
		return nil, fmt.Errorf("failed to parse pricing: %w", ErrInvalidFormat)
	}

	for i, p := range entries {
		if p.Model == "" {
			return nil, fmt.Errorf("pricing entry %d: missing model", i)
		}
		if p.InputCostPer1K < 0 || p.OutputCostPer1K < 0 {
			return nil, fmt.Errorf("pricing entry %d: negative rate", i)
		}
	}
	return entries, nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
