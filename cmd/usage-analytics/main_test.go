package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/j-veylop/usage-analytics/internal/models"
)

const (
	usageJSON = `[
		{"timestamp":"2024-03-18T10:00:00Z","model":"claude-3-sonnet","session_id":"s1","input_tokens":1000,"output_tokens":1000},
		{"timestamp":"2024-03-19T11:00:00Z","model":"claude-3-sonnet","session_id":"s1","input_tokens":1000,"output_tokens":1000}
	]`
	pricingJSON = `[
		{"model":"claude-3-sonnet","input_cost_per_1k":3,"output_cost_per_1k":15,"currency":"USD","effective_date":"2024-01-01T00:00:00Z","is_active":true}
	]`
)

func setup(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	for _, key := range []string{"RECORDS_PATH", "PRICING_PATH", "BUDGET_MONTHLY_LIMIT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_JSON(t *testing.T) {
	setup(t, map[string]string{"usage.json": usageJSON, "pricing.json": pricingJSON})

	var out bytes.Buffer
	if err := run(options{json: true}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var rep models.Report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("output is not a report: %v", err)
	}
	if rep.RecordCount != 2 || rep.Breakdown.TotalCost != 36 {
		t.Errorf("report = %d records / %v cost, want 2 / 36", rep.RecordCount, rep.Breakdown.TotalCost)
	}
}

func TestRun_Text(t *testing.T) {
	setup(t, map[string]string{"usage.json": usageJSON, "pricing.json": pricingJSON})

	var out bytes.Buffer
	if err := run(options{}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Usage Analytics Report") {
		t.Errorf("run() output = %q", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"MissingRecords", map[string]string{"pricing.json": pricingJSON}},
		{"MissingPricing", map[string]string{"usage.json": usageJSON}},
		{"UnpricedModel", map[string]string{"usage.json": usageJSON, "pricing.json": `[]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, tt.files)
			if err := run(options{}, &bytes.Buffer{}); err == nil {
				t.Error("run() error = nil, want error")
			}
		})
	}
}
