package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFailsValidateWithoutSymbolsAndChartDir(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Default() alone to fail validation (no symbol_specs/chart_dir)")
	}
}

func TestLoadAppliesOverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
symbol_specs:
  ES:
    tick_size: 0.25
  NQ:
    tick_size: 0.25
ingestion:
  chart_dir: /tmp/charts
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.Entry != 0.70 {
		t.Fatalf("expected the default entry threshold to survive, got %v", cfg.Thresholds.Entry)
	}
	if cfg.Ingestion.ChartDir != "/tmp/charts" {
		t.Fatalf("expected the override chart_dir, got %q", cfg.Ingestion.ChartDir)
	}
	if cfg.Sizing.MinStopTicks != 8 {
		t.Fatalf("expected the default min_stop_ticks to survive, got %v", cfg.Sizing.MinStopTicks)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error reading a missing config file")
	}
}

func TestLoadInvalidOverrideFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
symbol_specs:
  ES:
    tick_size: 0.25
ingestion:
  chart_dir: /tmp/charts
weights:
  mq: 0.9
  of: 0.9
  structure: 0.9
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected weights summing far past 1.0 to fail validation")
	}
}

func TestValidateCatchesMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.SymbolSpecs = map[string]SymbolSpec{"ES": {TickSize: 0}}
	cfg.Ingestion.ChartDir = ""
	cfg.Sizing.MinStopTicks = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected multiple validation errors")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := Default()
	cfg.SymbolSpecs = map[string]SymbolSpec{"ES": {TickSize: 0.25}, "NQ": {TickSize: 0.25}}
	cfg.Ingestion.ChartDir = "/tmp/charts"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a well-formed config to validate, got %v", err)
	}
}
