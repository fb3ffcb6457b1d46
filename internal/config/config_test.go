package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Catalog:   CatalogConfig{BaseURL: "https://catalog.test", Key: "k"},
		Oracle:    OracleConfig{Enabled: true, Provider: "anthropic"},
		Anthropic: AnthropicConfig{Key: "sk-test"},
		Batch:     BatchConfig{Concurrency: 4},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Oracle.Provider != "anthropic" {
		t.Errorf("oracle.provider = %q, want anthropic", cfg.Oracle.Provider)
	}
	if cfg.Oracle.MaxAttempts != 2 {
		t.Errorf("oracle.max_attempts = %d, want 2", cfg.Oracle.MaxAttempts)
	}
	if cfg.Oracle.BackoffBaseMs != 500 || cfg.Oracle.BackoffCapMs != 8000 || cfg.Oracle.BackoffJitterMs != 250 {
		t.Errorf("unexpected backoff defaults: %+v", cfg.Oracle)
	}
	if cfg.Oracle.BreakerTrips != 5 || cfg.Oracle.BreakerResetSecs != 60 {
		t.Errorf("unexpected breaker defaults: %+v", cfg.Oracle)
	}
	if cfg.Batch.Concurrency != 4 {
		t.Errorf("batch.concurrency = %d, want 4", cfg.Batch.Concurrency)
	}
	if cfg.Batch.Query != "verification_status:unverified" {
		t.Errorf("unexpected default query %q", cfg.Batch.Query)
	}
	if cfg.Catalog.PageSize != 100 {
		t.Errorf("catalog.page_size = %d, want 100", cfg.Catalog.PageSize)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ATTRIB_ORACLE_PROVIDER", "perplexity")
	t.Setenv("ATTRIB_CATALOG_BASE_URL", "https://catalog.example")
	t.Setenv("ATTRIB_BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Oracle.Provider != "perplexity" {
		t.Errorf("oracle.provider = %q, want perplexity", cfg.Oracle.Provider)
	}
	if cfg.Catalog.BaseURL != "https://catalog.example" {
		t.Errorf("catalog.base_url = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Batch.Concurrency != 8 {
		t.Errorf("batch.concurrency = %d, want 8", cfg.Batch.Concurrency)
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingCatalog(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog = CatalogConfig{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "catalog.base_url") || !strings.Contains(err.Error(), "catalog.key") {
		t.Errorf("expected both catalog errors, got %v", err)
	}
}

func TestValidate_ProviderKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Anthropic.Key = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "anthropic.key") {
		t.Errorf("expected anthropic.key error, got %v", err)
	}

	cfg = validConfig()
	cfg.Oracle.Provider = "perplexity"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "perplexity.key") {
		t.Errorf("expected perplexity.key error, got %v", err)
	}

	cfg = validConfig()
	cfg.Oracle.Provider = "gpt"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "oracle.provider") {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestValidate_OracleDisabledSkipsProviderKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Oracle = OracleConfig{Enabled: false}
	cfg.Anthropic.Key = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled oracle should not require provider keys: %v", err)
	}
}

func TestValidate_Concurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Batch.Concurrency = 0

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("expected concurrency error, got %v", err)
	}
}
