// Package config provides configuration management for the Edge Finder application.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg    = "expected no error, got %v"
	expectedNonNilConfig  = "expected non-nil config"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != "edge-finder" {
		t.Errorf("expected app name 'edge-finder', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("expected database host 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}

	if len(cfg.OddsProviders) != 2 {
		t.Fatalf("expected 2 odds providers, got %d", len(cfg.OddsProviders))
	}

	if cfg.OddsProviders[0].Name != "rapid_odds" {
		t.Errorf("expected first provider 'rapid_odds', got '%s'", cfg.OddsProviders[0].Name)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvExpansion tests ${VAR} expansion in the YAML file
func TestLoadConfigEnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	os.Setenv("TEST_PROVIDER_KEY", "expanded_api_key")
	defer os.Unsetenv("TEST_DB_PASSWORD")
	defer os.Unsetenv("TEST_PROVIDER_KEY")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded database password, got '%s'", cfg.Database.Password)
	}

	if cfg.OddsProviders[0].APIKey != "expanded_api_key" {
		t.Errorf("expected expanded provider API key, got '%s'", cfg.OddsProviders[0].APIKey)
	}
}

// TestLoadWithDefaults tests that defaults apply when the file is missing
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected default environment 'development', got '%s'", cfg.App.Environment)
	}

	if cfg.Model.DefaultModel != "logistic_regression" {
		t.Errorf("expected default model 'logistic_regression', got '%s'", cfg.Model.DefaultModel)
	}

	if cfg.Recommendation.DefaultMaxOdds != 10.0 {
		t.Errorf("expected default max odds 10.0, got %f", cfg.Recommendation.DefaultMaxOdds)
	}
}

// TestValidateValidConfig tests validation of a complete configuration
func TestValidateValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config to pass validation, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests rejection of unknown environments
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateProductionRequiresSSL tests production cross-field validation
func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for production without SSL")
	}
	if !strings.Contains(err.Error(), "SSL") {
		t.Errorf("expected SSL error, got: %v", err)
	}
}

// TestValidateNoEnabledProviders tests that at least one provider is required
func TestValidateNoEnabledProviders(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	for i := range cfg.OddsProviders {
		cfg.OddsProviders[i].Enabled = false
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when no providers are enabled")
	}
}

// TestGetProvider tests provider lookup by name
func TestGetProvider(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	p, ok := cfg.GetProvider("rapid_odds")
	if !ok {
		t.Fatal("expected to find provider 'rapid_odds'")
	}
	if p.BaseURL != "https://odds-api1.p.rapidapi.com" {
		t.Errorf("unexpected base URL: %s", p.BaseURL)
	}

	if _, ok := cfg.GetProvider("missing"); ok {
		t.Fatal("expected lookup miss for unknown provider")
	}

	enabled := cfg.EnabledProviders()
	if len(enabled) != 1 || enabled[0] != "rapid_odds" {
		t.Errorf("expected exactly rapid_odds enabled, got %v", enabled)
	}
}

// TestGetDatabaseDSN tests DSN formatting
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected postgres:// DSN, got %s", dsn)
	}
	if !strings.Contains(dsn, "edge_finder") {
		t.Errorf("expected database name in DSN, got %s", dsn)
	}
}
