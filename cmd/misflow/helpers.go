package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/viper"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/engine"
	"github.com/ledgermill/misflow/internal/oracle"
	"github.com/ledgermill/misflow/internal/service"
	"github.com/ledgermill/misflow/internal/storage"
)

var periodKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// validatePeriodKey checks the YYYY-MM period key format.
func validatePeriodKey(periodKey string) error {
	if !periodKeyPattern.MatchString(periodKey) {
		return fmt.Errorf("%w: period must be YYYY-MM, got %q", common.ErrInvalidPeriod, periodKey)
	}
	return nil
}

// openStorage opens the configured database.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "misflow", "misflow.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// newOracle builds the oracle client from configuration. A missing endpoint
// means the oracle is disabled and the pipeline runs rules-only.
func newOracle() (service.Oracle, error) {
	endpoint := viper.GetString("oracle.endpoint")
	if endpoint == "" {
		return nil, nil
	}

	classifier, err := oracle.New(oracle.Config{
		Endpoint:   endpoint,
		APIKey:     viper.GetString("oracle.api_key"),
		Model:      viper.GetString("oracle.model"),
		Timeout:    viper.GetDuration("oracle.timeout"),
		BatchSize:  viper.GetInt("oracle.batch_size"),
		RateLimit:  viper.GetInt("oracle.rate_limit"),
		CacheTTL:   viper.GetDuration("oracle.cache_ttl"),
		MaxRetries: viper.GetInt("oracle.max_retries"),
		RetryDelay: viper.GetDuration("oracle.retry_delay"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	return classifier, nil
}

// runConfig reads the engine knobs from configuration.
func runConfig() engine.RunConfig {
	hubState := viper.GetString("engine.hub_state")
	if hubState == "" {
		hubState = "karnataka"
	}

	return engine.RunConfig{
		HubState:            hubState,
		AdjustmentKeywords:  viper.GetStringSlice("engine.adjustment_keywords"),
		AutoAcceptThreshold: viper.GetFloat64("oracle.auto_accept"),
	}
}

// parseDate accepts the 2006-01-02 format used across import files.
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected format 2006-01-02", value)
	}
	return date, nil
}
