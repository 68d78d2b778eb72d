package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/classify"
	"github.com/sells-group/address-precision/internal/config"
	"github.com/sells-group/address-precision/pkg/geocode"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "address-precision",
	Short: "Apartment classification and geocoding precision optimizer",
	Long:  "Classifies addresses as multi-unit dwellings, geocodes rewritten variants, and keeps the most precise place identifier for each row.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadRules honors the configured rule override file.
func loadRules() (classify.Rules, error) {
	if cfg.Classify.RulesPath == "" {
		return classify.DefaultRules(), nil
	}
	return classify.LoadRules(cfg.Classify.RulesPath)
}

// newGeocodeClient builds the provider client from config, attaching the
// persistent cache when one is configured.
func newGeocodeClient() (geocode.Client, func(), error) {
	opts := []geocode.Option{
		geocode.WithRateLimit(cfg.Geocode.RateLimitRPS),
	}
	cleanup := func() {}

	if cfg.Geocode.CachePath != "" {
		cache, err := geocode.NewSQLiteCache(cfg.Geocode.CachePath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, geocode.WithCache(cache))
		cleanup = func() { _ = cache.Close() }
	}
	if cfg.Geocode.MaxRetries > 0 {
		opts = append(opts, geocode.WithRetry(cfg.Geocode.MaxRetries, retryBaseDelay()))
	}

	return geocode.NewClient(cfg.Geocode.APIKey, opts...), cleanup, nil
}

func retryBaseDelay() time.Duration {
	return time.Duration(cfg.Geocode.RetryBaseMillis) * time.Millisecond
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
