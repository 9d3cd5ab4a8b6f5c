package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/config"
	"github.com/vegashares/swapsync/internal/edgar"
	"github.com/vegashares/swapsync/internal/fetcher"
	"github.com/vegashares/swapsync/internal/nport"
	"github.com/vegashares/swapsync/internal/pipeline"
	"github.com/vegashares/swapsync/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "swapsync",
	Short: "ETF swap exposure extraction from SEC EDGAR",
	Long:  "Locates N-PORT filings for leveraged ETFs, extracts total return swap positions, and loads them into a queryable store.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newLocator builds the filing locator with retries enabled. Index lookups
// are cheap JSON fetches, so transient EDGAR errors are worth retrying.
func newLocator() *edgar.Locator {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.EDGAR.UserAgent,
		Timeout:      time.Duration(cfg.EDGAR.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.EDGAR.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	return edgar.NewLocator(f, cfg.EDGAR.BaseURL, cfg.EDGAR.DataBaseURL)
}

// newDocFetcher builds the document fetcher. Filings are large; a failed
// download is skipped by the pipeline rather than retried.
func newDocFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.EDGAR.UserAgent,
		Timeout:      time.Duration(cfg.EDGAR.TimeoutSecs) * time.Second,
		MaxRetries:   1,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

func newController(st store.Store) *pipeline.Controller {
	norm := nport.Normalizer{
		IndexAllowlist: cfg.Extract.IndexAllowlist,
		IndexDefault:   cfg.Extract.IndexDefault,
	}
	opts := pipeline.Options{
		FormType:    "NPORT-P",
		BatchSize:   cfg.Pipeline.BatchSize,
		FilingPause: time.Duration(cfg.Pipeline.FilingPauseSecs) * time.Second,
		BatchPause:  time.Duration(cfg.Pipeline.BatchPauseSecs) * time.Second,
		Strict:      cfg.Extract.Strict,
	}
	return pipeline.NewController(st, newLocator(), newDocFetcher(), norm, opts)
}
