package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/model"
	"github.com/vegashares/swapsync/internal/pipeline"
	"github.com/vegashares/swapsync/internal/store"
)

var (
	processCIK      string
	processSeriesID string
	processDays     int
)

var processCmd = &cobra.Command{
	Use:   "process <ticker>",
	Short: "Extract swap positions for one fund",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ticker := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		fund, err := resolveFund(ctx, st, ticker)
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.Pipeline.FundTimeoutSecs) * time.Second
		fundCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start, end := pipeline.Window(windowDays())
		run, err := newController(st).ProcessFund(fundCtx, *fund, start, end)
		if err != nil {
			return eris.Wrapf(err, "process %s", ticker)
		}

		zap.L().Info("process complete",
			zap.String("ticker", ticker),
			zap.String("run_id", run.ID),
			zap.Int("filings_seen", run.FilingsSeen),
			zap.Int("records", run.Records),
		)
		return nil
	},
}

// resolveFund prefers the stored mapping, falling back to explicit flags.
func resolveFund(ctx context.Context, st store.Store, ticker string) (*model.FundIdentity, error) {
	fund, err := st.GetMapping(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		if processCIK == "" {
			return nil, eris.Errorf("no mapping for %s: import one or pass --cik", ticker)
		}
		fund = &model.FundIdentity{Ticker: ticker}
	}
	if processCIK != "" {
		fund.CIK = processCIK
	}
	if processSeriesID != "" {
		fund.SeriesID = processSeriesID
	}
	return fund, nil
}

func windowDays() int {
	if processDays > 0 {
		return processDays
	}
	return cfg.EDGAR.WindowDays
}

func init() {
	processCmd.Flags().StringVar(&processCIK, "cik", "", "override the fund's CIK")
	processCmd.Flags().StringVar(&processSeriesID, "series-id", "", "override the fund's series ID (umbrella registrants)")
	processCmd.Flags().IntVar(&processDays, "days", 0, "lookback window in days (default from config)")
	rootCmd.AddCommand(processCmd)
}
