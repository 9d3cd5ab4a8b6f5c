package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vegashares/swapsync/internal/model"
	"github.com/vegashares/swapsync/internal/pipeline"
)

var batchTickers []string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract swap positions for every mapped fund",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		funds, err := st.ListMappings(ctx)
		if err != nil {
			return eris.Wrap(err, "batch: list mappings")
		}
		if len(batchTickers) > 0 {
			funds = filterFunds(funds, batchTickers)
		}
		if len(funds) == 0 {
			return eris.New("no mapped funds to process")
		}

		runner := pipeline.NewBatchRunner(
			newController(st),
			time.Duration(cfg.Pipeline.FundTimeoutSecs)*time.Second,
			cfg.Pipeline.MaxConcurrent,
		)

		start, end := pipeline.Window(cfg.EDGAR.WindowDays)
		result := runner.Run(ctx, funds, start, end)

		fmt.Fprintf(os.Stdout, "succeeded: %s\n", joinOrNone(result.Succeeded))
		fmt.Fprintf(os.Stdout, "failed:    %s\n", joinOrNone(result.Failed))
		fmt.Fprintf(os.Stdout, "timed out: %s\n", joinOrNone(result.TimedOut))

		if len(result.Failed) > 0 {
			return eris.Errorf("%d fund(s) failed", len(result.Failed))
		}
		return nil
	},
}

func filterFunds(funds []model.FundIdentity, tickers []string) []model.FundIdentity {
	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	var out []model.FundIdentity
	for _, f := range funds {
		if want[strings.ToUpper(f.Ticker)] {
			out = append(out, f)
		}
	}
	return out
}

func joinOrNone(tickers []string) string {
	if len(tickers) == 0 {
		return "-"
	}
	return strings.Join(tickers, ", ")
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchTickers, "tickers", nil, "restrict the batch to these tickers")
	rootCmd.AddCommand(batchCmd)
}
