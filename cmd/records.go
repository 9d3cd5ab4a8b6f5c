package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vegashares/swapsync/internal/model"
	"github.com/vegashares/swapsync/internal/store"
)

var (
	recordsTicker string
	recordsLimit  int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List extracted swap records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.QuerySwaps(ctx, store.SwapFilter{
			Ticker: recordsTicker,
			Limit:  recordsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "records")
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No swap records found.")
			return nil
		}

		formatRecords(os.Stdout, records)
		return nil
	},
}

func formatRecords(out io.Writer, records []model.SwapRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TICKER\tFILED\tPERIOD\tCOUNTERPARTY\tRATE\tINDEX\tSPREAD\tNOTIONAL")

	for _, r := range records {
		counterparty := r.CounterpartyName
		if len(counterparty) > 32 {
			counterparty = counterparty[:29] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Ticker,
			r.FilingDate,
			r.PeriodOfReport,
			counterparty,
			r.RateType,
			r.FloatingRateIndex,
			formatFloat(r.FloatingRateSpread, r.RawSpread),
			formatFloat(r.NotionalAmount, r.RawNotional),
		)
	}
	_ = w.Flush()
}

// formatFloat shows the parsed value, or the raw filing text when coercion
// failed.
func formatFloat(v *float64, raw string) string {
	if v != nil {
		return fmt.Sprintf("%.2f", *v)
	}
	if raw != "" {
		return raw
	}
	return "-"
}

func init() {
	recordsCmd.Flags().StringVar(&recordsTicker, "ticker", "", "filter by ticker")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 50, "max number of records to display")
	rootCmd.AddCommand(recordsCmd)
}
