package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vegashares/swapsync/internal/model"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List ticker-to-CIK mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		funds, err := st.ListMappings(ctx)
		if err != nil {
			return eris.Wrap(err, "mappings")
		}
		if len(funds) == 0 {
			fmt.Fprintln(os.Stderr, "No mappings found. Run `swapsync import` first.")
			return nil
		}

		formatMappings(os.Stdout, funds)
		return nil
	},
}

func formatMappings(out io.Writer, funds []model.FundIdentity) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TICKER\tCIK\tSERIES\tCOMPANY\tSTART")

	for _, f := range funds {
		series := f.SeriesID
		if series == "" {
			series = "-"
		}
		start := f.StartDate
		if start == "" {
			start = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.Ticker, f.CIK, series, f.CompanyName, start)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
}
