package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/store"
)

var (
	exportTicker string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export swap records to CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.QuerySwaps(ctx, store.SwapFilter{Ticker: exportTicker})
		if err != nil {
			return eris.Wrap(err, "export: query swaps")
		}
		if len(records) == 0 {
			return eris.New("no swap records to export")
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if err := store.WriteCSV(out, records); err != nil {
			return eris.Wrap(err, "export: write csv")
		}

		if exportOut != "" {
			zap.L().Info("export complete",
				zap.Int("records", len(records)),
				zap.String("file", exportOut),
			)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTicker, "ticker", "", "restrict export to one ticker")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
