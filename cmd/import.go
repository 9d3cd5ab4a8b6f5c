package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/fetcher"
	"github.com/vegashares/swapsync/internal/model"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import ticker-to-CIK mappings from CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		header, rows, err := readMappingFile(importFilePath)
		if err != nil {
			return eris.Wrapf(err, "read %s", importFilePath)
		}

		funds, err := parseMappingRows(header, rows)
		if err != nil {
			return err
		}
		if len(funds) == 0 {
			return eris.Errorf("no mappings found in %s", importFilePath)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		for _, f := range funds {
			if err := st.UpsertMapping(ctx, f); err != nil {
				return eris.Wrapf(err, "import mapping %s", f.Ticker)
			}
		}

		zap.L().Info("import complete",
			zap.Int("mappings", len(funds)),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func readMappingFile(path string) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fetcher.ReadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() //nolint:errcheck
	return fetcher.ReadCSV(f)
}

// headerAliases maps the column names seen in the wild onto canonical fields.
var headerAliases = map[string]string{
	"ticker":       "ticker",
	"symbol":       "ticker",
	"cik":          "cik",
	"cik_number":   "cik",
	"series_id":    "series_id",
	"seriesid":     "series_id",
	"series":       "series_id",
	"company_name": "company_name",
	"company":      "company_name",
	"name":         "company_name",
	"fund_name":    "company_name",
	"start_date":   "start_date",
	"startdate":    "start_date",
	"inception":    "start_date",
}

// canonicalHeader lowercases and underscores a column name so both header
// conventions ("series_id" and "Series ID") resolve the same way.
func canonicalHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func parseMappingRows(header []string, rows [][]string) ([]model.FundIdentity, error) {
	cols := make(map[string]int)
	for i, h := range header {
		if canonical, ok := headerAliases[canonicalHeader(h)]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["ticker"]; !ok {
		return nil, eris.New("mapping file missing a ticker column")
	}
	if _, ok := cols["cik"]; !ok {
		return nil, eris.New("mapping file missing a cik column")
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var funds []model.FundIdentity
	for _, row := range rows {
		ticker := strings.ToUpper(cell(row, "ticker"))
		cik := cell(row, "cik")
		if ticker == "" || cik == "" {
			continue
		}
		funds = append(funds, model.FundIdentity{
			Ticker:      ticker,
			CIK:         model.PadCIK(cik),
			SeriesID:    cell(row, "series_id"),
			CompanyName: cell(row, "company_name"),
			StartDate:   cell(row, "start_date"),
		})
	}
	return funds, nil
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to CSV or XLSX mapping file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
