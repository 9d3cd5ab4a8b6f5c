package store

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/vegashares/swapsync/internal/model"
)

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("unknown store driver: %s", driver)
	}
}

// WriteCSV streams swap records to w with a header row.
func WriteCSV(w io.Writer, records []model.SwapRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "encode swap record")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}
