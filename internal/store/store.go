// Package store persists swap records, ticker mappings, and extraction
// runs behind one interface with SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/vegashares/swapsync/internal/model"
)

// SwapFilter specifies criteria for querying swap records.
type SwapFilter struct {
	Ticker string `json:"ticker,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Store defines the persistence interface consumed by the pipeline.
//
// UpsertSwaps must be atomic per dedup key: a record matching an
// existing (ticker, filing_date, counterparty_name, notional_amt) tuple
// replaces the earlier field values. The uniqueness constraint lives in
// the schema, not just in application logic.
type Store interface {
	// Swap records
	UpsertSwaps(ctx context.Context, records []model.SwapRecord) (int64, error)
	ClearTicker(ctx context.Context, ticker string) (int64, error)
	QuerySwaps(ctx context.Context, filter SwapFilter) ([]model.SwapRecord, error)

	// Ticker mappings
	GetMapping(ctx context.Context, ticker string) (*model.FundIdentity, error)
	UpsertMapping(ctx context.Context, fund model.FundIdentity) error
	ListMappings(ctx context.Context) ([]model.FundIdentity, error)

	// Extraction runs
	StartRun(ctx context.Context, ticker string) (*model.RunSummary, error)
	FinishRun(ctx context.Context, run *model.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// swapColumns is the column order shared by both backends.
var swapColumns = []string{
	"ticker", "filing_date", "period_of_report", "index_name", "index_identifier",
	"counterparty_name", "fixed_or_floating", "floating_rt_index", "floating_rt_spread",
	"notional_amt", "raw_spread", "raw_notional", "filing_url",
}

// swapConflictKeys is the dedup uniqueness constraint.
var swapConflictKeys = []string{"ticker", "filing_date", "counterparty_name", "notional_amt"}

func swapRow(r model.SwapRecord) []any {
	return []any{
		r.Ticker, r.FilingDate, r.PeriodOfReport, r.IndexName, r.IndexIdentifier,
		r.CounterpartyName, r.RateType, r.FloatingRateIndex, r.FloatingRateSpread,
		r.NotionalAmount, r.RawSpread, r.RawNotional, r.FilingURL,
	}
}
