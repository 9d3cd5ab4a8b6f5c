package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/vegashares/swapsync/internal/db"
	"github.com/vegashares/swapsync/internal/model"
)

// PostgresStore implements Store over a pgx pool. The db.Pool interface keeps
// it testable with pgxmock.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to Postgres using the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse dsn")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS swap_data (
	id                 BIGSERIAL PRIMARY KEY,
	ticker             TEXT NOT NULL,
	filing_date        TEXT NOT NULL,
	period_of_report   TEXT NOT NULL,
	index_name         TEXT,
	index_identifier   TEXT,
	counterparty_name  TEXT,
	fixed_or_floating  TEXT,
	floating_rt_index  TEXT,
	floating_rt_spread DOUBLE PRECISION,
	notional_amt       DOUBLE PRECISION,
	raw_spread         TEXT,
	raw_notional       TEXT,
	filing_url         TEXT,
	extracted_date     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(ticker, filing_date, counterparty_name, notional_amt)
);

CREATE TABLE IF NOT EXISTS ticker_mappings (
	ticker       TEXT PRIMARY KEY,
	cik          TEXT NOT NULL,
	company_name TEXT,
	series_id    TEXT,
	start_date   TEXT,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS extraction_runs (
	id           UUID PRIMARY KEY,
	ticker       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	filings_seen INTEGER NOT NULL DEFAULT 0,
	records      INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_swap_data_ticker ON swap_data(ticker);
CREATE INDEX IF NOT EXISTS idx_swap_data_filing_date ON swap_data(filing_date);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_ticker ON extraction_runs(ticker);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertSwaps(ctx context.Context, records []model.SwapRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, swapRow(r))
	}
	return db.BatchUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "swap_data",
		Columns:      swapColumns,
		ConflictKeys: swapConflictKeys,
	}, rows)
}

func (s *PostgresStore) ClearTicker(ctx context.Context, ticker string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM swap_data WHERE ticker = $1`, ticker)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: clear ticker %s", ticker)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) QuerySwaps(ctx context.Context, filter SwapFilter) ([]model.SwapRecord, error) {
	query := `SELECT ` + strings.Join(swapColumns, ", ") + ` FROM swap_data WHERE 1=1`
	var args []any
	if filter.Ticker != "" {
		args = append(args, filter.Ticker)
		query += ` AND ticker = $1`
	}
	query += ` ORDER BY filing_date DESC, counterparty_name`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query swaps")
	}
	defer rows.Close()

	var records []model.SwapRecord
	for rows.Next() {
		r, err := scanSwapPgx(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: query swaps iterate")
}

func (s *PostgresStore) GetMapping(ctx context.Context, ticker string) (*model.FundIdentity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT ticker, cik, company_name, series_id, start_date FROM ticker_mappings WHERE ticker = $1`,
		ticker,
	)
	var f model.FundIdentity
	var name, series, start *string
	err := row.Scan(&f.Ticker, &f.CIK, &name, &series, &start)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get mapping %s", ticker)
	}
	f.CompanyName = deref(name)
	f.SeriesID = deref(series)
	f.StartDate = deref(start)
	return &f, nil
}

func (s *PostgresStore) UpsertMapping(ctx context.Context, fund model.FundIdentity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ticker_mappings (ticker, cik, company_name, series_id, start_date, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (ticker) DO UPDATE SET
		   cik = EXCLUDED.cik,
		   company_name = EXCLUDED.company_name,
		   series_id = EXCLUDED.series_id,
		   start_date = EXCLUDED.start_date,
		   last_updated = EXCLUDED.last_updated`,
		fund.Ticker, model.PadCIK(fund.CIK), fund.CompanyName, fund.SeriesID, fund.StartDate, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert mapping %s", fund.Ticker)
}

func (s *PostgresStore) ListMappings(ctx context.Context) ([]model.FundIdentity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ticker, cik, company_name, series_id, start_date FROM ticker_mappings ORDER BY ticker`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list mappings")
	}
	defer rows.Close()

	var funds []model.FundIdentity
	for rows.Next() {
		var f model.FundIdentity
		var name, series, start *string
		if err := rows.Scan(&f.Ticker, &f.CIK, &name, &series, &start); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mapping")
		}
		f.CompanyName = deref(name)
		f.SeriesID = deref(series)
		f.StartDate = deref(start)
		funds = append(funds, f)
	}
	return funds, eris.Wrap(rows.Err(), "postgres: list mappings iterate")
}

func (s *PostgresStore) StartRun(ctx context.Context, ticker string) (*model.RunSummary, error) {
	run := &model.RunSummary{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO extraction_runs (id, ticker, status, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Ticker, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: start run for %s", ticker)
	}
	return run, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, run *model.RunSummary) error {
	now := time.Now().UTC()
	run.CompletedAt = &now
	tag, err := s.pool.Exec(ctx,
		`UPDATE extraction_runs SET status = $1, filings_seen = $2, records = $3, error = $4, completed_at = $5
		 WHERE id = $6`,
		string(run.Status), run.FilingsSeen, run.Records, run.Error, now, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, ticker, status, filings_seen, records, error, started_at, completed_at
		 FROM extraction_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var errMsg *string
		if err := rows.Scan(&r.ID, &r.Ticker, &r.Status, &r.FilingsSeen, &r.Records, &errMsg, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Error = deref(errMsg)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanSwapPgx(rows pgx.Rows) (model.SwapRecord, error) {
	var r model.SwapRecord
	var indexName, indexID, counterparty, rateType, floatIndex, rawSpread, rawNotional, url *string

	err := rows.Scan(
		&r.Ticker, &r.FilingDate, &r.PeriodOfReport, &indexName, &indexID,
		&counterparty, &rateType, &floatIndex, &r.FloatingRateSpread,
		&r.NotionalAmount, &rawSpread, &rawNotional, &url,
	)
	if err != nil {
		return r, eris.Wrap(err, "scan swap record")
	}

	r.IndexName = deref(indexName)
	r.IndexIdentifier = deref(indexID)
	r.CounterpartyName = deref(counterparty)
	r.RateType = deref(rateType)
	r.FloatingRateIndex = deref(floatIndex)
	r.RawSpread = deref(rawSpread)
	r.RawNotional = deref(rawNotional)
	r.FilingURL = deref(url)
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

