package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/vegashares/swapsync/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS swap_data (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker             TEXT NOT NULL,
	filing_date        TEXT NOT NULL,
	period_of_report   TEXT NOT NULL,
	index_name         TEXT,
	index_identifier   TEXT,
	counterparty_name  TEXT,
	fixed_or_floating  TEXT,
	floating_rt_index  TEXT,
	floating_rt_spread REAL,
	notional_amt       REAL,
	raw_spread         TEXT,
	raw_notional       TEXT,
	filing_url         TEXT,
	extracted_date     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(ticker, filing_date, counterparty_name, notional_amt)
);

CREATE TABLE IF NOT EXISTS ticker_mappings (
	ticker       TEXT PRIMARY KEY,
	cik          TEXT NOT NULL,
	company_name TEXT,
	series_id    TEXT,
	start_date   TEXT,
	last_updated DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS extraction_runs (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	filings_seen INTEGER NOT NULL DEFAULT 0,
	records      INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_swap_data_ticker ON swap_data(ticker);
CREATE INDEX IF NOT EXISTS idx_swap_data_filing_date ON swap_data(filing_date);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_ticker ON extraction_runs(ticker);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteUpsertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(swapColumns)), ", ")
	var updates []string
	conflictSet := make(map[string]bool, len(swapConflictKeys))
	for _, k := range swapConflictKeys {
		conflictSet[k] = true
	}
	for _, c := range swapColumns {
		if !conflictSet[c] {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO swap_data (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		strings.Join(swapColumns, ", "),
		placeholders,
		strings.Join(swapConflictKeys, ", "),
		strings.Join(updates, ", "),
	)
}

func (s *SQLiteStore) UpsertSwaps(ctx context.Context, records []model.SwapRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertSQL())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, swapRow(r)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert swap for %s", r.Ticker)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

func (s *SQLiteStore) ClearTicker(ctx context.Context, ticker string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM swap_data WHERE ticker = ?`, ticker)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear ticker %s", ticker)
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) QuerySwaps(ctx context.Context, filter SwapFilter) ([]model.SwapRecord, error) {
	query := `SELECT ` + strings.Join(swapColumns, ", ") + ` FROM swap_data WHERE 1=1`
	var args []any
	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	query += ` ORDER BY filing_date DESC, counterparty_name`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query swaps")
	}
	defer rows.Close() //nolint:errcheck

	var records []model.SwapRecord
	for rows.Next() {
		r, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: query swaps iterate")
}

func (s *SQLiteStore) GetMapping(ctx context.Context, ticker string) (*model.FundIdentity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ticker, cik, company_name, series_id, start_date FROM ticker_mappings WHERE ticker = ?`,
		ticker,
	)
	var f model.FundIdentity
	var name, series, start sql.NullString
	err := row.Scan(&f.Ticker, &f.CIK, &name, &series, &start)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get mapping %s", ticker)
	}
	f.CompanyName = name.String
	f.SeriesID = series.String
	f.StartDate = start.String
	return &f, nil
}

func (s *SQLiteStore) UpsertMapping(ctx context.Context, fund model.FundIdentity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ticker_mappings (ticker, cik, company_name, series_id, start_date, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ticker) DO UPDATE SET
		   cik = excluded.cik,
		   company_name = excluded.company_name,
		   series_id = excluded.series_id,
		   start_date = excluded.start_date,
		   last_updated = excluded.last_updated`,
		fund.Ticker, model.PadCIK(fund.CIK), fund.CompanyName, fund.SeriesID, fund.StartDate, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert mapping %s", fund.Ticker)
}

func (s *SQLiteStore) ListMappings(ctx context.Context) ([]model.FundIdentity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, cik, company_name, series_id, start_date FROM ticker_mappings ORDER BY ticker`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list mappings")
	}
	defer rows.Close() //nolint:errcheck

	var funds []model.FundIdentity
	for rows.Next() {
		var f model.FundIdentity
		var name, series, start sql.NullString
		if err := rows.Scan(&f.Ticker, &f.CIK, &name, &series, &start); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mapping")
		}
		f.CompanyName = name.String
		f.SeriesID = series.String
		f.StartDate = start.String
		funds = append(funds, f)
	}
	return funds, eris.Wrap(rows.Err(), "sqlite: list mappings iterate")
}

func (s *SQLiteStore) StartRun(ctx context.Context, ticker string) (*model.RunSummary, error) {
	run := &model.RunSummary{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extraction_runs (id, ticker, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Ticker, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: start run for %s", ticker)
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *model.RunSummary) error {
	now := time.Now().UTC()
	run.CompletedAt = &now
	res, err := s.db.ExecContext(ctx,
		`UPDATE extraction_runs SET status = ?, filings_seen = ?, records = ?, error = ?, completed_at = ?
		 WHERE id = ?`,
		string(run.Status), run.FilingsSeen, run.Records, run.Error, now, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", run.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ticker, status, filings_seen, records, error, started_at, completed_at
		 FROM extraction_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var errMsg sql.NullString
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Ticker, &r.Status, &r.FilingsSeen, &r.Records, &errMsg, &r.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Error = errMsg.String
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// scanSwap reads one swap_data row in swapColumns order.
func scanSwap(rows *sql.Rows) (model.SwapRecord, error) {
	var r model.SwapRecord
	var indexName, indexID, counterparty, rateType, floatIndex, rawSpread, rawNotional, url sql.NullString
	var spread, notional sql.NullFloat64

	err := rows.Scan(
		&r.Ticker, &r.FilingDate, &r.PeriodOfReport, &indexName, &indexID,
		&counterparty, &rateType, &floatIndex, &spread,
		&notional, &rawSpread, &rawNotional, &url,
	)
	if err != nil {
		return r, eris.Wrap(err, "scan swap record")
	}

	r.IndexName = indexName.String
	r.IndexIdentifier = indexID.String
	r.CounterpartyName = counterparty.String
	r.RateType = rateType.String
	r.FloatingRateIndex = floatIndex.String
	r.RawSpread = rawSpread.String
	r.RawNotional = rawNotional.String
	r.FilingURL = url.String
	if spread.Valid {
		v := spread.Float64
		r.FloatingRateSpread = &v
	}
	if notional.Valid {
		v := notional.Float64
		r.NotionalAmount = &v
	}
	return r, nil
}
