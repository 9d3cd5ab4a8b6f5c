package db

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL(t *testing.T) {
	sql := UpsertSQL(UpsertConfig{
		Table:        "swap_data",
		Columns:      []string{"ticker", "filing_date", "counterparty_name", "notional_amt", "fixed_or_floating"},
		ConflictKeys: []string{"ticker", "filing_date", "counterparty_name", "notional_amt"},
	})
	assert.Equal(t,
		"INSERT INTO swap_data (ticker, filing_date, counterparty_name, notional_amt, fixed_or_floating) "+
			"VALUES ($1, $2, $3, $4, $5) "+
			"ON CONFLICT (ticker, filing_date, counterparty_name, notional_amt) "+
			"DO UPDATE SET fixed_or_floating = EXCLUDED.fixed_or_floating",
		sql,
	)
}

func TestBatchUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO swap_data`).
		WithArgs("TSLL", "BANK A").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO swap_data`).
		WithArgs("TSLL", "BANK B").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := BatchUpsert(context.Background(), mock, UpsertConfig{
		Table:        "swap_data",
		Columns:      []string{"ticker", "counterparty_name"},
		ConflictKeys: []string{"ticker"},
	}, [][]any{{"TSLL", "BANK A"}, {"TSLL", "BANK B"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO swap_data`).
		WithArgs("TSLL", "BANK A").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = BatchUpsert(context.Background(), mock, UpsertConfig{
		Table:        "swap_data",
		Columns:      []string{"ticker", "counterparty_name"},
		ConflictKeys: []string{"ticker"},
	}, [][]any{{"TSLL", "BANK A"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertEmpty(t *testing.T) {
	n, err := BatchUpsert(context.Background(), nil, UpsertConfig{
		Table: "t", Columns: []string{"a"}, ConflictKeys: []string{"a"},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBatchUpsertValidation(t *testing.T) {
	_, err := BatchUpsert(context.Background(), nil, UpsertConfig{Table: "t"}, [][]any{{1}})
	assert.Error(t, err)

	_, err = BatchUpsert(context.Background(), nil, UpsertConfig{Table: "t", Columns: []string{"a"}}, [][]any{{1}})
	assert.Error(t, err)
}
