package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vegashares/swapsync/internal/model"
)

func TestFormatRecords(t *testing.T) {
	notional := 1000000.0
	var buf bytes.Buffer
	formatRecords(&buf, []model.SwapRecord{{
		Ticker:            "TQQQ",
		FilingDate:        "2024-05-30",
		PeriodOfReport:    "2024-03-31",
		CounterpartyName:  "BANK A",
		RateType:          "floating",
		FloatingRateIndex: "1 month Sofr",
		NotionalAmount:    &notional,
		RawSpread:         "n/a",
	}})

	out := buf.String()
	assert.Contains(t, out, "BANK A")
	assert.Contains(t, out, "1000000.00")
	assert.Contains(t, out, "n/a", "raw text shown when coercion failed")
}

func TestFormatFloat(t *testing.T) {
	v := 0.15
	assert.Equal(t, "0.15", formatFloat(&v, ""))
	assert.Equal(t, "raw", formatFloat(nil, "raw"))
	assert.Equal(t, "-", formatFloat(nil, ""))
}

func TestFormatRuns(t *testing.T) {
	started := time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)
	completed := started.Add(42 * time.Second)

	var buf bytes.Buffer
	formatRuns(&buf, []model.RunSummary{
		{
			ID:          "0b5af1f2-aaaa-bbbb-cccc-000000000000",
			Ticker:      "TQQQ",
			Status:      model.RunStatusDone,
			FilingsSeen: 4,
			Records:     12,
			StartedAt:   started,
			CompletedAt: &completed,
		},
		{ID: "short", Ticker: "SQQQ", Status: model.RunStatusRunning, StartedAt: started},
	})

	out := buf.String()
	assert.Contains(t, out, "0b5af1f2")
	assert.NotContains(t, out, "aaaa-bbbb")
	assert.Contains(t, out, "42s")
	assert.Contains(t, out, "running")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789"))
	assert.Equal(t, "abc", truncateID("abc"))
}

func TestFilterFunds(t *testing.T) {
	funds := []model.FundIdentity{
		{Ticker: "TQQQ"}, {Ticker: "SQQQ"}, {Ticker: "UPRO"},
	}
	got := filterFunds(funds, []string{" tqqq ", "UPRO"})
	assert.Len(t, got, 2)
	assert.Equal(t, "TQQQ", got[0].Ticker)
	assert.Equal(t, "UPRO", got[1].Ticker)
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "-", joinOrNone(nil))
	assert.Equal(t, "TQQQ, SQQQ", joinOrNone([]string{"TQQQ", "SQQQ"}))
}
