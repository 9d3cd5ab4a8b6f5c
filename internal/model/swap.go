// Package model defines the core data types shared across the
// extraction pipeline and the persistence layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date representation used everywhere.
// Filing dates and reporting periods carry no time component.
const DateLayout = "2006-01-02"

// FundIdentity maps a ticker symbol to its SEC registrant identity.
// The CIK is always held as a zero-padded 10-digit string.
type FundIdentity struct {
	Ticker      string `json:"ticker"`
	CIK         string `json:"cik"`
	SeriesID    string `json:"series_id,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
}

// FilingReference identifies a single filing located in the EDGAR index.
// It is ephemeral: produced by the locator, consumed by the fetch loop,
// never persisted.
type FilingReference struct {
	FormType    string
	FilingDate  string
	DocumentURL string
}

// SwapRecord is one extracted swap observation from an N-PORT filing.
// FilingDate and PeriodOfReport are always populated; every other field
// is optional because source filings vary wildly in completeness.
//
// Identity is (Ticker, FilingDate, CounterpartyName, NotionalAmount);
// a later extraction of the same tuple overwrites the earlier one.
type SwapRecord struct {
	Ticker             string   `json:"ticker" csv:"ticker"`
	FilingDate         string   `json:"filing_date" csv:"filing_date"`
	PeriodOfReport     string   `json:"period_of_report" csv:"period_of_report"`
	IndexName          string   `json:"index_name,omitempty" csv:"index_name"`
	IndexIdentifier    string   `json:"index_identifier,omitempty" csv:"index_identifier"`
	CounterpartyName   string   `json:"counterparty_name,omitempty" csv:"counterparty_name"`
	RateType           string   `json:"fixed_or_floating,omitempty" csv:"fixed_or_floating"`
	FloatingRateIndex  string   `json:"floating_rt_index,omitempty" csv:"floating_rt_index"`
	FloatingRateSpread *float64 `json:"floating_rt_spread,omitempty" csv:"floating_rt_spread"`
	NotionalAmount     *float64 `json:"notional_amt,omitempty" csv:"notional_amt"`
	RawSpread          string   `json:"raw_spread,omitempty" csv:"raw_spread"`
	RawNotional        string   `json:"raw_notional,omitempty" csv:"raw_notional"`
	FilingURL          string   `json:"filing_url,omitempty" csv:"filing_url"`
}

// DedupKey returns the identity tuple used for upsert deduplication.
func (r SwapRecord) DedupKey() string {
	notional := ""
	if r.NotionalAmount != nil {
		notional = fmt.Sprintf("%g", *r.NotionalAmount)
	}
	return strings.Join([]string{r.Ticker, r.FilingDate, r.CounterpartyName, notional}, "|")
}

// RunStatus tracks the lifecycle of a per-fund extraction run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
	RunStatusTimeout RunStatus = "timeout"
)

// RunSummary records the outcome of one ProcessFund invocation.
type RunSummary struct {
	ID          string     `json:"id"`
	Ticker      string     `json:"ticker"`
	Status      RunStatus  `json:"status"`
	FilingsSeen int        `json:"filings_seen"`
	Records     int        `json:"records"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PadCIK normalizes a registrant identifier to the canonical
// zero-padded 10-digit form. Non-digit characters are stripped first so
// values like "0001689873 " or "1689873" converge on the same key.
func PadCIK(cik string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(cik) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := strings.TrimLeft(digits.String(), "0")
	if s == "" {
		return ""
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return fmt.Sprintf("%010s", s)
}

// CIKNumeric strips the zero padding for use in archive URLs, which
// embed the bare integer form of the CIK.
func CIKNumeric(cik string) string {
	s := strings.TrimLeft(strings.TrimSpace(cik), "0")
	if s == "" {
		return "0"
	}
	return s
}
