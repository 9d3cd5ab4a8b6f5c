package nport

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vegashares/swapsync/internal/model"
)

// Normalizer coerces raw extracted text into typed SwapRecord fields.
type Normalizer struct {
	// IndexAllowlist, when non-empty, restricts FloatingRateIndex to the
	// listed values; anything else is remapped to IndexDefault. This is
	// a domain policy, not a parsing necessity, and is off unless
	// configured.
	IndexAllowlist []string
	IndexDefault   string
}

// dateLayouts are the source date formats seen across filings.
var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"20060102",
}

// Normalize converts a RawEntry into a SwapRecord. FilingDate and
// PeriodOfReport always come out populated: an unparseable or missing
// filing date falls back to today, and a missing period falls back to
// the filing date.
func (n *Normalizer) Normalize(e RawEntry, filingDate string) model.SwapRecord {
	filed := normalizeDate(filingDate)
	if filed == "" {
		filed = time.Now().Format(model.DateLayout)
	}
	period := normalizeDate(e.PeriodOfReport)
	if period == "" {
		period = filed
	}

	rec := model.SwapRecord{
		Ticker:           e.Ticker,
		FilingDate:       filed,
		PeriodOfReport:   period,
		IndexName:        e.IndexName,
		IndexIdentifier:  e.IndexIdentifier,
		CounterpartyName: e.CounterpartyName,
		RateType:         e.RateType,
		FilingURL:        e.FilingURL,
	}

	rec.NotionalAmount, rec.RawNotional = parseAmount(e.NotionalAmount)
	rec.FloatingRateSpread, rec.RawSpread = parseAmount(e.FloatingRateSpread)
	rec.FloatingRateIndex = n.normalizeIndex(e.FloatingRateIndex)

	return rec
}

func (n *Normalizer) normalizeIndex(index string) string {
	if index == "" || len(n.IndexAllowlist) == 0 {
		return index
	}
	if slices.Contains(n.IndexAllowlist, index) {
		return index
	}
	return n.IndexDefault
}

// parseAmount strips currency symbols, thousands separators, and
// percent signs before float conversion. On failure the original text
// is preserved rather than dropped, keeping the raw signal around for
// manual review.
func parseAmount(s string) (*float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}
	clean := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil, s
	}
	return &v, ""
}

// normalizeDate reduces a source date string to the calendar-date
// representation, or "" when it cannot be determined.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout)
		}
	}
	return ""
}
