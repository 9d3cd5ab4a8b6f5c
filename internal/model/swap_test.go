package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadCIK(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short numeric", "1689873", "0001689873"},
		{"already padded", "0001689873", "0001689873"},
		{"whitespace", "  1424958 ", "0001424958"},
		{"with dashes", "0001-689873", "0001689873"},
		{"empty", "", ""},
		{"zeros only", "0000", ""},
		{"overlong", "123456789012", "1234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PadCIK(tt.in))
		})
	}
}

func TestCIKNumeric(t *testing.T) {
	assert.Equal(t, "1689873", CIKNumeric("0001689873"))
	assert.Equal(t, "0", CIKNumeric("0000000000"))
	assert.Equal(t, "42", CIKNumeric("42"))
}

func TestDedupKey(t *testing.T) {
	n := 1000000.0
	a := SwapRecord{Ticker: "TSLL", FilingDate: "2024-03-31", CounterpartyName: "BANK A", NotionalAmount: &n}
	b := SwapRecord{Ticker: "TSLL", FilingDate: "2024-03-31", CounterpartyName: "BANK A", NotionalAmount: &n, RateType: "floating"}
	assert.Equal(t, a.DedupKey(), b.DedupKey(), "non-key fields must not affect identity")

	c := a
	c.NotionalAmount = nil
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
