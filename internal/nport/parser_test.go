package nport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swapDoc = `<?xml version="1.0" encoding="UTF-8"?>
<edgarSubmission xmlns="http://www.sec.gov/edgar/nport" xmlns:ncom="http://www.sec.gov/edgar/nportcommon">
  <headerData>
    <seriesId>S000076344</seriesId>
  </headerData>
  <formData>
    <genInfo>
      <repPdEndDt>2024-03-31</repPdEndDt>
    </genInfo>
    <fundInfo>
      <varInfo>
        <nameDesignatedIndex>NASDAQ-100 Index</nameDesignatedIndex>
        <indexIdentifier>NDX</indexIdentifier>
      </varInfo>
    </fundInfo>
    <invstOrSecs>
      <derivativeInstrument>
        <counterpartyName>BANK A</counterpartyName>
        <notionalAmt>1,000,000.00</notionalAmt>
        <derivativeInfo>
          <swapDeriv>
            <floatingPmntDesc fixedOrFloating="floating" floatingRtIndex="1 month Sofr + spread" floatingRtSpread="0.15"/>
          </swapDeriv>
        </derivativeInfo>
      </derivativeInstrument>
      <invstOrSec>
        <name>APPLE INC</name>
        <cusip>037833100</cusip>
        <valUSD>5000000</valUSD>
      </invstOrSec>
    </invstOrSecs>
  </formData>
</edgarSubmission>`

func TestParseSwapEntry(t *testing.T) {
	entries := Parse([]byte(swapDoc), "TSLL", "https://example.com/primary_doc.xml", ParseOptions{Strict: true})
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "TSLL", e.Ticker)
	assert.Equal(t, "BANK A", e.CounterpartyName)
	assert.Equal(t, "1,000,000.00", e.NotionalAmount)
	assert.Equal(t, "floating", e.RateType)
	assert.Equal(t, "1 month Sofr + spread", e.FloatingRateIndex)
	assert.Equal(t, "0.15", e.FloatingRateSpread)
	assert.Equal(t, "2024-03-31", e.PeriodOfReport)
	assert.Equal(t, "NASDAQ-100 Index", e.IndexName)
	assert.Equal(t, "NDX", e.IndexIdentifier)
}

func TestParseNormalizedScenario(t *testing.T) {
	entries := Parse([]byte(swapDoc), "TSLL", "u", ParseOptions{Strict: true})
	require.Len(t, entries, 1)

	n := &Normalizer{}
	rec := n.Normalize(entries[0], "2024-04-05")
	require.NotNil(t, rec.NotionalAmount)
	assert.Equal(t, 1000000.0, *rec.NotionalAmount)
	require.NotNil(t, rec.FloatingRateSpread)
	assert.Equal(t, 0.15, *rec.FloatingRateSpread)
	assert.Equal(t, "2024-03-31", rec.PeriodOfReport)
	assert.Equal(t, "2024-04-05", rec.FilingDate)
}

func TestParseNoSwapKeywords(t *testing.T) {
	doc := `<?xml version="1.0"?>
<edgarSubmission xmlns="http://www.sec.gov/edgar/nport">
  <formData>
    <invstOrSecs>
      <invstOrSec>
        <issuerTitle>PLAIN EQUITY HOLDING</issuerTitle>
        <valUSD>123456</valUSD>
      </invstOrSec>
    </invstOrSecs>
  </formData>
</edgarSubmission>`
	entries := Parse([]byte(doc), "TSLL", "u", ParseOptions{})
	assert.Empty(t, entries)
}

func TestParseSeriesFilter(t *testing.T) {
	tests := []struct {
		name     string
		seriesID string
		want     int
	}{
		{"matching series", "S000076344", 1},
		{"different series", "S000099999", 0},
		{"no filter", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Parse([]byte(swapDoc), "TSLL", "u", ParseOptions{SeriesID: tt.seriesID, Strict: true})
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestParseSeriesFilterMissingIdentifier(t *testing.T) {
	doc := `<edgarSubmission xmlns="http://www.sec.gov/edgar/nport">
  <formData>
    <derivativeInstrument>
      <counterpartyName>BANK B</counterpartyName>
      <notionalAmt>500</notionalAmt>
    </derivativeInstrument>
  </formData>
</edgarSubmission>`
	entries := Parse([]byte(doc), "TSLL", "u", ParseOptions{SeriesID: "S000076344"})
	assert.Empty(t, entries, "a document without a series identifier must be excluded when a filter is set")
}

func TestParseStructuralFailure(t *testing.T) {
	assert.Nil(t, Parse([]byte("<unclosed"), "TSLL", "u", ParseOptions{}))
	assert.Nil(t, Parse(nil, "TSLL", "u", ParseOptions{}))
}

func TestParseAliasPriority(t *testing.T) {
	// ctrPtyName is a lower-priority alias; counterpartyName wins when both exist.
	doc := `<root>
  <derivativeInstrument>
    <ctrPtyName>SECOND CHOICE</ctrPtyName>
    <counterpartyName>FIRST CHOICE</counterpartyName>
    <notionalAmt>100</notionalAmt>
  </derivativeInstrument>
</root>`
	entries := Parse([]byte(doc), "T", "u", ParseOptions{})
	require.Len(t, entries, 1)
	assert.Equal(t, "FIRST CHOICE", entries[0].CounterpartyName)
}

func TestParseAliasFallback(t *testing.T) {
	doc := `<root>
  <derivativeInstrument>
    <ctrPtyName>GOLDMAN SACHS</ctrPtyName>
    <notional>250000</notional>
  </derivativeInstrument>
</root>`
	entries := Parse([]byte(doc), "T", "u", ParseOptions{})
	require.Len(t, entries, 1)
	assert.Equal(t, "GOLDMAN SACHS", entries[0].CounterpartyName)
	assert.Equal(t, "250000", entries[0].NotionalAmount)
}

func TestParseStrictRejectsPartialEntry(t *testing.T) {
	doc := `<root>
  <derivativeInstrument>
    <counterpartyName>BANK C</counterpartyName>
    <notionalAmt>999</notionalAmt>
  </derivativeInstrument>
</root>`
	assert.Empty(t, Parse([]byte(doc), "T", "u", ParseOptions{Strict: true}),
		"strict policy requires rate fields too")
	assert.Len(t, Parse([]byte(doc), "T", "u", ParseOptions{Strict: false}), 1)
}

func TestParseElementRateFallback(t *testing.T) {
	// Some filer variants carry rate fields as child elements instead of
	// floatingPmntDesc attributes.
	doc := `<root>
  <derivativeInstrument>
    <counterpartyName>BANK D</counterpartyName>
    <notionalAmt>42000</notionalAmt>
    <fixedOrFloating>fixed</fixedOrFloating>
    <floatingRateIndex>OBFR01</floatingRateIndex>
  </derivativeInstrument>
</root>`
	entries := Parse([]byte(doc), "T", "u", ParseOptions{Strict: true})
	require.Len(t, entries, 1)
	assert.Equal(t, "fixed", entries[0].RateType)
	assert.Equal(t, "OBFR01", entries[0].FloatingRateIndex)
}

func TestParseUnionsCandidatePathsWithoutDuplicates(t *testing.T) {
	// A holding that is itself a derivativeInstrument must not be
	// extracted twice when multiple candidate paths reach it.
	doc := `<root>
  <holding>
    <derivativeInstrument>
      <counterpartyName>BANK E</counterpartyName>
      <notionalAmt>777</notionalAmt>
    </derivativeInstrument>
  </holding>
</root>`
	entries := Parse([]byte(doc), "T", "u", ParseOptions{})
	// Outer holding and inner derivativeInstrument both qualify as
	// candidates; both pass the keyword gate and resolve to the same
	// field values, but each node is visited exactly once.
	for _, e := range entries {
		assert.Equal(t, "BANK E", e.CounterpartyName)
	}
	assert.LessOrEqual(t, len(entries), 2)
}
