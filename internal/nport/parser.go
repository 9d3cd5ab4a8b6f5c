// Package nport extracts derivative-swap positions from N-PORT filing
// XML and normalizes them into typed records.
//
// The source schema drifts across filer software vendors: tag names,
// namespace prefixes, and nesting all vary. Extraction therefore runs
// entirely on alias tables and local-name matching instead of a fixed
// schema binding.
package nport

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

// ParseOptions controls per-document extraction behavior.
type ParseOptions struct {
	// SeriesID, when set, gates the whole document: umbrella registrants
	// file one N-PORT per sub-fund under the same CIK, and a filing for
	// a sibling series must yield nothing.
	SeriesID string

	// Strict selects the entry-acceptance policy. Strict entries need
	// counterparty, rate type, floating index, and notional all present;
	// loose entries need any one meaningful field.
	Strict bool
}

// RawEntry is one candidate swap entry with field values still in their
// source text form. The normalizer owns type coercion.
type RawEntry struct {
	Ticker             string
	FilingURL          string
	PeriodOfReport     string
	IndexName          string
	IndexIdentifier    string
	CounterpartyName   string
	RateType           string
	FloatingRateIndex  string
	FloatingRateSpread string
	NotionalAmount     string
}

// candidateEntryPaths lists the known container tags for investment and
// derivative entries. Paths are tried independently and unioned; an
// entry is not assumed unique to one path.
var candidateEntryPaths = []string{
	"//invstOrSec",
	"//derivativeInstrument",
	"//derivative",
	"//investment",
	"//investmentOrSecurity",
	"//security",
	"//holding",
}

// Parse extracts swap entries from a raw N-PORT document. It is pure
// and never fails past this boundary: structural parse errors, a
// non-matching series, or a document with no qualifying entries all
// return nil.
func Parse(raw []byte, ticker, sourceURL string, opts ParseOptions) []RawEntry {
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		zap.L().Warn("nport: structural parse failure",
			zap.String("ticker", ticker),
			zap.String("url", sourceURL),
			zap.Error(err),
		)
		return nil
	}

	if opts.SeriesID != "" && !seriesMatches(doc, opts.SeriesID) {
		return nil
	}

	meta := documentMeta(doc)

	var entries []RawEntry
	seen := make(map[*xmlquery.Node]bool)
	for _, path := range candidateEntryPaths {
		for _, node := range xmlquery.Find(doc, path) {
			if seen[node] {
				continue
			}
			seen[node] = true

			if !hasSwapIndicator(node) {
				continue
			}

			entry := extractEntry(node, ticker, sourceURL, meta)
			if accepted(entry, opts.Strict) {
				entries = append(entries, entry)
			}
		}
	}

	return entries
}

// docMeta carries the filing-level fields attached to every entry.
type docMeta struct {
	periodOfReport  string
	indexName       string
	indexIdentifier string
}

// seriesMatches checks the document's series identifier against the
// filter. A missing identifier counts as a mismatch: filtering is
// exclusionary, never partial.
func seriesMatches(doc *xmlquery.Node, seriesID string) bool {
	el := xmlquery.FindOne(doc, "//seriesId")
	return el != nil && strings.TrimSpace(el.InnerText()) == seriesID
}

// documentMeta extracts filing-level metadata: the reporting period end
// date and the designated reference index from the varInfo section.
func documentMeta(doc *xmlquery.Node) docMeta {
	var meta docMeta
	if el := xmlquery.FindOne(doc, "//repPdEndDt"); el != nil {
		meta.periodOfReport = strings.TrimSpace(el.InnerText())
	}
	if varInfo := xmlquery.FindOne(doc, "//varInfo"); varInfo != nil {
		if el := xmlquery.FindOne(varInfo, ".//nameDesignatedIndex"); el != nil {
			meta.indexName = strings.TrimSpace(el.InnerText())
		}
		if el := xmlquery.FindOne(varInfo, ".//indexIdentifier"); el != nil {
			meta.indexIdentifier = strings.TrimSpace(el.InnerText())
		}
	}
	return meta
}

// extractEntry pulls the swap attribute set out of one candidate node.
// Generic fields resolve through the alias table; the fixed/floating
// payment description is an attribute-based structure and goes through
// its own path.
func extractEntry(node *xmlquery.Node, ticker, sourceURL string, meta docMeta) RawEntry {
	entry := RawEntry{
		Ticker:           ticker,
		FilingURL:        sourceURL,
		PeriodOfReport:   meta.periodOfReport,
		CounterpartyName: findAlias(node, "counterparty_name"),
		NotionalAmount:   findAlias(node, "notional_amt"),
		IndexName:        findAlias(node, "index_name"),
		IndexIdentifier:  findAlias(node, "index_identifier"),
	}

	// Filing-level designated index wins over whatever the alias lookup
	// scraped from inside the entry.
	if meta.indexName != "" {
		entry.IndexName = meta.indexName
	}
	if meta.indexIdentifier != "" {
		entry.IndexIdentifier = meta.indexIdentifier
	}

	extractFloatingPayment(node, &entry)
	return entry
}

// extractFloatingPayment reads rate type, index, and spread from the
// floatingPmntDesc element, which carries them as XML attributes in the
// common filer layout. Child-element variants are the fallback.
func extractFloatingPayment(node *xmlquery.Node, entry *RawEntry) {
	if desc := xmlquery.FindOne(node, ".//floatingPmntDesc"); desc != nil {
		entry.RateType = desc.SelectAttr("fixedOrFloating")
		entry.FloatingRateIndex = desc.SelectAttr("floatingRtIndex")
		entry.FloatingRateSpread = desc.SelectAttr("floatingRtSpread")
	}

	if entry.RateType == "" {
		entry.RateType = firstText(node, "fixedOrFloating", "rateType")
	}
	if entry.FloatingRateIndex == "" {
		entry.FloatingRateIndex = firstText(node, "floatingRtIndex", "floatingRateIndex")
	}
	if entry.FloatingRateSpread == "" {
		entry.FloatingRateSpread = firstText(node, "floatingRtSpread", "floatingRateSpread")
	}
}

func firstText(node *xmlquery.Node, tags ...string) string {
	for _, tag := range tags {
		if el := xmlquery.FindOne(node, ".//"+tag); el != nil {
			if text := strings.TrimSpace(el.InnerText()); text != "" {
				return text
			}
		}
	}
	return ""
}

// accepted applies the entry-acceptance policy.
func accepted(e RawEntry, strict bool) bool {
	if strict {
		return e.CounterpartyName != "" && e.RateType != "" &&
			e.FloatingRateIndex != "" && e.NotionalAmount != ""
	}
	return e.CounterpartyName != "" || e.NotionalAmount != "" ||
		e.RateType != "" || e.FloatingRateIndex != "" ||
		e.FloatingRateSpread != ""
}
