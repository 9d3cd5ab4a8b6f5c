package nport

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// fieldAliases maps each logical output field to the ordered list of
// source tag names observed across filer software vendors. The first
// alias with a non-empty value wins. Lookup is namespace-insensitive:
// xmlquery matches on local names, so nport:/ncom:/com: prefixed
// variants all resolve through the same entry.
//
// Extend a list here when a new filer variant shows up; nothing else
// needs to change.
var fieldAliases = map[string][]string{
	"counterparty_name": {
		"counterpartyName", "ctrPtyName", "counterparty", "ctrPty", "cptyName", "partyName",
	},
	"notional_amt": {
		"notionalAmt", "notional", "notionalAmount", "amt", "principalAmt", "nominalAmt", "faceAmt",
	},
	"index_name": {
		"indexName", "indexTitle", "index", "benchmarkName", "name", "title",
		"desc", "description", "issuerName", "securityName",
	},
	"index_identifier": {
		"indexIdentifier", "indexId", "benchmarkId", "identifier", "id",
		"securityId", "cusip", "isin",
	},
}

// swapIndicators gates entry acceptance: an entry whose serialized text
// contains none of these is not a derivative position. N-PORT has no
// single definitive "this is a swap" flag across filer variants, so a
// keyword scan is the usable precision/recall tradeoff.
var swapIndicators = []string{
	"swap", "derivative", "deriv", "forward", "future", "option",
	"floatingrtindex", "fixedorfloating", "counterparty", "notional",
}

// findAlias returns the first non-empty text value among the alias tag
// names, searched anywhere under node.
func findAlias(node *xmlquery.Node, field string) string {
	for _, tag := range fieldAliases[field] {
		if el := xmlquery.FindOne(node, ".//"+tag); el != nil {
			if text := strings.TrimSpace(el.InnerText()); text != "" {
				return text
			}
		}
	}
	return ""
}

// hasSwapIndicator reports whether the entry's full serialized form
// mentions any derivative-indicating keyword.
func hasSwapIndicator(node *xmlquery.Node) bool {
	text := strings.ToLower(node.OutputXML(true))
	for _, kw := range swapIndicators {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
