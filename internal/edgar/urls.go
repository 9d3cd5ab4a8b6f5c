// Package edgar locates N-PORT filings through the EDGAR company index
// and constructs deterministic archive document URLs.
package edgar

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vegashares/swapsync/internal/model"
)

const (
	// DefaultBaseURL serves archive documents and the legacy XML index.
	DefaultBaseURL = "https://www.sec.gov"
	// DefaultDataBaseURL serves the JSON submissions documents.
	DefaultDataBaseURL = "https://data.sec.gov"
)

// SubmissionsURL returns the JSON submissions document URL for a CIK.
func SubmissionsURL(dataBase, cik string) string {
	return fmt.Sprintf("%s/submissions/CIK%s.json", dataBase, model.PadCIK(cik))
}

// ArchiveDocURL builds the well-known archive path for a filing's
// primary document. The archive embeds the bare-integer CIK and the
// accession number with separators stripped.
func ArchiveDocURL(base, cik, accession, primaryDoc string) string {
	acc := strings.ReplaceAll(accession, "-", "")
	doc := primaryDoc
	if doc == "" {
		doc = "primary_doc.xml"
	}
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", base, model.CIKNumeric(cik), acc, doc)
}

// CompanyIndexURL returns the legacy browse-edgar XML index URL for a
// CIK and form type.
func CompanyIndexURL(base, cik, formType string) string {
	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", model.PadCIK(cik))
	q.Set("type", formType)
	q.Set("count", "100")
	q.Set("output", "xml")
	return fmt.Sprintf("%s/cgi-bin/browse-edgar?%s", base, q.Encode())
}

// accessionFromHref pulls the dashed accession number out of a legacy
// index filingHREF, e.g.
// /Archives/edgar/data/1689873/000168987324000123/0001689873-24-000123-index.htm
func accessionFromHref(href string) string {
	base := href
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, "-index.htm")
	base = strings.TrimSuffix(base, "-index.html")
	if !strings.Contains(base, "-") {
		return ""
	}
	return base
}
