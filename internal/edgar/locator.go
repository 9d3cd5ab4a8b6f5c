package edgar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/fetcher"
	"github.com/vegashares/swapsync/internal/model"
)

// DefaultWindowDays is the trailing filing window applied when the
// caller supplies no date bounds.
const DefaultWindowDays = 365

// Locator finds filings for a registrant through the EDGAR company
// index. The JSON submissions document is the primary source; the
// legacy tabular XML index is the fallback shape.
type Locator struct {
	fetcher     fetcher.Fetcher
	baseURL     string
	dataBaseURL string
}

// NewLocator creates a Locator. Empty base URLs fall back to the live
// EDGAR hosts; tests point both at an httptest server.
func NewLocator(f fetcher.Fetcher, baseURL, dataBaseURL string) *Locator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if dataBaseURL == "" {
		dataBaseURL = DefaultDataBaseURL
	}
	return &Locator{fetcher: f, baseURL: baseURL, dataBaseURL: dataBaseURL}
}

// submissionsDoc is the JSON submissions document: company metadata
// plus a recent-filings table of parallel arrays and an archive list of
// supplemental index files for older filings.
type submissionsDoc struct {
	CIK     json.Number `json:"cik"`
	Name    string      `json:"name"`
	Filings struct {
		Recent filingList `json:"recent"`
		Files  []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

type filingList struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDoc      []string `json:"primaryDocument"`
}

// companyIndex is the legacy browse-edgar XML response shape.
type companyIndex struct {
	Results struct {
		Filings []struct {
			Type       string `xml:"type"`
			DateFiled  string `xml:"dateFiled"`
			FilingHREF string `xml:"filingHREF"`
		} `xml:"filing"`
	} `xml:"results"`
}

// FindFilings returns the registrant's filings of exactly formType
// within [start, end], sorted by filing date descending. Zero time
// bounds default to the trailing DefaultWindowDays window. Form-type
// matching is exact: amended forms (NPORT-P/A) are admitted only when
// requested explicitly.
func (l *Locator) FindFilings(ctx context.Context, cik, formType string, start, end time.Time) ([]model.FilingReference, error) {
	cik = model.PadCIK(cik)
	if cik == "" {
		return nil, eris.New("edgar: empty registrant identifier")
	}
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -DefaultWindowDays)
	}

	refs, err := l.fromSubmissions(ctx, cik, formType, start, end)
	if err != nil {
		zap.L().Warn("edgar: submissions index unavailable, trying XML index",
			zap.String("cik", cik),
			zap.Error(err),
		)
		refs, err = l.fromXMLIndex(ctx, cik, formType, start, end)
		if err != nil {
			return nil, eris.Wrapf(err, "edgar: locate filings for CIK %s", cik)
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].FilingDate > refs[j].FilingDate
	})
	return refs, nil
}

func (l *Locator) fromSubmissions(ctx context.Context, cik, formType string, start, end time.Time) ([]model.FilingReference, error) {
	data, err := l.fetcher.DownloadBytes(ctx, SubmissionsURL(l.dataBaseURL, cik))
	if err != nil {
		return nil, eris.Wrap(err, "fetch submissions")
	}

	var doc submissionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "decode submissions")
	}

	refs := l.filterList(cik, doc.Filings.Recent, formType, start, end)

	// Older filings live in supplemental index files, each holding the
	// same parallel-array table at the top level.
	for _, file := range doc.Filings.Files {
		if file.Name == "" {
			continue
		}
		older, err := l.fetchSupplement(ctx, cik, file.Name, formType, start, end)
		if err != nil {
			zap.L().Warn("edgar: skip supplemental index file",
				zap.String("cik", cik),
				zap.String("file", file.Name),
				zap.Error(err),
			)
			continue
		}
		refs = append(refs, older...)
	}

	return refs, nil
}

func (l *Locator) fetchSupplement(ctx context.Context, cik, name, formType string, start, end time.Time) ([]model.FilingReference, error) {
	url := fmt.Sprintf("%s/submissions/%s", l.dataBaseURL, name)
	data, err := l.fetcher.DownloadBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	var list filingList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, eris.Wrap(err, "decode supplemental index")
	}
	return l.filterList(cik, list, formType, start, end), nil
}

func (l *Locator) filterList(cik string, list filingList, formType string, start, end time.Time) []model.FilingReference {
	var refs []model.FilingReference
	for i, form := range list.Form {
		if form != formType {
			continue
		}
		date := safeIndex(list.FilingDate, i)
		filed, err := time.Parse(model.DateLayout, date)
		if err != nil || filed.Before(start) || filed.After(end) {
			continue
		}
		accession := safeIndex(list.AccessionNumber, i)
		if accession == "" {
			continue
		}
		refs = append(refs, model.FilingReference{
			FormType:    form,
			FilingDate:  date,
			DocumentURL: ArchiveDocURL(l.baseURL, cik, accession, safeIndex(list.PrimaryDoc, i)),
		})
	}
	return refs
}

func (l *Locator) fromXMLIndex(ctx context.Context, cik, formType string, start, end time.Time) ([]model.FilingReference, error) {
	data, err := l.fetcher.DownloadBytes(ctx, CompanyIndexURL(l.baseURL, cik, formType))
	if err != nil {
		return nil, eris.Wrap(err, "fetch XML index")
	}

	var idx companyIndex
	if err := fetcher.DecodeXML(bytes.NewReader(data), &idx); err != nil {
		return nil, eris.Wrap(err, "decode XML index")
	}

	var refs []model.FilingReference
	for _, f := range idx.Results.Filings {
		if f.Type != formType {
			continue
		}
		filed, err := time.Parse(model.DateLayout, f.DateFiled)
		if err != nil || filed.Before(start) || filed.After(end) {
			continue
		}
		accession := accessionFromHref(f.FilingHREF)
		if accession == "" {
			continue
		}
		refs = append(refs, model.FilingReference{
			FormType:    f.Type,
			FilingDate:  f.DateFiled,
			DocumentURL: ArchiveDocURL(l.baseURL, cik, accession, ""),
		})
	}
	return refs, nil
}

func safeIndex(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
