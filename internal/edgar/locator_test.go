package edgar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegashares/swapsync/internal/fetcher"
)

const testCIK = "0001689873"

func testLocator(srv *httptest.Server) *Locator {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  "test test@example.com",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
	return NewLocator(f, srv.URL, srv.URL)
}

const submissionsBody = `{
  "cik": 1689873,
  "name": "Direxion Shares ETF Trust II",
  "filings": {
    "recent": {
      "accessionNumber": ["0001689873-24-000300", "0001689873-24-000200", "0001689873-24-000100", "0001689873-23-000900"],
      "filingDate": ["2024-05-30", "2024-02-28", "2024-08-29", "2024-03-15"],
      "form": ["NPORT-P", "NPORT-P", "NPORT-P", "NPORT-P/A"],
      "primaryDocument": ["primary_doc.xml", "", "primary_doc.xml", "primary_doc.xml"]
    },
    "files": []
  }
}`

func TestFindFilingsSortedDescending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, submissionsBody)
	}))
	defer srv.Close()

	l := testLocator(srv)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	refs, err := l.FindFilings(context.Background(), testCIK, "NPORT-P", start, end)
	require.NoError(t, err)
	require.Len(t, refs, 3, "amended NPORT-P/A must be excluded by exact match")

	assert.True(t, sort.SliceIsSorted(refs, func(i, j int) bool {
		return refs[i].FilingDate > refs[j].FilingDate
	}))
	assert.Equal(t, "2024-08-29", refs[0].FilingDate)
}

func TestFindFilingsArchiveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, submissionsBody)
	}))
	defer srv.Close()

	l := testLocator(srv)
	refs, err := l.FindFilings(context.Background(), testCIK, "NPORT-P",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, ref := range refs {
		assert.Contains(t, ref.DocumentURL, "/Archives/edgar/data/1689873/")
	}
	// Accession separators are stripped from the path segment.
	assert.Contains(t, refs[0].DocumentURL, "/000168987324000100/primary_doc.xml")
	// Missing primaryDocument falls back to primary_doc.xml.
	assert.Contains(t, refs[2].DocumentURL, "/000168987324000200/primary_doc.xml")
}

func TestFindFilingsDateWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, submissionsBody)
	}))
	defer srv.Close()

	l := testLocator(srv)
	refs, err := l.FindFilings(context.Background(), testCIK, "NPORT-P",
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "2024-05-30", refs[0].FilingDate)
}

func TestFindFilingsSupplementalFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions/CIK0001689873.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "cik": 1689873,
  "filings": {
    "recent": {
      "accessionNumber": ["0001689873-24-000300"],
      "filingDate": ["2024-05-30"],
      "form": ["NPORT-P"],
      "primaryDocument": ["primary_doc.xml"]
    },
    "files": [{"name": "CIK0001689873-submissions-001.json"}]
  }
}`)
	})
	mux.HandleFunc("/submissions/CIK0001689873-submissions-001.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "accessionNumber": ["0001689873-24-000050"],
  "filingDate": ["2024-01-31"],
  "form": ["NPORT-P"],
  "primaryDocument": ["primary_doc.xml"]
}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := testLocator(srv)
	refs, err := l.FindFilings(context.Background(), testCIK, "NPORT-P",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "2024-05-30", refs[0].FilingDate)
	assert.Equal(t, "2024-01-31", refs[1].FilingDate)
}

func TestFindFilingsXMLFallback(t *testing.T) {
	mux := http.NewServeMux()
	// Submissions endpoint is down; locator falls back to the legacy XML index.
	mux.HandleFunc("/submissions/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/cgi-bin/browse-edgar", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<companyFilings>
  <results>
    <filing>
      <type>NPORT-P</type>
      <dateFiled>2024-05-30</dateFiled>
      <filingHREF>/Archives/edgar/data/1689873/000168987324000300/0001689873-24-000300-index.htm</filingHREF>
    </filing>
    <filing>
      <type>NPORT-P/A</type>
      <dateFiled>2024-06-15</dateFiled>
      <filingHREF>/Archives/edgar/data/1689873/000168987324000400/0001689873-24-000400-index.htm</filingHREF>
    </filing>
  </results>
</companyFilings>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := testLocator(srv)
	refs, err := l.FindFilings(context.Background(), testCIK, "NPORT-P",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, srv.URL+"/Archives/edgar/data/1689873/000168987324000300/primary_doc.xml", refs[0].DocumentURL)
}

func TestFindFilingsBothSourcesDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := testLocator(srv)
	_, err := l.FindFilings(context.Background(), testCIK, "NPORT-P", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestFindFilingsEmptyCIK(t *testing.T) {
	l := NewLocator(nil, "", "")
	_, err := l.FindFilings(context.Background(), "", "NPORT-P", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestAccessionFromHref(t *testing.T) {
	assert.Equal(t, "0001689873-24-000300",
		accessionFromHref("/Archives/edgar/data/1689873/000168987324000300/0001689873-24-000300-index.htm"))
	assert.Equal(t, "", accessionFromHref("/Archives/edgar/data/1689873/"))
}
