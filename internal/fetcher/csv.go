package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV reads all rows from r, trimming whitespace from every field.
// The first row is returned separately as the header. Rows may have a
// variable number of fields; callers index defensively.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if first {
			first = false
			header = record
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}
