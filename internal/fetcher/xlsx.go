package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX reads the first sheet of an XLSX workbook and returns the
// header row plus all data rows as string slices. Ticker-mapping
// workbooks exported from spreadsheets come through here.
func ReadXLSX(path string) (header []string, rows [][]string, err error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("xlsx: workbook has no sheets")
	}

	for i, row := range f.Sheets[0].Rows {
		cells := rowToStrings(row)
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		cells = append(cells, c.String())
	}
	return cells
}
