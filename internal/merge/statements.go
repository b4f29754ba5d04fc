package merge

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Statement is one call report row reduced to the join keys and the
// institution name.
type Statement struct {
	Year    int
	Quarter int
	RSSD    string
	Name    string
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// FileYear extracts the 4-digit reporting year embedded in a call report
// filename. The second return is false when no year is present.
func FileYear(path string) (int, bool) {
	m := yearPattern.FindString(filepath.Base(path))
	if m == "" {
		return 0, false
	}
	return parseIntOrZero(m), true
}

// ReadStatements loads one call report file, CSV or XLSX. Headers are
// lowercased and trimmed; rssdid and name are required. Rows missing a
// year column inherit fileYear, and a missing quarter column defaults to
// the 0 sentinel.
func ReadStatements(path string, fileYear int) ([]Statement, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSXRows(path)
	} else {
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("merge: %s: empty call report", path)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		col = strings.TrimPrefix(col, "\uFEFF")
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	rssdIdx, hasRSSD := idx["rssdid"]
	nameIdx, hasName := idx["name"]
	if !hasRSSD || !hasName {
		return nil, eris.Errorf("merge: %s: missing rssdid/name columns", path)
	}
	yearIdx, hasYear := idx["year"]
	quarterIdx, hasQuarter := idx["quarter"]

	stmts := make([]Statement, 0, len(rows)-1)
	for _, record := range rows[1:] {
		s := Statement{
			Year: fileYear,
			RSSD: CanonicalID(value(record, rssdIdx)),
			Name: strings.TrimSpace(value(record, nameIdx)),
		}
		if hasYear {
			s.Year = parseIntOrZero(value(record, yearIdx))
		}
		if hasQuarter {
			s.Quarter = parseIntOrZero(value(record, quarterIdx))
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read %s", path)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("merge: %s: no sheets", path)
	}
	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
