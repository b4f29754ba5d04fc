package merge

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

// LoanRow is one loan record reduced to the fields the panel carries.
type LoanRow struct {
	LenderName string
	LenderID   string
	Year       int
	Quarter    int
}

// ReadLoanRows loads one DealScan file. Files from the vendor are
// usually UTF-8 but older extracts ship as ISO-8859-1; invalid UTF-8
// triggers a transparent re-decode.
func ReadLoanRows(path string) ([]LoanRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read %s", path)
	}
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "merge: decode %s", path)
		}
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read header of %s", path)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	nameIdx, hasName := idx["lender_name"]
	idIdx, hasID := idx["lender_id"]
	yearIdx, hasYear := idx["year"]
	quarterIdx, hasQuarter := idx["quarter"]
	if !hasName || !hasID || !hasYear || !hasQuarter {
		return nil, eris.Errorf("merge: %s: missing lender_name/lender_id/year/quarter columns", path)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read rows of %s", path)
	}
	rows := make([]LoanRow, 0, len(records))
	for _, record := range records {
		row := LoanRow{
			LenderName: strings.TrimSpace(value(record, nameIdx)),
			LenderID:   CanonicalID(value(record, idIdx)),
			Year:       parseIntOrZero(value(record, yearIdx)),
			Quarter:    parseIntOrZero(value(record, quarterIdx)),
		}
		if row.LenderName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
