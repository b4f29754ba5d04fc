package merge

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// MapEntry is one lender from the master map with its ranked regulatory
// identifiers, in rank order.
type MapEntry struct {
	Lender string
	RSSDs  []string
}

// LoadMasterMap reads the master map and keeps lenders whose top-ranked
// match carries an identifier. Identifiers are canonicalized on load.
func LoadMasterMap(path string) ([]MapEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: open master map %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "merge: read master map header")
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))] = i
	}

	nameIdx, ok := idx["Lender_Name_Input"]
	if !ok {
		return nil, eris.Errorf("merge: %s: missing Lender_Name_Input column", path)
	}
	var rssdIdx []int
	for i := 1; i <= 5; i++ {
		if j, ok := idx["Match"+strconv.Itoa(i)+"_RSSD"]; ok {
			rssdIdx = append(rssdIdx, j)
		}
	}

	var entries []MapEntry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "merge: read master map row")
		}
		entry := MapEntry{Lender: strings.TrimSpace(value(record, nameIdx))}
		if entry.Lender == "" {
			continue
		}
		for _, j := range rssdIdx {
			if id := CanonicalID(value(record, j)); id != "" {
				entry.RSSDs = append(entry.RSSDs, id)
			}
		}
		// Only lenders with a top-ranked identifier participate in the join.
		if len(rssdIdx) > 0 && CanonicalID(value(record, rssdIdx[0])) == "" {
			continue
		}
		if len(entry.RSSDs) == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func value(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
