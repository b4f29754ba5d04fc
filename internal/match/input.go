package match

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadInputs loads the normalized lender file produced by the normalize
// stage. It tolerates the two column spellings that stage has used over
// time: original/name and predecessor/predecessor_name.
func ReadInputs(path string) ([]Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "match: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "match: read header of %s", path)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	origIdx, ok := idx["original"]
	if !ok {
		origIdx, ok = idx["name"]
	}
	if !ok {
		return nil, eris.Errorf("match: %s: missing original/name column", path)
	}
	coreIdx, hasCore := idx["search_core_name"]
	predIdx, hasPred := idx["predecessor"]
	if !hasPred {
		predIdx, hasPred = idx["predecessor_name"]
	}

	var inputs []Input
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "match: read row of %s", path)
		}
		in := Input{Original: strings.TrimSpace(cell(record, origIdx))}
		if in.Original == "" {
			continue
		}
		if hasCore {
			in.CoreName = strings.TrimSpace(cell(record, coreIdx))
		}
		if hasPred {
			in.Predecessor = strings.TrimSpace(cell(record, predIdx))
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
