package match

import (
	"fmt"
	"strconv"
)

const maxMatches = 5

// KeyColumn is the resume key in the master map checkpoint.
const KeyColumn = "Lender_Name_Input"

// Header lists the master map columns: three summary fields followed by a
// fixed block of eight columns per ranked match.
var Header = buildHeader()

func buildHeader() []string {
	h := []string{KeyColumn, "Found", "Raw_Candidates_Count"}
	for i := 1; i <= maxMatches; i++ {
		p := "Match" + strconv.Itoa(i) + "_"
		h = append(h,
			p+"RSSD", p+"CERT", p+"Name", p+"State",
			p+"City", p+"Status", p+"SimScore", p+"Asset")
	}
	return h
}

// Row renders a resolution result as a master map record. Unused match
// slots stay empty.
func Row(res Result) []string {
	row := make([]string, 0, len(Header))
	row = append(row,
		res.Original,
		strconv.FormatBool(len(res.Matches) > 0),
		strconv.Itoa(res.RawCount))
	for i := 0; i < maxMatches; i++ {
		if i >= len(res.Matches) {
			row = append(row, "", "", "", "", "", "", "", "")
			continue
		}
		m := res.Matches[i]
		status := "Active"
		if !m.Inst.IsActive() {
			status = fmt.Sprintf("Inactive (end: %s)", m.Inst.ClosureDate())
		}
		row = append(row,
			m.Inst.RSSD.ID(),
			m.Inst.Cert.ID(),
			m.Inst.Name,
			m.Inst.State,
			m.Inst.City,
			status,
			strconv.FormatFloat(m.Score, 'f', 2, 64),
			m.Inst.Assets.ID())
	}
	return row
}
