package fdic

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Institution is one registry record. CERT and FED_RSSD are distinct
// identifiers: FED_RSSD is the stable supervisory ID used as the join key
// downstream, CERT is the deposit-insurance certificate number.
type Institution struct {
	Name     string `json:"NAME"`
	Cert     Num    `json:"CERT"`
	RSSD     Num    `json:"FED_RSSD"`
	City     string `json:"CITY"`
	State    string `json:"STALP"`
	Active   Num    `json:"ACTIVE"`
	Assets   Num    `json:"ASSET"`
	EndDate  string `json:"ENDEFYMD"`
	FileDate string `json:"FILDATE"`
}

// IsActive reports whether the active flag equals 1.
func (i Institution) IsActive() bool {
	return i.Active.Valid && i.Active.Value == 1
}

// ClosureDate prefers the filing date and falls back to the end-of-file
// date, matching the order the registry populates them in.
func (i Institution) ClosureDate() string {
	if i.FileDate != "" {
		return i.FileDate
	}
	return i.EndDate
}

// Num is a float that tolerates the registry's inconsistent typing: the
// same field arrives as a JSON number, a numeric string, or null depending
// on the record.
type Num struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts numbers, numeric strings, empty strings, and null.
func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Num{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Num{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = Num{}
			return nil // non-numeric string: treat as absent, not fatal
		}
		*n = Num{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Num{Value: v, Valid: true}
	return nil
}

// ID renders the value as a canonical integer-like string, or "" when
// absent. Source identifiers may arrive float-formatted ("12345.0"); the
// canonical form strips that.
func (n Num) ID() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(int64(n.Value), 10)
}

// Float returns the value, or 0 when absent.
func (n Num) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}
