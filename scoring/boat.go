package scoring

import "strings"

// BoatKey identifies a boat inside a class: sail number plus an optional
// country code for fleets where sail numbers repeat across nations.
type BoatKey struct {
	SailNumber string `json:"sail_number"`
	Country    string `json:"country_code,omitempty"`
}

// NewBoatKey trims and upper-cases both parts.
func NewBoatKey(sailNumber, country string) BoatKey {
	return BoatKey{
		SailNumber: strings.ToUpper(strings.TrimSpace(sailNumber)),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
}

func (k BoatKey) IsZero() bool { return k.SailNumber == "" }

func (k BoatKey) String() string {
	if k.Country == "" {
		return k.SailNumber
	}
	return k.Country + " " + k.SailNumber
}

// Less orders keys by sail number then country, numerically when both sail
// numbers are digits only.
func (k BoatKey) Less(o BoatKey) bool {
	if k.SailNumber != o.SailNumber {
		return sailLess(k.SailNumber, o.SailNumber)
	}
	return k.Country < o.Country
}

func sailLess(a, b string) bool {
	if isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
