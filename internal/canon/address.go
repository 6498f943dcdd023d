package canon

import (
	"regexp"
	"strings"
)

var zipRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidZIP reports whether z is a 5-digit or 5+4 ZIP code.
func ValidZIP(z string) bool {
	return zipRe.MatchString(strings.TrimSpace(z))
}

// NormalizeState trims and uppercases a state value and collapses a
// spelled-out state name to its two-letter code. Values it cannot map
// are returned uppercased as-is.
func NormalizeState(s string) string {
	st := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if len(st) > 2 {
		st = stateAbbrev(st)
	}
	return st
}

func stateAbbrev(s string) string {
	m := map[string]string{
		"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
	}
	if v, ok := m[s]; ok {
		return v
	}
	return s
}
