package main

import (
	"strconv"
	"strings"
)

// Spreadsheet exports are messy: currency symbols, thousands
// separators, stray whitespace, and a grab-bag of truthy spellings.
// Unparseable cells come back nil rather than failing the row.

func parseMoney(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// beds sometimes come through as "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	return &v
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "x", "✓":
		return true
	}
	return false
}

// parseBoolPtr distinguishes "blank" from "no".
func parseBoolPtr(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := parseBool(s)
	return &v
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
