package main

import "testing"

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"$450,000", f(450000)},
		{" 1,234.56 ", f(1234.56)},
		{"325000", f(325000)},
		{"", nil},
		{"TBD", nil},
	}
	for _, tt := range tests {
		got := parseMoney(tt.in)
		if !eq(got, tt.want) {
			t.Errorf("parseMoney(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func TestParseFloat(t *testing.T) {
	if got := parseFloat("2.75%"); got == nil || *got != 2.75 {
		t.Errorf("parseFloat(2.75%%) = %v", deref(got))
	}
	if got := parseFloat(""); got != nil {
		t.Errorf("parseFloat(empty) = %v", *got)
	}
}

func TestParseInt(t *testing.T) {
	if got := parseInt("1,850"); got == nil || *got != 1850 {
		t.Errorf("parseInt(1,850) = %v", got)
	}
	if got := parseInt("3.0"); got == nil || *got != 3 {
		t.Errorf("parseInt(3.0) = %v", got)
	}
	if got := parseInt("n/a"); got != nil {
		t.Errorf("parseInt(n/a) = %v", *got)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"Y", "yes", "TRUE", "1", "x"} {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "no", "N", "0", "maybe"} {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}

func TestParseBoolPtr(t *testing.T) {
	if got := parseBoolPtr(""); got != nil {
		t.Errorf("parseBoolPtr(empty) = %v, want nil", *got)
	}
	if got := parseBoolPtr("no"); got == nil || *got {
		t.Errorf("parseBoolPtr(no) = %v, want false", got)
	}
}

func TestRowToSubmission(t *testing.T) {
	row := map[string]string{
		"street":       "1 Main St",
		"city":         "Denver",
		"zip":          "80202",
		"asking_price": "$450,000",
		"balance":      "$300,000",
		"loan_type":    "VA",
	}
	get := func(name string) string { return row[name] }

	sub, err := rowToSubmission(get, "CO")
	if err != nil {
		t.Fatal(err)
	}
	if sub.State != "CO" {
		t.Errorf("state = %q, want CO from home state", sub.State)
	}
	if sub.RealtorName != "Unknown" {
		t.Errorf("realtor = %q, want Unknown", sub.RealtorName)
	}
	if sub.AskingPrice == nil || *sub.AskingPrice != 450000 {
		t.Errorf("asking_price = %v", deref(sub.AskingPrice))
	}
	if sub.LoanType == nil || *sub.LoanType != "VA" {
		t.Errorf("loan_type = %v", sub.LoanType)
	}

	row["zip"] = "8020"
	if _, err := rowToSubmission(get, "CO"); err == nil {
		t.Error("want error for bad zip")
	}
	delete(row, "street")
	row["zip"] = "80202"
	if _, err := rowToSubmission(get, "CO"); err == nil {
		t.Error("want error for missing street")
	}
}

func f(v float64) *float64 { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}

func eq(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
