package core

import "testing"

func TestNextFromExisting(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		codes  []string
		want   string
	}{
		{"empty series starts at 001", "INV", nil, "INV001"},
		{"max plus one", "INV", []string{"INV001", "INV002", "INV005"}, "INV006"},
		{"gaps are not refilled", "INV", []string{"INV001", "INV009"}, "INV010"},
		{"foreign prefixes ignored", "INV", []string{"ORD003", "INV002"}, "INV003"},
		{"malformed suffixes ignored", "INV", []string{"INVABC", "INV-7", "INV004"}, "INV005"},
		{"continues past padding width", "RCP", []string{"RCP999"}, "RCP1000"},
		{"wide suffixes win", "RCP", []string{"RCP1000", "RCP998"}, "RCP1001"},
		{"barcode prefix", "GR22", []string{"GR22001", "GR22002"}, "GR22003"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextFromExisting(tc.prefix, tc.codes)
			if got != tc.want {
				t.Errorf("nextFromExisting(%q, %v) = %q, want %q", tc.prefix, tc.codes, got, tc.want)
			}
		})
	}
}

func TestParseSuffix(t *testing.T) {
	if n, ok := parseSuffix("INV", "INV042"); !ok || n != 42 {
		t.Errorf("parseSuffix(INV, INV042) = %d, %v", n, ok)
	}
	if _, ok := parseSuffix("INV", "INV"); ok {
		t.Error("bare prefix should not parse")
	}
	if _, ok := parseSuffix("INV", "RCP001"); ok {
		t.Error("foreign prefix should not parse")
	}
	if _, ok := parseSuffix("INV", "INV00a"); ok {
		t.Error("non-numeric suffix should not parse")
	}
}

func TestFormatCode(t *testing.T) {
	if got := formatCode("PAY", 7); got != "PAY007" {
		t.Errorf("formatCode(PAY, 7) = %q", got)
	}
	if got := formatCode("PAY", 1234); got != "PAY1234" {
		t.Errorf("formatCode(PAY, 1234) = %q", got)
	}
}
