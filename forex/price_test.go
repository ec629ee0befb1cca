package forex

import "testing"

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		text string

		expected float64
		ok       bool
	}{
		{text: "€18.50", expected: 18.50, ok: true},
		{text: "18,50 €", expected: 18.50, ok: true},
		{text: "$1,234.56", expected: 1234.56, ok: true},
		{text: "1.234,56", expected: 1234.56, ok: true},
		{text: "JPY 1,200", expected: 1200, ok: true},
		{text: "1.200", expected: 1200, ok: true},
		{text: "CHF 1'234.50", expected: 1234.50, ok: true},
		{text: "12", expected: 12, ok: true},
		{text: "9,5", expected: 9.5, ok: true},
		{text: "around 15 euros", expected: 15, ok: true},
		{text: "market price", ok: false},
		{text: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			value, ok := ParseAmount(tc.text)
			if ok != tc.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, expected %v", tc.text, ok, tc.ok)
			}
			if ok && value != tc.expected {
				t.Errorf("ParseAmount(%q) = %v, expected %v", tc.text, value, tc.expected)
			}
		})
	}
}
