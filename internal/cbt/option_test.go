package cbt

import "testing"

func TestParseOption(t *testing.T) {
	tests := []struct {
		in   string
		want Option
		ok   bool
	}{
		{"A", OptionA, true},
		{"b", OptionB, true},
		{" C ", OptionC, true},
		{"d", OptionD, true},
		{"", "", false},
		{" ", "", false},
		{"X", "", false},
		{"AB", "", false},
		{"1", "", false},
		{"option a", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseOption(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseOption(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
