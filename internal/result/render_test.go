package result

import "testing"

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total int
		want         float64
	}{
		{3, 4, 75},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 10, 0},
		{10, 10, 100},
		{0, 0, 0},
		{5, 0, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d,%d) = %v; want %v", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		score, total int
		grade        string
		passed       bool
	}{
		{4, 4, "A", true},
		{3, 4, "A", true},
		{7, 10, "B", true},
		{5, 10, "C", true},
		{4, 10, "D", false},
		{1, 10, "F", false},
	}
	for _, tc := range tests {
		s := Render(tc.score, tc.total)
		if s.Grade != tc.grade || s.Passed != tc.passed {
			t.Errorf("Render(%d,%d) = grade %s passed %v; want %s %v",
				tc.score, tc.total, s.Grade, s.Passed, tc.grade, tc.passed)
		}
	}
}
