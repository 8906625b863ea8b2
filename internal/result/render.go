// Package result formats engine output for display. Percentage and grade
// banding are presentation decisions; the lifecycle engine's contract stops
// at raw score and total.
package result

import "math"

// Percentage returns score/total as a percentage rounded to two decimal
// places. A zero total yields 0 rather than NaN.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*10000) / 100
}

// Grade maps a percentage to the conventional report-card band. The pass
// mark is 50.
func Grade(percent float64) string {
	switch {
	case percent >= 75:
		return "A"
	case percent >= 65:
		return "B"
	case percent >= 50:
		return "C"
	case percent >= 40:
		return "D"
	default:
		return "F"
	}
}

// Passed reports whether a percentage meets the pass mark.
func Passed(percent float64) bool { return percent >= 50 }

// Sheet is a rendered score line for result pages and exports.
type Sheet struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	Passed     bool    `json:"passed"`
}

func Render(score, total int) Sheet {
	p := Percentage(score, total)
	return Sheet{
		Score:      score,
		Total:      total,
		Percentage: p,
		Grade:      Grade(p),
		Passed:     Passed(p),
	}
}
