package cbt

import "strings"

// Option is one of the four answer labels. Raw client input is normalized
// once by ParseOption before it reaches the engine; everything past that
// boundary compares Options directly.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// ParseOption normalizes a raw selection. ok is false for anything outside
// A-D (empty, malformed, stray whitespace-only input), which callers treat
// as unanswered rather than an error.
func ParseOption(raw string) (Option, bool) {
	switch Option(strings.ToUpper(strings.TrimSpace(raw))) {
	case OptionA:
		return OptionA, true
	case OptionB:
		return OptionB, true
	case OptionC:
		return OptionC, true
	case OptionD:
		return OptionD, true
	}
	return "", false
}
