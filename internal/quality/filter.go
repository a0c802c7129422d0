// Package quality rejects degenerate review texts and removes duplicates.
package quality

import (
	"strings"
	"unicode/utf8"

	"ReviewPrep/internal/domain"
)

// Rejection reasons reported by Filter.Check.
const (
	ReasonEmpty         = "empty"
	ReasonTooFewWords   = "too_few_words"
	ReasonTooManyWords  = "too_many_words"
	ReasonTooFewChars   = "too_few_chars"
	ReasonNumericOnly   = "numeric_only"
	ReasonRepeatedChars = "repeated_chars"
	ReasonLowDiversity  = "low_diversity"
	ReasonDuplicate     = "duplicate"
)

const (
	maxCharRun   = 5
	minDistinct  = 3
	defaultMax   = 500
	defaultChars = 10
)

// Filter holds the validity thresholds for cleaned text.
type Filter struct {
	MinWords int
	MaxWords int
	MinChars int
}

// NewFilter returns a filter with the usual upper bounds.
func NewFilter(minWords int) Filter {
	return Filter{MinWords: minWords, MaxWords: defaultMax, MinChars: defaultChars}
}

// Valid is Check without the reason.
func (f Filter) Valid(text string) bool {
	ok, _ := f.Check(text)
	return ok
}

// Check reports whether text is usable for training and, if not, the first
// failing rule.
func (f Filter) Check(text string) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, ReasonEmpty
	}
	words := len(strings.Fields(text))
	if words < f.MinWords {
		return false, ReasonTooFewWords
	}
	if f.MaxWords > 0 && words > f.MaxWords {
		return false, ReasonTooManyWords
	}
	if utf8.RuneCountInString(text) < f.MinChars {
		return false, ReasonTooFewChars
	}
	compact := strings.ReplaceAll(text, " ", "")
	if isNumeric(compact) {
		return false, ReasonNumericOnly
	}
	if longestRun(text) >= maxCharRun {
		return false, ReasonRepeatedChars
	}
	if distinctRunes(compact) < minDistinct {
		return false, ReasonLowDiversity
	}
	return true, ""
}

// Apply splits rows into kept and dropped by the text they carry.
func (f Filter) Apply(stage string, rows []domain.Review) ([]domain.Review, []domain.Drop) {
	kept := make([]domain.Review, 0, len(rows))
	var drops []domain.Drop
	for _, r := range rows {
		if ok, reason := f.Check(r.Text()); !ok {
			drops = append(drops, domain.Drop{Stage: stage, Reason: reason, ReviewID: r.ID, Text: r.Text()})
			continue
		}
		kept = append(kept, r)
	}
	return kept, drops
}

// ApplyClean is Apply on the cleaned text only, so a row whose cleaning left
// nothing is dropped as empty instead of falling back to the raw text.
func (f Filter) ApplyClean(stage string, rows []domain.Review) ([]domain.Review, []domain.Drop) {
	kept := make([]domain.Review, 0, len(rows))
	var drops []domain.Drop
	for _, r := range rows {
		if ok, reason := f.Check(r.TextClean); !ok {
			drops = append(drops, domain.Drop{Stage: stage, Reason: reason, ReviewID: r.ID, Text: r.TextRaw})
			continue
		}
		kept = append(kept, r)
	}
	return kept, drops
}

// Deduplicate keeps the first row for every distinct text and drops the rest.
func Deduplicate(stage string, rows []domain.Review) ([]domain.Review, []domain.Drop) {
	seen := make(map[string]struct{}, len(rows))
	kept := make([]domain.Review, 0, len(rows))
	var drops []domain.Drop
	for _, r := range rows {
		key := r.Text()
		if _, dup := seen[key]; dup {
			drops = append(drops, domain.Drop{Stage: stage, Reason: ReasonDuplicate, ReviewID: r.ID, Text: key})
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept, drops
}

func isNumeric(s string) bool {
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

func longestRun(s string) int {
	best, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > best {
			best = run
		}
	}
	return best
}

func distinctRunes(s string) int {
	set := make(map[rune]struct{})
	for _, r := range s {
		set[r] = struct{}{}
	}
	return len(set)
}
