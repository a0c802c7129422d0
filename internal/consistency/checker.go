// Package consistency cross-checks a star rating against keyword polarity in
// the review text. It is a coarse noise filter, not a classifier.
package consistency

import (
	"strings"

	"ReviewPrep/internal/domain"
)

// Reason explains the outcome of Check.
type Reason string

const (
	Consistent                  Reason = "consistent"
	NegativeTextHighRating      Reason = "negative_text_high_rating"
	PositiveTextLowRating       Reason = "positive_text_low_rating"
	NegativeSentimentHighRating Reason = "negative_sentiment_high_rating"
	PositiveSentimentLowRating  Reason = "positive_sentiment_low_rating"
)

// ReasonAmbiguousNeutral marks rating-3 reviews with one-sided polarity.
const ReasonAmbiguousNeutral = "ambiguous_neutral"

// Thresholds are empirically tuned and kept configurable.
type Thresholds struct {
	VeryCount  int `yaml:"veryCount"`
	Aggregate  int `yaml:"aggregate"`
	HighRating int `yaml:"highRating"`
	LowRating  int `yaml:"lowRating"`
}

// DefaultThresholds returns the tuned values used on the Gojek corpus.
func DefaultThresholds() Thresholds {
	return Thresholds{VeryCount: 2, Aggregate: 3, HighRating: 4, LowRating: 2}
}

// Scores holds per-tier keyword hit counts.
type Scores struct {
	VeryNegative int
	Negative     int
	Positive     int
	VeryPositive int
}

// Overall weighs the "very" tiers double.
func (s Scores) Overall() int {
	return 2*s.VeryPositive + s.Positive - (2*s.VeryNegative + s.Negative)
}

// Checker scores text against keyword tiers.
type Checker struct {
	keywords   Keywords
	thresholds Thresholds
	cues       NeutralCues
}

// New builds a checker. Zero-valued thresholds fall back to the defaults.
func New(keywords Keywords, thresholds Thresholds, cues NeutralCues) *Checker {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	return &Checker{keywords: keywords, thresholds: thresholds, cues: cues}
}

// NewDefault uses the built-in keyword lists.
func NewDefault() *Checker {
	return New(DefaultKeywords(), DefaultThresholds(), DefaultNeutralCues())
}

// Score counts how many keywords of each tier occur in text.
func (c *Checker) Score(text string) Scores {
	lower := strings.ToLower(text)
	return Scores{
		VeryNegative: countHits(lower, c.keywords.VeryNegative),
		Negative:     countHits(lower, c.keywords.Negative),
		Positive:     countHits(lower, c.keywords.Positive),
		VeryPositive: countHits(lower, c.keywords.VeryPositive),
	}
}

// Check reports whether rating agrees with the polarity of text.
func (c *Checker) Check(text string, rating int) (bool, Reason) {
	s := c.Score(text)
	t := c.thresholds
	high := rating >= t.HighRating
	low := rating <= t.LowRating

	switch {
	case s.VeryNegative >= t.VeryCount && high:
		return false, NegativeTextHighRating
	case s.VeryPositive >= t.VeryCount && low:
		return false, PositiveTextLowRating
	}
	overall := s.Overall()
	switch {
	case overall <= -t.Aggregate && high:
		return false, NegativeSentimentHighRating
	case overall >= t.Aggregate && low:
		return false, PositiveSentimentLowRating
	}
	return true, Consistent
}

// IsNeutral reports whether text reads as neutral: no strong polarity cue at
// all, or cues of both polarities.
func (c *Checker) IsNeutral(text string) bool {
	lower := strings.ToLower(text)
	pos := countHits(lower, c.cues.Positive)
	neg := countHits(lower, c.cues.Negative)
	return (pos == 0 && neg == 0) || (pos > 0 && neg > 0)
}

// Apply drops inconsistent rows and re-derives the label of survivors from
// their rating.
func (c *Checker) Apply(stage string, scheme domain.Scheme, rows []domain.Review) ([]domain.Review, []domain.Drop, error) {
	kept := make([]domain.Review, 0, len(rows))
	var drops []domain.Drop
	for _, r := range rows {
		ok, reason := c.Check(r.Text(), r.Rating)
		if !ok {
			drops = append(drops, domain.Drop{Stage: stage, Reason: string(reason), ReviewID: r.ID, Text: r.Text()})
			continue
		}
		label, err := scheme.FromRating(r.Rating)
		if err != nil {
			return nil, nil, err
		}
		r.Label = label
		kept = append(kept, r)
	}
	return kept, drops, nil
}

// VerifyNeutral drops rating-3 rows whose text carries one-sided polarity.
func (c *Checker) VerifyNeutral(stage string, scheme domain.Scheme, rows []domain.Review) ([]domain.Review, []domain.Drop) {
	kept := make([]domain.Review, 0, len(rows))
	var drops []domain.Drop
	for _, r := range rows {
		if scheme.IsNeutralRating(r.Rating) && !c.IsNeutral(r.Text()) {
			drops = append(drops, domain.Drop{Stage: stage, Reason: ReasonAmbiguousNeutral, ReviewID: r.ID, Text: r.Text()})
			continue
		}
		kept = append(kept, r)
	}
	return kept, drops
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			n++
		}
	}
	return n
}
