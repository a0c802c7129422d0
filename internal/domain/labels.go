package domain

import (
	"errors"
	"fmt"
)

// Label is a sentiment class name.
type Label string

// 3-class labels.
const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// 5-class labels.
const (
	LabelVeryNegative5 Label = "sangat_negatif"
	LabelNegative5     Label = "negatif"
	LabelNeutral5      Label = "netral"
	LabelPositive5     Label = "positif"
	LabelVeryPositive5 Label = "sangat_positif"
)

// ErrRatingOutOfRange is returned for ratings outside 1..5.
var ErrRatingOutOfRange = errors.New("rating out of range")

// Scheme maps a star rating onto a fixed, ordered set of labels.
type Scheme struct {
	name   string
	labels []Label
	byStar [5]Label
}

// ThreeClass groups ratings into negative (1-2), neutral (3) and positive (4-5).
var ThreeClass = Scheme{
	name:   "3class",
	labels: []Label{LabelNegative, LabelNeutral, LabelPositive},
	byStar: [5]Label{LabelNegative, LabelNegative, LabelNeutral, LabelPositive, LabelPositive},
}

// FiveClass gives every star rating its own ordinal label.
var FiveClass = Scheme{
	name:   "5class",
	labels: []Label{LabelVeryNegative5, LabelNegative5, LabelNeutral5, LabelPositive5, LabelVeryPositive5},
	byStar: [5]Label{LabelVeryNegative5, LabelNegative5, LabelNeutral5, LabelPositive5, LabelVeryPositive5},
}

// SchemeByClasses resolves 3 or 5 to a scheme.
func SchemeByClasses(classes int) (Scheme, error) {
	switch classes {
	case 3:
		return ThreeClass, nil
	case 5:
		return FiveClass, nil
	default:
		return Scheme{}, fmt.Errorf("unsupported label scheme with %d classes", classes)
	}
}

// Name identifies the scheme in logs.
func (s Scheme) Name() string {
	return s.name
}

// Labels returns the scheme's labels in ordinal order.
func (s Scheme) Labels() []Label {
	out := make([]Label, len(s.labels))
	copy(out, s.labels)
	return out
}

// FromRating derives the label for a star rating.
func (s Scheme) FromRating(rating int) (Label, error) {
	if rating < 1 || rating > 5 {
		return "", fmt.Errorf("%w: %d", ErrRatingOutOfRange, rating)
	}
	return s.byStar[rating-1], nil
}

// Contains reports whether label belongs to the scheme.
func (s Scheme) Contains(label Label) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsNeutralRating reports whether the rating maps to the middle class.
func (s Scheme) IsNeutralRating(rating int) bool {
	return rating == 3
}

// GroupByLabel splits rows into per-label buckets preserving row order.
func GroupByLabel(rows []Review) map[Label][]Review {
	groups := make(map[Label][]Review)
	for _, r := range rows {
		groups[r.Label] = append(groups[r.Label], r)
	}
	return groups
}
