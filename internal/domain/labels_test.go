package domain

import (
	"errors"
	"testing"
)

func TestSchemesFromRating(t *testing.T) {
	cases := []struct {
		scheme Scheme
		want   []Label
	}{
		{ThreeClass, []Label{LabelNegative, LabelNegative, LabelNeutral, LabelPositive, LabelPositive}},
		{FiveClass, []Label{LabelVeryNegative5, LabelNegative5, LabelNeutral5, LabelPositive5, LabelVeryPositive5}},
	}
	for _, tc := range cases {
		for rating := 1; rating <= 5; rating++ {
			got, err := tc.scheme.FromRating(rating)
			if err != nil {
				t.Fatalf("%s: rating %d: %v", tc.scheme.Name(), rating, err)
			}
			if got != tc.want[rating-1] {
				t.Fatalf("%s: rating %d = %q, want %q", tc.scheme.Name(), rating, got, tc.want[rating-1])
			}
			if !tc.scheme.Contains(got) {
				t.Fatalf("%s does not contain its own label %q", tc.scheme.Name(), got)
			}
		}
	}
}

func TestFromRatingRejectsOutOfRange(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		if _, err := ThreeClass.FromRating(rating); !errors.Is(err, ErrRatingOutOfRange) {
			t.Fatalf("rating %d: expected ErrRatingOutOfRange, got %v", rating, err)
		}
	}
}

func TestSchemeByClasses(t *testing.T) {
	if s, err := SchemeByClasses(5); err != nil || s.Name() != "5class" {
		t.Fatalf("SchemeByClasses(5) = %v, %v", s.Name(), err)
	}
	if _, err := SchemeByClasses(4); err == nil {
		t.Fatal("expected error for 4 classes")
	}
	if ThreeClass.Contains(LabelPositive5) {
		t.Fatal("3-class scheme must not contain 5-class labels")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	rows := []Review{{ID: "a", Label: LabelPositive}}
	cp := Clone(rows)
	cp[0].Label = LabelNegative
	if rows[0].Label != LabelPositive {
		t.Fatal("Clone shares backing array with input")
	}
	if Clone(nil) != nil {
		t.Fatal("Clone(nil) should stay nil")
	}
}

func TestCountReasonsAndGroup(t *testing.T) {
	drops := []Drop{{Reason: "duplicate"}, {Reason: "empty"}, {Reason: "duplicate"}}
	counts := CountReasons(drops)
	if counts["duplicate"] != 2 || counts["empty"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	groups := GroupByLabel([]Review{{ID: "1", Label: LabelNeutral}, {ID: "2", Label: LabelNeutral}, {ID: "3", Label: LabelPositive}})
	if len(groups[LabelNeutral]) != 2 || groups[LabelNeutral][1].ID != "2" {
		t.Fatalf("unexpected grouping %v", groups)
	}
}
