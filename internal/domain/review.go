package domain

// Review is a single app-store review flowing through the preparation stages.
// Derived fields (TextClean, Label, WordCount) are added by stages; everything
// else is passthrough metadata from the collector.
type Review struct {
	ID           string
	UserName     string
	TextRaw      string
	TextClean    string
	Rating       int
	Label        Label
	ThumbsUp     string
	AppVersion   string
	ReviewedAt   string
	ReplyContent string
	RepliedAt    string
	WordCount    int
	Synthetic    bool
}

// Text returns the cleaned text when present and falls back to the raw text.
func (r Review) Text() string {
	if r.TextClean != "" {
		return r.TextClean
	}
	return r.TextRaw
}

// Drop records why a stage discarded a review.
type Drop struct {
	Stage    string
	Reason   string
	ReviewID string
	Text     string
}

// CountReasons groups drops by reason.
func CountReasons(drops []Drop) map[string]int {
	counts := make(map[string]int)
	for _, d := range drops {
		counts[d.Reason]++
	}
	return counts
}

// Clone returns a copy of rows so stages never alias their input table.
func Clone(rows []Review) []Review {
	if rows == nil {
		return nil
	}
	out := make([]Review, len(rows))
	copy(out, rows)
	return out
}
