// Package report computes dataset diagnostics and renders them for humans.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/textnorm"
)

// Options are the readiness thresholds of the verdict.
type Options struct {
	MinRows           int     `yaml:"minRows"`
	MaxImbalance      float64 `yaml:"maxImbalance"`
	MaxDuplicateRatio float64 `yaml:"maxDuplicateRatio"`
	MaxShortRatio     float64 `yaml:"maxShortRatio"`
}

// DefaultOptions mirror what the fine-tuning job tolerates.
func DefaultOptions() Options {
	return Options{MinRows: 5000, MaxImbalance: 1.5, MaxDuplicateRatio: 0.01, MaxShortRatio: 0.1}
}

// ClassCount is one line of the label distribution.
type ClassCount struct {
	Label   domain.Label
	Count   int
	Percent float64
}

// Stats summarizes a length column.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64
}

// Buckets count rows by character length.
type Buckets struct {
	Under20   int
	From20    int
	From50    int
	From100Up int
}

// Cross is one rating/label cell.
type Cross struct {
	Rating int
	Label  string
	Count  int
}

// Report is the full diagnostic of a table.
type Report struct {
	Total          int
	Synthetic      int
	Distribution   []ClassCount
	ImbalanceRatio float64
	Chars          Stats
	Words          Stats
	Lengths        Buckets
	Duplicates     int
	Empty          int
	ResidualEmoji  int
	ResidualURL    int
	Crosstab       []Cross
	Issues         []string
}

// Ready reports whether no issue was found.
func (r Report) Ready() bool {
	return len(r.Issues) == 0
}

// Analyze inspects rows. Labels are listed in order unless empty, in which
// case the distribution is ordered by count.
func Analyze(rows []domain.Review, order []domain.Label, opts Options) (Report, error) {
	rep := Report{Total: len(rows)}
	if len(rows) == 0 {
		rep.Issues = append(rep.Issues, "dataset is empty")
		return rep, nil
	}

	counts := make(map[domain.Label]int)
	seen := make(map[string]struct{}, len(rows))
	chars := make([]int, 0, len(rows))
	words := make([]int, 0, len(rows))
	cells := make(map[Cross]int)
	for _, r := range rows {
		text := r.Text()
		counts[r.Label]++
		if r.Synthetic {
			rep.Synthetic++
		}
		n := utf8.RuneCountInString(text)
		chars = append(chars, n)
		words = append(words, len(strings.Fields(text)))
		switch {
		case n < 20:
			rep.Lengths.Under20++
		case n < 50:
			rep.Lengths.From20++
		case n < 100:
			rep.Lengths.From50++
		default:
			rep.Lengths.From100Up++
		}
		if _, dup := seen[text]; dup {
			rep.Duplicates++
		}
		seen[text] = struct{}{}
		if strings.TrimSpace(text) == "" {
			rep.Empty++
		}
		if textnorm.ContainsEmoji(text) {
			rep.ResidualEmoji++
		}
		if textnorm.ContainsURL(text) {
			rep.ResidualURL++
		}
		cells[Cross{Rating: r.Rating, Label: string(r.Label)}]++
	}

	rep.Distribution = distribution(counts, order, len(rows))
	rep.ImbalanceRatio = imbalance(rep.Distribution)
	rep.Chars = stats(chars)
	rep.Words = stats(words)

	cross, err := crosstab(cells)
	if err != nil {
		return Report{}, err
	}
	rep.Crosstab = cross
	rep.Issues = verdict(rep, opts)
	return rep, nil
}

func distribution(counts map[domain.Label]int, order []domain.Label, total int) []ClassCount {
	labels := make([]domain.Label, 0, len(counts))
	listed := make(map[domain.Label]bool)
	for _, l := range order {
		listed[l] = true
		labels = append(labels, l)
	}
	var extra []domain.Label
	for l := range counts {
		if !listed[l] {
			extra = append(extra, l)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if counts[extra[i]] != counts[extra[j]] {
			return counts[extra[i]] > counts[extra[j]]
		}
		return extra[i] < extra[j]
	})
	labels = append(labels, extra...)

	out := make([]ClassCount, 0, len(labels))
	for _, l := range labels {
		c := counts[l]
		out = append(out, ClassCount{Label: l, Count: c, Percent: 100 * float64(c) / float64(total)})
	}
	return out
}

func imbalance(dist []ClassCount) float64 {
	lo, hi := 0, 0
	for _, c := range dist {
		if c.Count == 0 {
			continue
		}
		if lo == 0 || c.Count < lo {
			lo = c.Count
		}
		if c.Count > hi {
			hi = c.Count
		}
	}
	if lo == 0 {
		return 0
	}
	return float64(hi) / float64(lo)
}

func stats(values []int) Stats {
	s := series.Ints(values)
	return Stats{Min: s.Min(), Max: s.Max(), Mean: s.Mean()}
}

// crosstab orders the rating/label cells through a dataframe.
func crosstab(cells map[Cross]int) ([]Cross, error) {
	list := make([]Cross, 0, len(cells))
	for k, n := range cells {
		list = append(list, Cross{Rating: k.Rating, Label: k.Label, Count: n})
	}
	df := dataframe.LoadStructs(list)
	if df.Err != nil {
		return nil, fmt.Errorf("build crosstab: %w", df.Err)
	}
	df = df.Arrange(dataframe.Sort("Rating"), dataframe.Sort("Label"))
	if df.Err != nil {
		return nil, fmt.Errorf("sort crosstab: %w", df.Err)
	}
	ratings, err := df.Col("Rating").Int()
	if err != nil {
		return nil, fmt.Errorf("read crosstab: %w", err)
	}
	counts, err := df.Col("Count").Int()
	if err != nil {
		return nil, fmt.Errorf("read crosstab: %w", err)
	}
	labels := df.Col("Label").Records()
	out := make([]Cross, df.Nrow())
	for i := range out {
		out[i] = Cross{Rating: ratings[i], Label: labels[i], Count: counts[i]}
	}
	return out, nil
}

func verdict(r Report, opts Options) []string {
	var issues []string
	total := float64(r.Total)
	if opts.MaxImbalance > 0 && r.ImbalanceRatio > opts.MaxImbalance {
		issues = append(issues, fmt.Sprintf("classes are imbalanced (ratio %.2fx)", r.ImbalanceRatio))
	}
	if dup := float64(r.Duplicates) / total; dup > opts.MaxDuplicateRatio {
		issues = append(issues, fmt.Sprintf("duplicate content above %.0f%% (%.1f%%)", opts.MaxDuplicateRatio*100, dup*100))
	}
	if short := float64(r.Lengths.Under20) / total; short > opts.MaxShortRatio {
		issues = append(issues, fmt.Sprintf("short reviews (<20 chars) above %.0f%% (%.1f%%)", opts.MaxShortRatio*100, short*100))
	}
	if r.ResidualEmoji > 0 {
		issues = append(issues, fmt.Sprintf("emoji left in %d rows", r.ResidualEmoji))
	}
	if r.ResidualURL > 0 {
		issues = append(issues, fmt.Sprintf("URLs left in %d rows", r.ResidualURL))
	}
	if r.Total < opts.MinRows {
		issues = append(issues, fmt.Sprintf("fewer than %d rows", opts.MinRows))
	}
	return issues
}
