package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	headingColor = color.New(color.FgHiCyan, color.Bold)
	okColor      = color.New(color.FgHiGreen, color.Bold)
	issueColor   = color.New(color.FgHiYellow, color.Bold)
)

// Render writes r as headed tables followed by the verdict.
func Render(w io.Writer, title string, r Report) error {
	headingColor.Fprintf(w, "== %s ==\n", title)
	fmt.Fprintf(w, "rows: %d (synthetic %d)\n\n", r.Total, r.Synthetic)

	headingColor.Fprintln(w, "Label distribution")
	dist := [][]string{{"label", "count", "percent"}}
	for _, c := range r.Distribution {
		dist = append(dist, []string{string(c.Label), strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", c.Percent)})
	}
	if err := writeTable(w, dist); err != nil {
		return err
	}
	fmt.Fprintf(w, "imbalance ratio: %.2fx (max/min)\n\n", r.ImbalanceRatio)

	headingColor.Fprintln(w, "Length")
	lengths := [][]string{
		{"", "min", "max", "mean"},
		{"chars", fmtFloat(r.Chars.Min), fmtFloat(r.Chars.Max), fmt.Sprintf("%.1f", r.Chars.Mean)},
		{"words", fmtFloat(r.Words.Min), fmtFloat(r.Words.Max), fmt.Sprintf("%.1f", r.Words.Mean)},
	}
	if err := writeTable(w, lengths); err != nil {
		return err
	}
	buckets := [][]string{
		{"bucket", "rows", "percent"},
		bucketRow("< 20 chars", r.Lengths.Under20, r.Total),
		bucketRow("20-50 chars", r.Lengths.From20, r.Total),
		bucketRow("50-100 chars", r.Lengths.From50, r.Total),
		bucketRow(">= 100 chars", r.Lengths.From100Up, r.Total),
	}
	if err := writeTable(w, buckets); err != nil {
		return err
	}

	headingColor.Fprintln(w, "Content checks")
	checks := [][]string{
		{"check", "rows"},
		{"duplicates", strconv.Itoa(r.Duplicates)},
		{"empty", strconv.Itoa(r.Empty)},
		{"emoji left", strconv.Itoa(r.ResidualEmoji)},
		{"urls left", strconv.Itoa(r.ResidualURL)},
	}
	if err := writeTable(w, checks); err != nil {
		return err
	}

	headingColor.Fprintln(w, "Rating vs label")
	cross := [][]string{{"rating", "label", "count"}}
	for _, c := range r.Crosstab {
		cross = append(cross, []string{strconv.Itoa(c.Rating), c.Label, strconv.Itoa(c.Count)})
	}
	if err := writeTable(w, cross); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if r.Ready() {
		okColor.Fprintln(w, "READY: dataset passes every check")
		return nil
	}
	issueColor.Fprintln(w, "ISSUES:")
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
	return nil
}

// Summary is a short plain-text verdict suitable for chat notifications.
func Summary(title string, r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows", title, r.Total)
	for _, c := range r.Distribution {
		fmt.Fprintf(&b, ", %s %d", c.Label, c.Count)
	}
	fmt.Fprintf(&b, " (imbalance %.2fx)\n", r.ImbalanceRatio)
	if r.Ready() {
		b.WriteString("ready for training")
		return b.String()
	}
	b.WriteString("issues: ")
	b.WriteString(strings.Join(r.Issues, "; "))
	return b.String()
}

func writeTable(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append report row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render report table: %w", err)
	}
	return nil
}

func bucketRow(name string, n, total int) []string {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(n) / float64(total)
	}
	return []string{name, strconv.Itoa(n), fmt.Sprintf("%.1f%%", pct)}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
