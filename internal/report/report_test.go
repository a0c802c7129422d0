package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPrep/internal/domain"
)

func init() {
	color.NoColor = true
}

func balancedRows(perClass int) []domain.Review {
	var rows []domain.Review
	for _, l := range domain.ThreeClass.Labels() {
		for i := 0; i < perClass; i++ {
			rating := map[domain.Label]int{domain.LabelNegative: 1, domain.LabelNeutral: 3, domain.LabelPositive: 5}[l]
			rows = append(rows, domain.Review{
				ID:        fmt.Sprintf("%s-%d", l, i),
				TextClean: fmt.Sprintf("ulasan %s yang cukup panjang nomor %d", l, i),
				Rating:    rating,
				Label:     l,
			})
		}
	}
	return rows
}

func TestAnalyzeBalancedDataset(t *testing.T) {
	rows := balancedRows(10)
	rep, err := Analyze(rows, domain.ThreeClass.Labels(), Options{MinRows: 30, MaxImbalance: 1.5, MaxDuplicateRatio: 0.01, MaxShortRatio: 0.1})
	require.NoError(t, err)

	assert.Equal(t, 30, rep.Total)
	require.Len(t, rep.Distribution, 3)
	assert.Equal(t, domain.LabelNegative, rep.Distribution[0].Label)
	assert.InDelta(t, 33.3, rep.Distribution[0].Percent, 0.1)
	assert.InDelta(t, 1.0, rep.ImbalanceRatio, 1e-9)
	assert.Zero(t, rep.Duplicates)
	assert.True(t, rep.Ready(), rep.Issues)

	require.Len(t, rep.Crosstab, 3)
	assert.Equal(t, Cross{Rating: 1, Label: "negative", Count: 10}, rep.Crosstab[0])
	assert.Equal(t, Cross{Rating: 5, Label: "positive", Count: 10}, rep.Crosstab[2])
}

func TestAnalyzeFlagsIssues(t *testing.T) {
	rows := []domain.Review{
		{TextClean: "jelek", Rating: 1, Label: domain.LabelNegative},
		{TextClean: "jelek", Rating: 1, Label: domain.LabelNegative},
		{TextClean: "bagus 😍 http://x.co", Rating: 5, Label: domain.LabelPositive},
		{TextClean: "pelayanan driver sangat ramah dan cepat sekali terima kasih", Rating: 5, Label: domain.LabelPositive},
		{TextClean: "aplikasi bagus sekali", Rating: 5, Label: domain.LabelPositive},
		{TextClean: "aplikasi mantap sekali", Rating: 5, Label: domain.LabelPositive},
	}
	rep, err := Analyze(rows, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.LabelPositive, rep.Distribution[0].Label, "ordered by count")
	assert.InDelta(t, 2.0, rep.ImbalanceRatio, 1e-9)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.ResidualEmoji)
	assert.Equal(t, 1, rep.ResidualURL)
	assert.Equal(t, 3, rep.Lengths.Under20)
	assert.Equal(t, float64(1), rep.Words.Min)
	assert.Len(t, rep.Issues, 6)
	assert.False(t, rep.Ready())
}

func TestAnalyzeEmpty(t *testing.T) {
	rep, err := Analyze(nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, rep.Ready())
}

func TestRender(t *testing.T) {
	rep, err := Analyze(balancedRows(4), domain.ThreeClass.Labels(), Options{MinRows: 1, MaxImbalance: 1.5, MaxDuplicateRatio: 0.01, MaxShortRatio: 0.5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "final", rep))
	out := buf.String()
	assert.Contains(t, out, "== final ==")
	assert.Contains(t, out, "neutral")
	assert.Contains(t, out, "imbalance ratio: 1.00x")
	assert.Contains(t, out, "READY")
}

func TestSummary(t *testing.T) {
	rep, err := Analyze(balancedRows(2), domain.ThreeClass.Labels(), DefaultOptions())
	require.NoError(t, err)
	s := Summary("final", rep)
	assert.Contains(t, s, "final: 6 rows, negative 2, neutral 2, positive 2")
	assert.Contains(t, s, "fewer than 5000 rows")
}
