package balance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPrep/internal/domain"
)

func makeRows(counts map[domain.Label]int) []domain.Review {
	var rows []domain.Review
	for _, label := range domain.ThreeClass.Labels() {
		for i := 0; i < counts[label]; i++ {
			rows = append(rows, domain.Review{
				ID:        fmt.Sprintf("%s-%d", label, i),
				TextClean: fmt.Sprintf("ulasan %s nomor %d", label, i),
				Label:     label,
			})
		}
	}
	return rows
}

func TestBalanceToSmallestClass(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 1200,
		domain.LabelNeutral:  300,
		domain.LabelPositive: 900,
	})
	res := Balancer{Seed: 42}.Balance(domain.ThreeClass, rows)

	assert.Equal(t, 300, res.Target)
	assert.Len(t, res.Rows, 900)
	assert.Empty(t, res.Shortfalls)
	got := make(map[domain.Label]int)
	for _, r := range res.Rows {
		got[r.Label]++
	}
	assert.Equal(t, map[domain.Label]int{
		domain.LabelNegative: 300,
		domain.LabelNeutral:  300,
		domain.LabelPositive: 300,
	}, got)
	assert.Equal(t, got, res.Counts)
}

func TestBalanceIsDeterministic(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 50,
		domain.LabelNeutral:  20,
		domain.LabelPositive: 35,
	})
	a := Balancer{Seed: 7}.Balance(domain.ThreeClass, rows)
	b := Balancer{Seed: 7}.Balance(domain.ThreeClass, rows)
	require.Equal(t, a.Rows, b.Rows)

	c := Balancer{Seed: 8}.Balance(domain.ThreeClass, rows)
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestBalanceShufflesClassBlocks(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 40,
		domain.LabelNeutral:  40,
		domain.LabelPositive: 40,
	})
	res := Balancer{Seed: 1}.Balance(domain.ThreeClass, rows)
	firstBlock := res.Rows[:40]
	labels := make(map[domain.Label]bool)
	for _, r := range firstBlock {
		labels[r.Label] = true
	}
	assert.Greater(t, len(labels), 1)
}

func TestBalanceCap(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 120,
		domain.LabelNeutral:  80,
		domain.LabelPositive: 100,
	})
	res := Balancer{Seed: 42, Cap: 50}.Balance(domain.ThreeClass, rows)
	assert.Equal(t, 50, res.Target)
	assert.Len(t, res.Rows, 150)
}

func TestBalanceFixedTargetReportsShortfall(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 120,
		domain.LabelNeutral:  30,
		domain.LabelPositive: 100,
	})
	res := Balancer{Seed: 42, Target: 100}.Balance(domain.ThreeClass, rows)
	assert.Equal(t, 100, res.Target)
	require.Len(t, res.Shortfalls, 1)
	assert.Equal(t, Shortfall{Label: domain.LabelNeutral, Available: 30, Target: 100}, res.Shortfalls[0])
	assert.Len(t, res.Rows, 230)
}

func TestBalanceDoesNotMutateInput(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 10,
		domain.LabelNeutral:  5,
		domain.LabelPositive: 10,
	})
	before := domain.Clone(rows)
	Balancer{Seed: 3}.Balance(domain.ThreeClass, rows)
	assert.Equal(t, before, rows)
}

func TestBalanceMissingClass(t *testing.T) {
	rows := makeRows(map[domain.Label]int{
		domain.LabelNegative: 10,
		domain.LabelPositive: 10,
	})
	res := Balancer{Seed: 3}.Balance(domain.ThreeClass, rows)
	assert.Equal(t, 0, res.Target)
	assert.Empty(t, res.Rows)
}
