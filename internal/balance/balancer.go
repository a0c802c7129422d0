// Package balance equalizes per-class row counts by seeded undersampling.
package balance

import (
	"math/rand/v2"

	"ReviewPrep/internal/domain"
)

// Shortfall records a class that could not reach the target.
type Shortfall struct {
	Label     domain.Label
	Available int
	Target    int
}

// Result is the balanced table plus what the balancer had to give up on.
type Result struct {
	Rows       []domain.Review
	Target     int
	Counts     map[domain.Label]int
	Shortfalls []Shortfall
}

// Balancer undersamples every class to a common size.
//
// Without Target the common size is the smallest class count; with Target it
// is that fixed value. Cap, when set, bounds either.
type Balancer struct {
	Seed   uint64
	Cap    int
	Target int
}

// TargetFor computes the per-class size for the given counts.
func (b Balancer) TargetFor(scheme domain.Scheme, groups map[domain.Label][]domain.Review) int {
	target := b.Target
	if target <= 0 {
		target = -1
		for _, label := range scheme.Labels() {
			n := len(groups[label])
			if target < 0 || n < target {
				target = n
			}
		}
		if target < 0 {
			target = 0
		}
	}
	if b.Cap > 0 && b.Cap < target {
		target = b.Cap
	}
	return target
}

// Balance samples each class of scheme down to the target and shuffles the
// combined rows. Rows with labels outside the scheme are ignored. The same
// input and seed always produce the same output.
func (b Balancer) Balance(scheme domain.Scheme, rows []domain.Review) Result {
	groups := domain.GroupByLabel(rows)
	target := b.TargetFor(scheme, groups)
	rng := rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))

	res := Result{Target: target, Counts: make(map[domain.Label]int)}
	for _, label := range scheme.Labels() {
		group := groups[label]
		if len(group) < target {
			res.Shortfalls = append(res.Shortfalls, Shortfall{Label: label, Available: len(group), Target: target})
			res.Rows = append(res.Rows, group...)
			res.Counts[label] = len(group)
			continue
		}
		res.Rows = append(res.Rows, sample(rng, group, target)...)
		res.Counts[label] = target
	}
	rng.Shuffle(len(res.Rows), func(i, j int) {
		res.Rows[i], res.Rows[j] = res.Rows[j], res.Rows[i]
	})
	return res
}

// sample draws n rows without replacement, keeping the input untouched.
func sample(rng *rand.Rand, rows []domain.Review, n int) []domain.Review {
	idx := rng.Perm(len(rows))[:n]
	out := make([]domain.Review, n)
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
