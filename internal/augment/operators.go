package augment

// The operators work on whitespace tokens and never modify their input slice.

// SynonymReplacement replaces up to n distinct tokens that have synonyms.
func (a *Augmenter) SynonymReplacement(words []string, n int) []string {
	out := append([]string(nil), words...)
	var candidates []int
	for i, w := range words {
		if _, ok := a.synonyms.Lookup(w); ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return out
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	for _, c := range a.rng.Perm(len(candidates))[:n] {
		idx := candidates[c]
		variants, _ := a.synonyms.Lookup(words[idx])
		out[idx] = variants[a.rng.IntN(len(variants))]
	}
	return out
}

// RandomSwap exchanges two distinct positions n times.
func (a *Augmenter) RandomSwap(words []string, n int) []string {
	out := append([]string(nil), words...)
	if len(out) < 2 {
		return out
	}
	for range n {
		i := a.rng.IntN(len(out))
		j := a.rng.IntN(len(out) - 1)
		if j >= i {
			j++
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RandomDeletion drops each token with probability p. Texts of three tokens
// or fewer are returned unchanged; a fully deleted text keeps one token.
func (a *Augmenter) RandomDeletion(words []string, p float64) []string {
	if len(words) <= 3 {
		return append([]string(nil), words...)
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if a.rng.Float64() > p {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return []string{words[a.rng.IntN(len(words))]}
	}
	return out
}

// RandomInsertion inserts n words drawn from the synonym pool.
func (a *Augmenter) RandomInsertion(words []string, n int) []string {
	out := append([]string(nil), words...)
	if len(a.pool) == 0 {
		return out
	}
	for range n {
		word := a.pool[a.rng.IntN(len(a.pool))]
		pos := a.rng.IntN(len(out) + 1)
		out = append(out, "")
		copy(out[pos+1:], out[pos:])
		out[pos] = word
	}
	return out
}
