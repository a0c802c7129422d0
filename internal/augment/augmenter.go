// Package augment synthesizes extra training text for under-represented
// classes with synonym substitution, word swap, deletion and insertion.
package augment

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/quality"
)

const (
	defaultNumAug      = 4
	defaultDeletionP   = 0.1
	defaultMaxAttempts = 20
)

// Options tune an Augmenter. Zero values take the defaults.
type Options struct {
	Seed uint64
	// NumAug is the number of synonym variants per round; swap, deletion
	// and insertion each get NumAug/2.
	NumAug    int
	DeletionP float64
	// MaxAttempts bounds rounds without a new variant, per needed row.
	MaxAttempts int
}

// Augmenter is not safe for concurrent use; it owns a seeded RNG.
type Augmenter struct {
	synonyms    Synonyms
	pool        []string
	filter      quality.Filter
	rng         *rand.Rand
	numAug      int
	deletionP   float64
	maxAttempts int
}

// New builds an augmenter over the given synonym table and validity filter.
func New(synonyms Synonyms, filter quality.Filter, opts Options) *Augmenter {
	if opts.NumAug <= 0 {
		opts.NumAug = defaultNumAug
	}
	if opts.DeletionP <= 0 {
		opts.DeletionP = defaultDeletionP
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Augmenter{
		synonyms:    synonyms,
		pool:        synonyms.Pool(),
		filter:      filter,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x2545f4914f6cdd1d)),
		numAug:      opts.NumAug,
		deletionP:   opts.DeletionP,
		maxAttempts: opts.MaxAttempts,
	}
}

// Variants runs one synthesis round. The result starts with text itself and
// holds each distinct valid variant once, in the order produced.
func (a *Augmenter) Variants(text string) []string {
	words := strings.Fields(text)
	out := []string{text}
	seen := map[string]struct{}{text: {}}
	add := func(tokens []string) {
		v := strings.Join(tokens, " ")
		if _, dup := seen[v]; dup || !a.filter.Valid(v) {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for range a.numAug {
		add(a.SynonymReplacement(words, 1+a.rng.IntN(2)))
	}
	for range a.numAug / 2 {
		add(a.RandomSwap(words, 1))
	}
	for range a.numAug / 2 {
		add(a.RandomDeletion(words, a.deletionP))
	}
	for range a.numAug / 2 {
		add(a.RandomInsertion(words, 1))
	}
	return out
}

// Augment returns up to n distinct valid variants of text, none equal to it.
func (a *Augmenter) Augment(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	seen := map[string]struct{}{text: {}}
	var out []string
	idle := 0
	for len(out) < n && idle < a.maxAttempts {
		fresh := false
		for _, v := range a.Variants(text)[1:] {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
			fresh = true
			if len(out) == n {
				break
			}
		}
		if fresh {
			idle = 0
		} else {
			idle++
		}
	}
	return out
}

// FillClass synthesizes up to needed rows from randomly chosen source rows.
// Synthetic rows inherit label, rating and metadata, get a fresh review id
// and never repeat a text already present among rows or earlier synthetics.
// The second return value is the shortfall.
func (a *Augmenter) FillClass(rows []domain.Review, needed int) ([]domain.Review, int) {
	if needed <= 0 {
		return nil, 0
	}
	if len(rows) == 0 {
		return nil, needed
	}
	seen := make(map[string]struct{}, len(rows)+needed)
	for _, r := range rows {
		seen[r.Text()] = struct{}{}
	}
	ids := rngReader{a.rng}
	var out []domain.Review
	budget := a.maxAttempts * needed
	for attempt := 0; len(out) < needed && attempt < budget; attempt++ {
		src := rows[a.rng.IntN(len(rows))]
		for _, v := range a.Variants(src.Text())[1:] {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, synthesize(src, v, ids))
			if len(out) == needed {
				break
			}
		}
	}
	return out, needed - len(out)
}

func synthesize(src domain.Review, text string, ids rngReader) domain.Review {
	r := src
	r.ID = uuid.Must(uuid.NewRandomFromReader(ids)).String()
	r.TextRaw = text
	r.TextClean = text
	r.WordCount = len(strings.Fields(text))
	r.Synthetic = true
	r.ReplyContent = ""
	r.RepliedAt = ""
	return r
}

// rngReader feeds uuid generation from the seeded RNG so synthetic ids are
// reproducible too.
type rngReader struct{ rng *rand.Rand }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
