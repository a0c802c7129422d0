package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/source"
)

type fakeError struct {
	temporary bool
}

func (e fakeError) Error() string   { return fmt.Sprintf("fake error (temporary=%v)", e.temporary) }
func (e fakeError) Temporary() bool { return e.temporary }

type pageKey struct {
	rating int
	token  string
}

type fakeSource struct {
	mu       sync.Mutex
	pages    map[pageKey]source.Page
	failures map[pageKey][]error
	calls    []source.Request
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, req source.Request) (source.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	key := pageKey{rating: req.Rating, token: req.Token}
	if errs := f.failures[key]; len(errs) > 0 {
		f.failures[key] = errs[1:]
		return source.Page{}, errs[0]
	}
	return f.pages[key], nil
}

type fakeRepository struct {
	known map[string]bool
	saved   []domain.Review
	saveErr error
	drops   []domain.Drop
	runID   string
}

func (r *fakeRepository) KnownIDs(_ context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if r.known[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *fakeRepository) SaveReviews(_ context.Context, reviews []domain.Review) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, reviews...)
	return nil
}

func (r *fakeRepository) RecordDrops(_ context.Context, runID string, drops []domain.Drop) error {
	r.runID = runID
	r.drops = append(r.drops, drops...)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reviews(rating int, ids ...string) []domain.Review {
	out := make([]domain.Review, len(ids))
	for i, id := range ids {
		out[i] = domain.Review{ID: id, TextRaw: "ulasan " + id, Rating: rating}
	}
	return out
}

func newTestCollector(src source.Source, repo *fakeRepository, opts CollectOptions) (*Collector, *[]time.Duration) {
	opts.Retry = RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxRetries: 2}
	c := NewCollector(src, nil, opts, quietLogger())
	if repo != nil {
		c = NewCollector(src, repo, opts, quietLogger())
	}
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestCollectStratifiedFollowsTokens(t *testing.T) {
	src := &fakeSource{pages: map[pageKey]source.Page{
		{1, ""}:   {Reviews: reviews(1, "a", "b"), NextToken: "t1"},
		{1, "t1"}: {Reviews: reviews(1, "c", "d"), NextToken: "t2"},
		{5, ""}:   {Reviews: reviews(5, "x")},
	}}
	c, sleeps := newTestCollector(src, nil, CollectOptions{
		Ratings: []int{1, 5}, TargetPerRating: 3, Delay: 250 * time.Millisecond,
	})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Reviews, 4)
	assert.Equal(t, []StratumResult{
		{Rating: 1, Target: 3, Collected: 3},
		{Rating: 5, Target: 3, Collected: 1, Shortfall: 2},
	}, res.Strata)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, *sleeps)
	for _, call := range src.calls {
		assert.Equal(t, 200, call.Count)
	}
}

func TestCollectUnstratifiedStopsAtMaxReviews(t *testing.T) {
	src := &fakeSource{pages: map[pageKey]source.Page{
		{0, ""}:  {Reviews: append(reviews(4, "a", "b"), reviews(2, "c")...), NextToken: "n"},
		{0, "n"}: {Reviews: reviews(3, "d", "e"), NextToken: "m"},
	}}
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 4})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Reviews, 4)
	assert.Len(t, src.calls, 2)
}

func TestCollectSkipsDuplicatesAndKnownIDs(t *testing.T) {
	src := &fakeSource{pages: map[pageKey]source.Page{
		{0, ""}:  {Reviews: reviews(5, "a", "b", "known"), NextToken: "n"},
		{0, "n"}: {Reviews: append(reviews(5, "a", "c"), domain.Review{ID: "bad", Rating: 9})},
	}}
	repo := &fakeRepository{known: map[string]bool{"known": true}}
	c, _ := newTestCollector(src, repo, CollectOptions{MaxReviews: 100})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Reviews))
	for _, r := range res.Reviews {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, 3, res.Skipped)
	assert.Empty(t, repo.saved, "collector leaves persistence to the stage")
}

func TestCollectRetriesTemporaryErrors(t *testing.T) {
	key := pageKey{0, ""}
	src := &fakeSource{
		pages:    map[pageKey]source.Page{key: {Reviews: reviews(4, "a")}},
		failures: map[pageKey][]error{key: {fakeError{temporary: true}}},
	}
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 10})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Reviews, 1)
	assert.Len(t, src.calls, 2)
}

func TestCollectAbortsOnPermanentError(t *testing.T) {
	key := pageKey{0, ""}
	src := &fakeSource{failures: map[pageKey][]error{key: {fakeError{temporary: false}}}}
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 10})

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	var fe fakeError
	assert.True(t, errors.As(err, &fe))
	assert.Len(t, src.calls, 1)
}

func TestCollectStopsAfterConsecutiveEmptyPages(t *testing.T) {
	src := &fakeSource{pages: map[pageKey]source.Page{
		{0, ""}:   {Reviews: reviews(4, "a"), NextToken: "t1"},
		{0, "t1"}: {Reviews: reviews(4, "a"), NextToken: "t2"},
		{0, "t2"}: {Reviews: nil, NextToken: "t3"},
		{0, "t3"}: {Reviews: reviews(4, "z"), NextToken: ""},
	}}
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 10, MaxConsecutiveEmpty: 2})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Reviews, 1)
	assert.Len(t, src.calls, 3)
	require.Len(t, res.Strata, 1)
	assert.Equal(t, 9, res.Strata[0].Shortfall)
}

func TestCollectHonoursCancellation(t *testing.T) {
	src := &fakeSource{pages: map[pageKey]source.Page{
		{0, ""}: {Reviews: reviews(4, "a"), NextToken: "t1"},
	}}
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 10})
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := c.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectAssignsIDsToAnonymousReviews(t *testing.T) {
	anon := []domain.Review{
		{TextRaw: "tanpa id satu", Rating: 2},
		{TextRaw: "tanpa id dua", Rating: 2},
	}
	src := &fakeSource{pages: map[pageKey]source.Page{
		{0, ""}: {Reviews: append(anon, reviews(2, "a")...)},
	}}
	repo := &fakeRepository{}
	c, _ := newTestCollector(src, repo, CollectOptions{MaxReviews: 10})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Reviews, 3)
	assert.NotEmpty(t, res.Reviews[0].ID)
	assert.NotEmpty(t, res.Reviews[1].ID)
	assert.NotEqual(t, res.Reviews[0].ID, res.Reviews[1].ID)
	assert.Equal(t, "a", res.Reviews[2].ID)
	assert.Empty(t, src.pages[pageKey{0, ""}].Reviews[0].ID, "source page is not mutated")
}

type breakerSource struct {
	*fakeSource
	state string
}

func (b breakerSource) State() string { return b.state }

func TestCollectLogsBreakerStateOnPageFailure(t *testing.T) {
	key := pageKey{0, ""}
	src := breakerSource{
		fakeSource: &fakeSource{failures: map[pageKey][]error{key: {
			fakeError{temporary: true}, fakeError{temporary: true}, fakeError{temporary: true},
		}}},
		state: "open",
	}
	var logs strings.Builder
	c, _ := newTestCollector(src, nil, CollectOptions{MaxReviews: 10, MaxConsecutiveEmpty: 1})
	c.logger = slog.New(slog.NewTextHandler(&logs, nil))

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Reviews)
	assert.Contains(t, logs.String(), "breaker=open")
}
