package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/ports"
	"ReviewPrep/internal/source"
)

// CollectOptions configures one collection run.
type CollectOptions struct {
	AppID     string
	Lang      string
	Country   string
	Sort      string
	BatchSize int
	// Ratings switches to per-rating strata, each aiming at TargetPerRating.
	Ratings         []int
	TargetPerRating int
	// MaxReviews bounds the single unfiltered stream used when Ratings is empty.
	MaxReviews          int
	Delay               time.Duration
	MaxConsecutiveEmpty int
	Retry               RetryPolicy
}

// RetryPolicy bounds the exponential backoff around a single page fetch.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRetries      uint64
}

// StratumResult summarizes one stratum.
type StratumResult struct {
	Rating    int
	Target    int
	Collected int
	Shortfall int
}

// CollectResult is what Collect gathered.
type CollectResult struct {
	Reviews []domain.Review
	Strata  []StratumResult
	Skipped int
}

// Collector pulls review pages from a source until each stratum is full,
// the source runs dry, or too many consecutive pages come back empty.
type Collector struct {
	source     source.Source
	repository ports.ReviewRepository
	opts       CollectOptions
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

// NewCollector wires a source and an optional repository of known reviews.
func NewCollector(src source.Source, repo ports.ReviewRepository, opts CollectOptions, logger *slog.Logger) *Collector {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.MaxConsecutiveEmpty <= 0 {
		opts.MaxConsecutiveEmpty = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{source: src, repository: repo, opts: opts, logger: logger, sleep: sleepContext}
}

// Collect runs every stratum in order. Shortfalls are logged, not returned
// as errors; only cancellation, permanent source errors and failed
// known-ID lookups abort. Persisting the result is up to the caller.
func (c *Collector) Collect(ctx context.Context) (CollectResult, error) {
	var res CollectResult
	seen := make(map[string]struct{})

	strata := c.opts.Ratings
	target := c.opts.TargetPerRating
	if len(strata) == 0 {
		strata = []int{0}
		target = c.opts.MaxReviews
	}

	for _, rating := range strata {
		rows, skipped, err := c.collectStratum(ctx, rating, target, seen)
		if err != nil {
			return res, err
		}
		res.Skipped += skipped
		sr := StratumResult{Rating: rating, Target: target, Collected: len(rows)}
		if target > 0 && len(rows) < target {
			sr.Shortfall = target - len(rows)
			c.logger.Warn("stratum shortfall", "rating", rating, "target", target, "collected", len(rows))
		}
		res.Strata = append(res.Strata, sr)
		res.Reviews = append(res.Reviews, rows...)
		c.logger.Info("stratum done", "rating", rating, "collected", len(rows), "skipped", skipped)
	}

	return res, nil
}

func (c *Collector) collectStratum(ctx context.Context, rating, target int, seen map[string]struct{}) ([]domain.Review, int, error) {
	var (
		rows      []domain.Review
		skipped   int
		token     string
		emptyRuns int
		first     = true
	)

	for target <= 0 || len(rows) < target {
		if !first {
			if err := c.sleep(ctx, c.opts.Delay); err != nil {
				return rows, skipped, err
			}
		}
		first = false

		req := source.Request{
			AppID:   c.opts.AppID,
			Lang:    c.opts.Lang,
			Country: c.opts.Country,
			Sort:    c.opts.Sort,
			Count:   c.opts.BatchSize,
			Rating:  rating,
			Token:   token,
		}
		page, err := c.fetchWithRetry(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return rows, skipped, ctx.Err()
			}
			if isPermanent(err) {
				return rows, skipped, fmt.Errorf("collect rating %d: %w", rating, err)
			}
			emptyRuns++
			c.logger.Warn("page failed", "rating", rating, "error", err, "consecutive", emptyRuns, "breaker", c.breakerState())
			if emptyRuns >= c.opts.MaxConsecutiveEmpty {
				break
			}
			continue
		}

		fresh, dupes, err := c.admit(ctx, page.Reviews, rating, seen)
		if err != nil {
			return rows, skipped, err
		}
		skipped += dupes
		if target > 0 && len(rows)+len(fresh) > target {
			fresh = fresh[:target-len(rows)]
		}
		rows = append(rows, fresh...)
		c.logger.Debug("page fetched", "rating", rating, "received", len(page.Reviews), "kept", len(fresh), "total", len(rows))

		if len(fresh) == 0 {
			emptyRuns++
			if emptyRuns >= c.opts.MaxConsecutiveEmpty {
				c.logger.Warn("too many empty pages", "rating", rating, "consecutive", emptyRuns)
				break
			}
		} else {
			emptyRuns = 0
		}

		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	return rows, skipped, nil
}

// breakerState reports the circuit state of sources that guard their
// transport with a breaker.
func (c *Collector) breakerState() string {
	if s, ok := c.source.(interface{ State() string }); ok {
		return s.State()
	}
	return "none"
}

// admit drops reviews already seen in this run or already stored, and
// reviews outside the requested rating. Reviews without an ID get a random
// one so they can still be deduplicated and stored.
func (c *Collector) admit(ctx context.Context, page []domain.Review, rating int, seen map[string]struct{}) ([]domain.Review, int, error) {
	page = slices.Clone(page)
	ids := make([]string, 0, len(page))
	for i := range page {
		if page[i].ID == "" {
			page[i].ID = uuid.NewString()
			continue
		}
		ids = append(ids, page[i].ID)
	}

	known := map[string]bool{}
	if c.repository != nil && len(ids) > 0 {
		var err error
		if known, err = c.repository.KnownIDs(ctx, ids); err != nil {
			return nil, 0, fmt.Errorf("load known reviews: %w", err)
		}
	}

	fresh := make([]domain.Review, 0, len(page))
	skipped := 0
	for _, r := range page {
		if r.Rating < 1 || r.Rating > 5 || (rating > 0 && r.Rating != rating) {
			skipped++
			continue
		}
		if _, dup := seen[r.ID]; dup || known[r.ID] {
			skipped++
			continue
		}
		seen[r.ID] = struct{}{}
		fresh = append(fresh, r)
	}
	return fresh, skipped, nil
}

// temporary is implemented by source errors that know whether a retry helps.
type temporary interface {
	Temporary() bool
}

func isPermanent(err error) bool {
	var t temporary
	return errors.As(err, &t) && !t.Temporary()
}

func (c *Collector) fetchWithRetry(ctx context.Context, req source.Request) (source.Page, error) {
	var page source.Page
	operation := func() error {
		p, err := c.source.Fetch(ctx, req)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying page", "rating", req.Rating, "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(operation, c.backoff(ctx), notify); err != nil {
		return source.Page{}, err
	}
	return page, nil
}

func (c *Collector) backoff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	r := c.opts.Retry
	if r.InitialInterval > 0 {
		eb.InitialInterval = r.InitialInterval
	}
	if r.MaxInterval > 0 {
		eb.MaxInterval = r.MaxInterval
	}
	if r.MaxElapsedTime > 0 {
		eb.MaxElapsedTime = r.MaxElapsedTime
	}
	var b backoff.BackOff = eb
	if r.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, r.MaxRetries)
	}
	return backoff.WithContext(b, ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
