package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/ports"
)

const (
	reviewsTable = "reviews"
	dropsTable   = "review_drops"
	batchSize    = 500
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists collected reviews and the drop audit into Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

var _ ports.ReviewRepository = (*PostgresRepository)(nil)

// Open connects with the lib/pq driver.
func Open(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresRepository(db), nil
}

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close releases the pool.
func (r *PostgresRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// KnownIDs returns a map with review IDs that already exist in storage.
func (r *PostgresRepository) KnownIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(ids) == 0 {
		return result, nil
	}

	query, args, err := knownIDsQuery(ids)
	if err != nil {
		return nil, err
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("query known reviews: %w", err)
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

// SaveReviews upserts reviews in batches. Reviews without an ID are skipped and
// a repeated ID keeps its last occurrence, since one INSERT cannot touch the
// same conflict key twice.
func (r *PostgresRepository) SaveReviews(ctx context.Context, reviews []domain.Review) error {
	if r.db == nil {
		return nil
	}
	reviews = uniqueReviews(reviews)
	for start := 0; start < len(reviews); start += batchSize {
		end := min(start+batchSize, len(reviews))
		query, args, err := upsertReviewsQuery(reviews[start:end])
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert reviews: %w", err)
		}
	}
	return nil
}

// RecordDrops appends drop audit rows for a run.
func (r *PostgresRepository) RecordDrops(ctx context.Context, runID string, drops []domain.Drop) error {
	if r.db == nil {
		return nil
	}
	for start := 0; start < len(drops); start += batchSize {
		end := min(start+batchSize, len(drops))
		query, args, err := insertDropsQuery(runID, drops[start:end])
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert drops: %w", err)
		}
	}
	return nil
}

func knownIDsQuery(ids []string) (string, []interface{}, error) {
	query, args, err := psql.Select("review_id").
		From(reviewsTable).
		Where(sq.Expr("review_id = ANY(?)", pq.StringArray(ids))).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build known ids query: %w", err)
	}
	return query, args, nil
}

func uniqueReviews(reviews []domain.Review) []domain.Review {
	pos := make(map[string]int, len(reviews))
	out := make([]domain.Review, 0, len(reviews))
	for _, rv := range reviews {
		if rv.ID == "" {
			continue
		}
		if i, ok := pos[rv.ID]; ok {
			out[i] = rv
			continue
		}
		pos[rv.ID] = len(out)
		out = append(out, rv)
	}
	return out
}

// thumbsUpValue stores unknown or non-numeric counts as NULL.
func thumbsUpValue(raw string) interface{} {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return n
}

func upsertReviewsQuery(reviews []domain.Review) (string, []interface{}, error) {
	b := psql.Insert(reviewsTable).Columns(
		"review_id", "user_name", "content", "rating", "thumbs_up",
		"app_version", "reviewed_at", "reply_content", "replied_at",
	)
	for _, rv := range reviews {
		b = b.Values(rv.ID, rv.UserName, rv.TextRaw, rv.Rating, thumbsUpValue(rv.ThumbsUp),
			rv.AppVersion, rv.ReviewedAt, rv.ReplyContent, rv.RepliedAt)
	}
	query, args, err := b.Suffix(`ON CONFLICT (review_id) DO UPDATE
              SET content = EXCLUDED.content,
                  rating = EXCLUDED.rating,
                  thumbs_up = EXCLUDED.thumbs_up,
                  reply_content = EXCLUDED.reply_content,
                  replied_at = EXCLUDED.replied_at,
                  updated_at = NOW()`).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert reviews query: %w", err)
	}
	return query, args, nil
}

func insertDropsQuery(runID string, drops []domain.Drop) (string, []interface{}, error) {
	b := psql.Insert(dropsTable).Columns("run_id", "stage", "reason", "review_id", "content")
	for _, d := range drops {
		b = b.Values(runID, d.Stage, d.Reason, d.ReviewID, d.Text)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build drops query: %w", err)
	}
	return query, args, nil
}
