package ports

import (
	"context"

	"ReviewPrep/internal/domain"
)

// ReviewRepository remembers collected reviews across runs and keeps the
// drop audit.
type ReviewRepository interface {
	KnownIDs(ctx context.Context, ids []string) (map[string]bool, error)
	SaveReviews(ctx context.Context, reviews []domain.Review) error
	RecordDrops(ctx context.Context, runID string, drops []domain.Drop) error
}

// Notifier streams stage summaries to Telegram or other channels.
type Notifier interface {
	PublishReport(ctx context.Context, text string) error
}

// StageRecorder receives per-stage row counts.
type StageRecorder interface {
	ObserveStage(stage string, in, out int, drops []domain.Drop)
	Flush(ctx context.Context) error
}
