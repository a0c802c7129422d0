package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"ReviewPrep/internal/augment"
	"ReviewPrep/internal/balance"
	"ReviewPrep/internal/config"
	"ReviewPrep/internal/consistency"
	"ReviewPrep/internal/dictionary"
	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/infrastructure/metrics"
	"ReviewPrep/internal/infrastructure/parser"
	"ReviewPrep/internal/infrastructure/playstore"
	"ReviewPrep/internal/infrastructure/storage"
	"ReviewPrep/internal/infrastructure/telegram"
	"ReviewPrep/internal/logging"
	"ReviewPrep/internal/ports"
	"ReviewPrep/internal/quality"
	"ReviewPrep/internal/source"
	"ReviewPrep/internal/textnorm"
	"ReviewPrep/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
	closers  []func() error
}

// New builds the stage components from cfg. Storage is only opened when a
// DSN is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	scheme, err := domain.SchemeByClasses(cfg.Label.Classes)
	if err != nil {
		return nil, err
	}
	dicts, err := dictionary.Load(cfg.Dictionaries...)
	if err != nil {
		return nil, err
	}
	normalizer, err := buildNormalizer(cfg.Normalizer, dicts.Slang)
	if err != nil {
		return nil, err
	}
	fillNormalizer, err := textnorm.NewPreset(cfg.Augment.FillPreset, dicts.Slang)
	if err != nil {
		return nil, fmt.Errorf("augment fill: %w", err)
	}

	var repo ports.ReviewRepository
	if cfg.Database.DSN != "" {
		pg, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		repo = pg
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIBase)
	}

	collector, err := buildCollector(cfg.Collector, repo, baseLogger.With("component", "collector"))
	if err != nil {
		return nil, err
	}

	filter := quality.Filter{MinWords: cfg.Filter.MinWords, MaxWords: cfg.Filter.MaxWords, MinChars: cfg.Filter.MinChars}
	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Stages:         cfg.Stages,
		Scheme:         scheme,
		Normalizer:     normalizer,
		FillNormalizer: fillNormalizer,
		Filter:         filter,
		Checker:        consistency.New(dicts.Keywords, cfg.Consistency.Thresholds, dicts.NeutralCues),
		VerifyNeutral:  cfg.Label.VerifyNeutral,
		Balancer:       balance.Balancer{Seed: cfg.Balance.Seed, Cap: cfg.Balance.Cap, Target: cfg.Balance.Target},
		Augment: usecase.AugmentSettings{
			Seed:           cfg.Augment.Seed,
			TargetPerClass: cfg.Augment.TargetPerClass,
			Options: augment.Options{
				Seed:        cfg.Augment.Seed,
				NumAug:      cfg.Augment.NumAug,
				DeletionP:   cfg.Augment.DeletionP,
				MaxAttempts: cfg.Augment.MaxAttempts,
			},
			Synonyms: dicts.Synonyms,
		},
		Report: usecase.ReportSettings{
			Title:   cfg.Report.Title,
			Options: cfg.Report.Options,
			Notify:  cfg.Report.Notify,
		},
		Collector:  collector,
		Repository: repo,
		Notifier:   notifier,
		Recorder:   metrics.NewRecorder(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job),
		Output:     os.Stdout,
		RunID:      uuid.NewString(),
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

// Run executes the given stages, or the configured pipeline when none are given.
func (a *Application) Run(ctx context.Context, stages ...string) error {
	if len(stages) == 0 {
		stages = a.cfg.Pipeline
	}
	a.logger.Info("pipeline starting", "stages", stages)
	return a.pipeline.Run(ctx, stages)
}

// Close releases storage connections.
func (a *Application) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func buildNormalizer(cfg config.NormalizerConfig, slang textnorm.Dictionary) (*textnorm.Normalizer, error) {
	if len(cfg.Steps) == 0 {
		return textnorm.NewPreset(cfg.Preset, slang)
	}
	names := make([]textnorm.StepName, len(cfg.Steps))
	for i, s := range cfg.Steps {
		names[i] = textnorm.StepName(s)
	}
	return textnorm.New(names, slang)
}

// buildCollector registers every source strategy and resolves the configured one.
func buildCollector(cfg config.CollectorConfig, repo ports.ReviewRepository, logger *slog.Logger) (*usecase.Collector, error) {
	registry := source.NewRegistry()
	registry.Register(playstore.NewClient(playstore.Config{
		BaseURL:          cfg.PlayStore.BaseURL,
		Timeout:          cfg.PlayStore.Timeout,
		FailureThreshold: cfg.PlayStore.FailureThreshold,
		OpenTimeout:      cfg.PlayStore.OpenTimeout,
	}, nil))
	registry.Register(parser.NewHTMLSource(nil, cfg.HTML.BaseURL, cfg.HTML.Selectors))

	src, err := registry.Resolve(cfg.Source)
	if err != nil {
		return nil, err
	}
	return usecase.NewCollector(src, repo, usecase.CollectOptions{
		AppID:               cfg.AppID,
		Lang:                cfg.Lang,
		Country:             cfg.Country,
		Sort:                cfg.Sort,
		BatchSize:           cfg.BatchSize,
		Ratings:             cfg.Ratings,
		TargetPerRating:     cfg.TargetPerRating,
		MaxReviews:          cfg.MaxReviews,
		Delay:               cfg.Delay,
		MaxConsecutiveEmpty: cfg.MaxConsecutiveEmpty,
		Retry: usecase.RetryPolicy{
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
			MaxRetries:      cfg.Retry.MaxRetries,
		},
	}, logger), nil
}
