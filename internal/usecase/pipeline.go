package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"ReviewPrep/internal/augment"
	"ReviewPrep/internal/balance"
	"ReviewPrep/internal/config"
	"ReviewPrep/internal/consistency"
	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/ports"
	"ReviewPrep/internal/quality"
	"ReviewPrep/internal/report"
	"ReviewPrep/internal/table"
	"ReviewPrep/internal/textnorm"
)

// AugmentSettings drives the augment stage.
type AugmentSettings struct {
	Seed           uint64
	TargetPerClass int
	Options        augment.Options
	Synonyms       augment.Synonyms
}

// ReportSettings drives the report stage.
type ReportSettings struct {
	Title   string
	Options report.Options
	Notify  bool
}

// PipelineDeps wires all stage components and driven adapters.
type PipelineDeps struct {
	Stages         config.StagesConfig
	Scheme         domain.Scheme
	Normalizer     *textnorm.Normalizer
	FillNormalizer *textnorm.Normalizer
	Filter         quality.Filter
	Checker        *consistency.Checker
	VerifyNeutral  bool
	Balancer       balance.Balancer
	Augment        AugmentSettings
	Report         ReportSettings
	Collector      *Collector
	Repository     ports.ReviewRepository
	Notifier       ports.Notifier
	Recorder       ports.StageRecorder
	Output         io.Writer
	RunID          string
	Logger         *slog.Logger
}

// Pipeline runs the preparation stages. Stages only talk through files.
type Pipeline struct {
	deps   PipelineDeps
	logger *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Output == nil {
		deps.Output = os.Stdout
	}
	return &Pipeline{deps: deps, logger: deps.Logger}
}

// Run executes stages in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, stages []string) error {
	for _, name := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.RunStage(ctx, name); err != nil {
			return err
		}
	}
	if p.deps.Recorder != nil {
		if err := p.deps.Recorder.Flush(ctx); err != nil {
			p.logger.Warn("metrics push failed", "error", err)
		}
	}
	return nil
}

// RunStage executes one named stage.
func (p *Pipeline) RunStage(ctx context.Context, name string) error {
	var err error
	switch name {
	case config.StageCollect:
		err = p.Collect(ctx)
	case config.StageLabel:
		err = p.Label(ctx)
	case config.StageClean:
		err = p.Clean(ctx)
	case config.StageCheck:
		err = p.Check(ctx)
	case config.StageBalance:
		err = p.Balance(ctx)
	case config.StageAugment:
		err = p.Augment(ctx)
	case config.StageReport:
		err = p.Report(ctx)
	default:
		return fmt.Errorf("unknown stage %q", name)
	}
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

// Collect pulls reviews from the configured source into the raw file. The
// file is written first; a failed save to the repository only warns.
func (p *Pipeline) Collect(ctx context.Context) error {
	if p.deps.Collector == nil {
		return fmt.Errorf("collector is not configured")
	}
	res, err := p.deps.Collector.Collect(ctx)
	if err != nil {
		return err
	}
	for _, s := range res.Strata {
		if s.Shortfall > 0 {
			p.logger.Warn("collection shortfall", "rating", s.Rating, "target", s.Target, "collected", s.Collected)
		}
	}
	out := p.deps.Stages.Collect.Output
	if err := p.write(p.deps.Stages.Collect, res.Reviews, table.RawColumns); err != nil {
		return err
	}
	if p.deps.Repository != nil && len(res.Reviews) > 0 {
		if err := p.deps.Repository.SaveReviews(ctx, res.Reviews); err != nil {
			p.logger.Warn("save reviews failed", "error", err, "count", len(res.Reviews))
		}
	}
	return p.finish(ctx, config.StageCollect, len(res.Reviews)+res.Skipped, res.Reviews, nil, out)
}

// Label derives the sentiment class of every row from its rating.
func (p *Pipeline) Label(ctx context.Context) error {
	files := p.deps.Stages.Label
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent, table.ColRating)
	if err != nil {
		return err
	}
	rows := domain.Clone(tbl.Rows)
	for i := range rows {
		label, err := p.deps.Scheme.FromRating(rows[i].Rating)
		if err != nil {
			return fmt.Errorf("row %d (%s): %w", i+1, rows[i].ID, err)
		}
		rows[i].Label = label
	}
	var drops []domain.Drop
	if p.deps.VerifyNeutral {
		rows, drops = p.deps.Checker.VerifyNeutral(config.StageLabel, p.deps.Scheme, rows)
	}
	if err := p.write(files, rows, table.AllColumns); err != nil {
		return err
	}
	return p.finish(ctx, config.StageLabel, len(tbl.Rows), rows, drops, files.Output)
}

// Clean normalizes text, then filters invalid rows and duplicates.
func (p *Pipeline) Clean(ctx context.Context) error {
	files := p.deps.Stages.Clean
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent, table.ColRating)
	if err != nil {
		return err
	}
	rows, err := p.relabel(domain.Clone(tbl.Rows))
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].TextClean = p.deps.Normalizer.Normalize(rows[i].TextRaw)
		rows[i].WordCount = wordCount(rows[i].TextClean)
	}
	rows, drops := p.deps.Filter.ApplyClean(config.StageClean, rows)
	rows, dupes := quality.Deduplicate(config.StageClean, rows)
	drops = append(drops, dupes...)

	if err := p.write(files, rows, table.AllColumns); err != nil {
		return err
	}
	return p.finish(ctx, config.StageClean, len(tbl.Rows), rows, drops, files.Output)
}

// Check drops rows whose text contradicts their rating and relabels the rest.
func (p *Pipeline) Check(ctx context.Context) error {
	files := p.deps.Stages.Check
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent, table.ColRating)
	if err != nil {
		return err
	}
	rows, drops, err := p.deps.Checker.Apply(config.StageCheck, p.deps.Scheme, domain.Clone(tbl.Rows))
	if err != nil {
		return err
	}
	if err := p.write(files, rows, table.AllColumns); err != nil {
		return err
	}
	return p.finish(ctx, config.StageCheck, len(tbl.Rows), rows, drops, files.Output)
}

// Balance undersamples every class to a common size.
func (p *Pipeline) Balance(ctx context.Context) error {
	files := p.deps.Stages.Balance
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent, table.ColRating)
	if err != nil {
		return err
	}
	rows, err := p.relabel(domain.Clone(tbl.Rows))
	if err != nil {
		return err
	}
	res := p.deps.Balancer.Balance(p.deps.Scheme, rows)
	for _, s := range res.Shortfalls {
		p.logger.Warn("class below target", "label", s.Label, "available", s.Available, "target", s.Target)
	}
	p.logger.Info("balanced", "target", res.Target, "classes", len(res.Counts))

	if err := p.write(files, res.Rows, table.AllColumns); err != nil {
		return err
	}
	return p.finish(ctx, config.StageBalance, len(tbl.Rows), res.Rows, nil, files.Output)
}

// Augment merges inputs, undersamples classes above the target and
// synthesizes rows for classes below it.
func (p *Pipeline) Augment(ctx context.Context) error {
	files := p.deps.Stages.Augment
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent, table.ColRating)
	if err != nil {
		return err
	}
	if !tbl.Has(table.ColContentClean) {
		p.logger.Info("inputs carry no content_clean column, normalizing raw text", "stage", config.StageAugment)
	}
	rows := domain.Clone(tbl.Rows)
	for i := range rows {
		if rows[i].TextClean == "" {
			rows[i].TextClean = p.deps.FillNormalizer.Normalize(rows[i].TextRaw)
		}
		rows[i].WordCount = wordCount(rows[i].TextClean)
	}
	if rows, err = p.relabel(rows); err != nil {
		return err
	}
	rows, drops := p.deps.Filter.ApplyClean(config.StageAugment, rows)
	rows, dupes := quality.Deduplicate(config.StageAugment, rows)
	drops = append(drops, dupes...)

	groups := domain.GroupByLabel(rows)
	largest := 0
	for _, label := range p.deps.Scheme.Labels() {
		largest = max(largest, len(groups[label]))
	}
	target := largest
	if s := p.deps.Augment; s.TargetPerClass > 0 && s.TargetPerClass < target {
		target = s.TargetPerClass
	}

	sampled := balance.Balancer{Seed: p.deps.Augment.Seed, Target: target}.Balance(p.deps.Scheme, rows)
	out := sampled.Rows
	aug := augment.New(p.deps.Augment.Synonyms, p.deps.Filter, p.deps.Augment.Options)
	for _, s := range sampled.Shortfalls {
		if s.Available == 0 {
			p.logger.Warn("class has no rows to augment", "label", s.Label)
			continue
		}
		synth, short := aug.FillClass(groups[s.Label], s.Target-s.Available)
		out = append(out, synth...)
		p.logger.Info("augmented class", "label", s.Label, "real", s.Available, "synthetic", len(synth))
		if short > 0 {
			p.logger.Warn("augmentation shortfall", "label", s.Label, "missing", short)
		}
	}
	shuffle(out, p.deps.Augment.Seed)

	if err := p.write(files, out, table.AllColumns); err != nil {
		return err
	}
	return p.finish(ctx, config.StageAugment, len(tbl.Rows), out, drops, files.Output)
}

// Report prints diagnostics for the final table and optionally notifies.
func (p *Pipeline) Report(ctx context.Context) error {
	files := p.deps.Stages.Report
	tbl, err := table.ReadFiles(files.Inputs, table.ColContent)
	if err != nil {
		return err
	}
	rep, err := report.Analyze(tbl.Rows, p.deps.Scheme.Labels(), p.deps.Report.Options)
	if err != nil {
		return err
	}
	if err := report.Render(p.deps.Output, p.deps.Report.Title, rep); err != nil {
		return err
	}
	if !rep.Ready() {
		p.logger.Warn("dataset has issues", "issues", len(rep.Issues))
	}
	if p.deps.Report.Notify && p.deps.Notifier != nil {
		if err := p.deps.Notifier.PublishReport(ctx, report.Summary(p.deps.Report.Title, rep)); err != nil {
			p.logger.Warn("report notification failed", "error", err)
		}
	}
	if p.deps.Recorder != nil {
		p.deps.Recorder.ObserveStage(config.StageReport, len(tbl.Rows), len(tbl.Rows), nil)
	}
	return nil
}

// relabel re-derives every label from its rating. A label carried in
// the input is never trusted: it may be missing, from the other scheme or
// edited by hand.
func (p *Pipeline) relabel(rows []domain.Review) ([]domain.Review, error) {
	for i := range rows {
		label, err := p.deps.Scheme.FromRating(rows[i].Rating)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, rows[i].ID, err)
		}
		rows[i].Label = label
	}
	return rows, nil
}

// write stores a stage's rows using its configured column set.
func (p *Pipeline) write(files config.StageIO, rows []domain.Review, def []table.Column) error {
	cols, err := table.ColumnSet(files.Columns, def)
	if err != nil {
		return err
	}
	return table.WriteFile(files.Output, rows, cols)
}

// finish logs the stage summary, records metrics and persists the drop audit.
func (p *Pipeline) finish(ctx context.Context, stage string, in int, out []domain.Review, drops []domain.Drop, path string) error {
	counts := domain.CountReasons(drops)
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	attrs := []any{"stage", stage, "in", in, "out", len(out), "dropped", len(drops), "output", path}
	for _, r := range reasons {
		attrs = append(attrs, "drop."+r, counts[r])
	}
	p.logger.Info("stage finished", attrs...)

	if p.deps.Recorder != nil {
		p.deps.Recorder.ObserveStage(stage, in, len(out), drops)
	}
	if p.deps.Repository != nil && len(drops) > 0 {
		if err := p.deps.Repository.RecordDrops(ctx, p.deps.RunID, drops); err != nil {
			return fmt.Errorf("record drops: %w", err)
		}
	}
	return nil
}

func shuffle(rows []domain.Review, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, ^seed))
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
