package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPrep/internal/config"
	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/table"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv(config.ConfigPathEnv, "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	labeled := filepath.Join(dir, "labeled.csv")
	cfg.Stages.Collect.Output = raw
	cfg.Stages.Label = config.StageIO{Inputs: []string{raw}, Output: labeled}
	return cfg
}

func TestNewRunsConfiguredStage(t *testing.T) {
	cfg := testConfig(t)
	rows := []domain.Review{
		{ID: "1", TextRaw: "aplikasi bagus sekali", Rating: 5},
		{ID: "2", TextRaw: "aplikasi sering error", Rating: 1},
	}
	require.NoError(t, table.WriteFile(cfg.Stages.Collect.Output, rows, table.RawColumns))

	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Run(context.Background(), config.StageLabel))

	tbl, err := table.ReadFile(cfg.Stages.Label.Output)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, domain.LabelPositive, tbl.Rows[0].Label)
	assert.Equal(t, domain.LabelNegative, tbl.Rows[1].Label)
}

func TestNewRejectsUnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Collector.Source = "appstore"
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "appstore")
}

func TestNewRejectsUnknownNormalizerStep(t *testing.T) {
	cfg := testConfig(t)
	cfg.Normalizer.Steps = []string{"lowercase", "stem"}
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
