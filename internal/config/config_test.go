package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Label.Classes)
	assert.Equal(t, "full", cfg.Normalizer.Preset)
	assert.Equal(t, uint64(42), cfg.Balance.Seed)
	assert.Equal(t, 3, cfg.Collector.MaxConsecutiveEmpty)
	assert.Equal(t, "div.review", cfg.Collector.HTML.Selectors.Item)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
label:
  classes: 5
collector:
  ratings: [1, 2, 3, 4, 5]
  delay: 300ms
  retry:
    maxRetries: 2
balance:
  cap: 3000
pipeline: [clean, balance]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Label.Classes)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Collector.Ratings)
	assert.Equal(t, 300*time.Millisecond, cfg.Collector.Delay)
	assert.Equal(t, uint64(2), cfg.Collector.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Collector.Retry.InitialInterval, "untouched nested default")
	assert.Equal(t, 3000, cfg.Balance.Cap)
	assert.Equal(t, uint64(42), cfg.Balance.Seed)
	assert.Equal(t, []string{StageClean, StageBalance}, cfg.Pipeline)
	assert.Equal(t, "data/reviews_raw.csv", cfg.Stages.Collect.Output)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "database:\n  dsn: postgres://file\n"))
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(telegramTokenEnv, "tok")
	t.Setenv(telegramChatIDEnv, "chat")
	t.Setenv(pushgatewayEnv, "http://gw:9091")
	t.Setenv(logLevelEnv, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "tok", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "chat", cfg.Notifications.Telegram.ChatID)
	assert.Equal(t, "http://gw:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "label:\n  classes: 4\npipeline: [clean, train]\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "label.classes")
	assert.ErrorContains(t, err, `"train"`)
}

func TestLoadRejectsUnknownColumnSet(t *testing.T) {
	_, err := Load(writeConfig(t, "stages:\n  balance:\n    inputs: [a.csv]\n    output: b.csv\n    columns: wide\n"))
	assert.ErrorContains(t, err, `stages.balance.columns: unknown column set "wide"`)

	cfg, err := Load(writeConfig(t, "stages:\n  balance:\n    inputs: [a.csv]\n    output: b.csv\n    columns: training\n"))
	require.NoError(t, err)
	assert.Equal(t, ColumnsTraining, cfg.Stages.Balance.Columns)
}

func TestLoadNestedKeysAreCamelCase(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
collector:
  html:
    selectors:
      idAttr: data-id
      thumbsUp: .likes
consistency:
  thresholds:
    veryCount: 3
    highRating: 5
    lowRating: 1
report:
  options:
    minRows: 10
    maxImbalance: 2.5
    maxDuplicateRatio: 0.1
    maxShortRatio: 0.2
`))
	require.NoError(t, err)
	assert.Equal(t, "data-id", cfg.Collector.HTML.Selectors.ID)
	assert.Equal(t, ".likes", cfg.Collector.HTML.Selectors.ThumbsUp)
	assert.Equal(t, 3, cfg.Consistency.Thresholds.VeryCount)
	assert.Equal(t, 5, cfg.Consistency.Thresholds.HighRating)
	assert.Equal(t, 1, cfg.Consistency.Thresholds.LowRating)
	assert.Equal(t, 10, cfg.Report.Options.MinRows)
	assert.Equal(t, 2.5, cfg.Report.Options.MaxImbalance)
	assert.Equal(t, 0.1, cfg.Report.Options.MaxDuplicateRatio)
	assert.Equal(t, 0.2, cfg.Report.Options.MaxShortRatio)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "reviewprep.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Collector.Ratings)
	assert.Equal(t, 500*time.Millisecond, cfg.Collector.Delay)
	assert.Equal(t, 2, cfg.Consistency.Thresholds.VeryCount)
	assert.Equal(t, []string{"configs/dictionary.yaml"}, cfg.Dictionaries)
	assert.Equal(t, "data/reviews_checked.csv", cfg.Stages.Augment.Inputs[0])
}
