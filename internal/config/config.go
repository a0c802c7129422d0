package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ReviewPrep/internal/consistency"
	"ReviewPrep/internal/infrastructure/parser"
	"ReviewPrep/internal/report"
)

const (
	ConfigPathEnv     = "REVIEWPREP_CONFIG"
	logLevelEnv       = "REVIEWPREP_LOG_LEVEL"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	pushgatewayEnv    = "PUSHGATEWAY_URL"
)

// Stage names accepted by the pipeline section and the CLI.
const (
	StageCollect = "collect"
	StageLabel   = "label"
	StageClean   = "clean"
	StageCheck   = "check"
	StageBalance = "balance"
	StageAugment = "augment"
	StageReport  = "report"
)

// KnownStages lists stages in their natural order.
var KnownStages = []string{StageCollect, StageLabel, StageClean, StageCheck, StageBalance, StageAugment, StageReport}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Collector     CollectorConfig    `yaml:"collector"`
	Label         LabelConfig        `yaml:"label"`
	Normalizer    NormalizerConfig   `yaml:"normalizer"`
	Filter        FilterConfig       `yaml:"filter"`
	Consistency   ConsistencyConfig  `yaml:"consistency"`
	Balance       BalanceConfig      `yaml:"balance"`
	Augment       AugmentConfig      `yaml:"augment"`
	Report        ReportConfig       `yaml:"report"`
	Dictionaries  []string           `yaml:"dictionaries"`
	Stages        StagesConfig       `yaml:"stages"`
	Pipeline      []string           `yaml:"pipeline"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CollectorConfig describes where and how reviews are pulled.
type CollectorConfig struct {
	Source    string `yaml:"source"`
	AppID     string `yaml:"appId"`
	Lang      string `yaml:"lang"`
	Country   string `yaml:"country"`
	Sort      string `yaml:"sort"`
	BatchSize int    `yaml:"batchSize"`
	// MaxReviews bounds the unstratified stream.
	MaxReviews int `yaml:"maxReviews"`
	// Ratings enables per-rating collection with TargetPerRating each.
	Ratings             []int           `yaml:"ratings"`
	TargetPerRating     int             `yaml:"targetPerRating"`
	Delay               time.Duration   `yaml:"delay"`
	MaxConsecutiveEmpty int             `yaml:"maxConsecutiveEmpty"`
	Retry               RetryConfig     `yaml:"retry"`
	PlayStore           PlayStoreConfig `yaml:"playstore"`
	HTML                HTMLConfig      `yaml:"html"`
}

// RetryConfig bounds the exponential backoff around one page fetch.
type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
	MaxElapsedTime  time.Duration `yaml:"maxElapsedTime"`
	MaxRetries      uint64        `yaml:"maxRetries"`
}

// PlayStoreConfig points at the JSON review-listing endpoint.
type PlayStoreConfig struct {
	BaseURL          string        `yaml:"baseUrl"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failureThreshold"`
	OpenTimeout      time.Duration `yaml:"openTimeout"`
}

// HTMLConfig points at an HTML review listing.
type HTMLConfig struct {
	BaseURL   string           `yaml:"baseUrl"`
	Selectors parser.Selectors `yaml:"selectors"`
}

// LabelConfig picks the label scheme.
type LabelConfig struct {
	Classes       int  `yaml:"classes"`
	VerifyNeutral bool `yaml:"verifyNeutral"`
}

// NormalizerConfig selects a preset or an explicit step list.
type NormalizerConfig struct {
	Preset string   `yaml:"preset"`
	Steps  []string `yaml:"steps"`
}

// FilterConfig are the validity thresholds.
type FilterConfig struct {
	MinWords int `yaml:"minWords"`
	MaxWords int `yaml:"maxWords"`
	MinChars int `yaml:"minChars"`
}

// ConsistencyConfig tunes the rating/text checker.
type ConsistencyConfig struct {
	Thresholds consistency.Thresholds `yaml:"thresholds"`
}

// BalanceConfig drives undersampling.
type BalanceConfig struct {
	Seed   uint64 `yaml:"seed"`
	Cap    int    `yaml:"cap"`
	Target int    `yaml:"target"`
}

// AugmentConfig drives minority-class synthesis.
type AugmentConfig struct {
	Seed           uint64  `yaml:"seed"`
	TargetPerClass int     `yaml:"targetPerClass"`
	NumAug         int     `yaml:"numAug"`
	DeletionP      float64 `yaml:"deletionP"`
	MaxAttempts    int     `yaml:"maxAttempts"`
	// FillPreset cleans rows that arrive without content_clean.
	FillPreset string `yaml:"fillPreset"`
}

// ReportConfig holds verdict thresholds.
type ReportConfig struct {
	Title   string         `yaml:"title"`
	Options report.Options `yaml:"options"`
	Notify  bool           `yaml:"notify"`
}

// Column sets a stage may write. Empty keeps the stage default.
const (
	ColumnsAll      = "all"
	ColumnsRaw      = "raw"
	ColumnsTraining = "training"
)

// StageIO names the files a stage reads and writes.
type StageIO struct {
	Inputs  []string `yaml:"inputs"`
	Output  string   `yaml:"output"`
	Columns string   `yaml:"columns"`
}

func (s StagesConfig) byName() map[string]StageIO {
	return map[string]StageIO{
		StageCollect: s.Collect,
		StageLabel:   s.Label,
		StageClean:   s.Clean,
		StageCheck:   s.Check,
		StageBalance: s.Balance,
		StageAugment: s.Augment,
		StageReport:  s.Report,
	}
}

// StagesConfig maps every stage to its files.
type StagesConfig struct {
	Collect StageIO `yaml:"collect"`
	Label   StageIO `yaml:"label"`
	Clean   StageIO `yaml:"clean"`
	Check   StageIO `yaml:"check"`
	Balance StageIO `yaml:"balance"`
	Augment StageIO `yaml:"augment"`
	Report  StageIO `yaml:"report"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN disables storage.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// MetricsConfig enables pushing batch metrics.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// Load reads .env (if present), the YAML file at path or $REVIEWPREP_CONFIG
// (if any) over the defaults, and finally applies environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		// Decoding over the defaults keeps every field the file leaves out.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(pushgatewayEnv); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

// Validate rejects settings no stage could run with.
func (c Config) Validate() error {
	var errs []error
	if c.Label.Classes != 3 && c.Label.Classes != 5 {
		errs = append(errs, fmt.Errorf("label.classes must be 3 or 5, got %d", c.Label.Classes))
	}
	if c.Normalizer.Preset == "" && len(c.Normalizer.Steps) == 0 {
		errs = append(errs, errors.New("normalizer needs a preset or steps"))
	}
	if c.Filter.MinWords < 0 || (c.Filter.MaxWords > 0 && c.Filter.MaxWords < c.Filter.MinWords) {
		errs = append(errs, fmt.Errorf("filter word bounds %d..%d are invalid", c.Filter.MinWords, c.Filter.MaxWords))
	}
	if c.Balance.Cap < 0 || c.Balance.Target < 0 {
		errs = append(errs, errors.New("balance cap and target must not be negative"))
	}
	for _, r := range c.Collector.Ratings {
		if r < 1 || r > 5 {
			errs = append(errs, fmt.Errorf("collector rating %d out of range", r))
		}
	}
	for _, s := range c.Pipeline {
		if !IsStage(s) {
			errs = append(errs, fmt.Errorf("unknown pipeline stage %q", s))
		}
	}
	stages := c.Stages.byName()
	for _, name := range KnownStages {
		switch stages[name].Columns {
		case "", ColumnsAll, ColumnsRaw, ColumnsTraining:
		default:
			errs = append(errs, fmt.Errorf("stages.%s.columns: unknown column set %q", name, stages[name].Columns))
		}
	}
	return errors.Join(errs...)
}

// IsStage reports whether name is a known stage.
func IsStage(name string) bool {
	for _, s := range KnownStages {
		if s == name {
			return true
		}
	}
	return false
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Collector: CollectorConfig{
			Source:              "playstore",
			AppID:               "com.gojek.app",
			Lang:                "id",
			Country:             "id",
			Sort:                "newest",
			BatchSize:           200,
			MaxReviews:          10000,
			TargetPerRating:     2000,
			Delay:               500 * time.Millisecond,
			MaxConsecutiveEmpty: 3,
			Retry: RetryConfig{
				InitialInterval: time.Second,
				MaxInterval:     10 * time.Second,
				MaxElapsedTime:  time.Minute,
				MaxRetries:      5,
			},
			PlayStore: PlayStoreConfig{
				BaseURL:          "http://localhost:3000/api",
				Timeout:          20 * time.Second,
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
			},
			HTML: HTMLConfig{Selectors: parser.DefaultSelectors()},
		},
		Label:       LabelConfig{Classes: 3},
		Normalizer:  NormalizerConfig{Preset: "full"},
		Filter:      FilterConfig{MinWords: 3, MaxWords: 500, MinChars: 10},
		Consistency: ConsistencyConfig{Thresholds: consistency.DefaultThresholds()},
		Balance:     BalanceConfig{Seed: 42},
		Augment: AugmentConfig{
			Seed:           42,
			TargetPerClass: 5000,
			NumAug:         4,
			DeletionP:      0.1,
			MaxAttempts:    20,
			FillPreset:     "augment",
		},
		Report: ReportConfig{Title: "dataset", Options: report.DefaultOptions()},
		Stages: StagesConfig{
			Collect: StageIO{Output: "data/reviews_raw.csv"},
			Label:   StageIO{Inputs: []string{"data/reviews_raw.csv"}, Output: "data/reviews_labeled.csv"},
			Clean:   StageIO{Inputs: []string{"data/reviews_labeled.csv"}, Output: "data/reviews_clean.csv"},
			Check:   StageIO{Inputs: []string{"data/reviews_clean.csv"}, Output: "data/reviews_checked.csv"},
			Balance: StageIO{Inputs: []string{"data/reviews_checked.csv"}, Output: "data/reviews_balanced.csv"},
			Augment: StageIO{Inputs: []string{"data/reviews_checked.csv"}, Output: "data/reviews_augmented.csv"},
			Report:  StageIO{Inputs: []string{"data/reviews_balanced.csv"}},
		},
		Pipeline: []string{StageCollect, StageLabel, StageClean, StageCheck, StageBalance, StageReport},
		Metrics:  MetricsConfig{Job: "reviewprep"},
	}
}
