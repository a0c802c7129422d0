package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ReviewPrep/internal/app"
	"ReviewPrep/internal/config"
	"ReviewPrep/internal/logging"
)

var stageHelp = map[string]string{
	config.StageCollect: "Collect raw reviews from the configured source",
	config.StageLabel:   "Derive sentiment labels from star ratings",
	config.StageClean:   "Normalize text, drop invalid rows and duplicates",
	config.StageCheck:   "Drop rows whose text contradicts their rating",
	config.StageBalance: "Undersample every class to a common size",
	config.StageAugment: "Synthesize minority-class rows up to the target",
	config.StageReport:  "Print dataset diagnostics and readiness verdict",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "reviewprep",
		Short:         "Prepare app-store reviews for sentiment fine-tuning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $"+config.ConfigPathEnv+")")

	for _, stage := range config.KnownStages {
		root.AddCommand(&cobra.Command{
			Use:   stage,
			Short: stageHelp[stage],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), configPath, stage)
			},
		})
	}
	root.AddCommand(&cobra.Command{
		Use:   "run [stage...]",
		Short: "Run the configured pipeline, or the given stages, in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, args...)
		},
	})
	return root
}

func run(ctx context.Context, configPath string, stages ...string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.New("error").Error("config invalid", "error", err)
		return err
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return err
	}
	defer application.Close()

	if err := application.Run(ctx, stages...); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}
