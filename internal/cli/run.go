package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/pausecut/internal/config"
	"github.com/forPelevin/pausecut/internal/logger"
	"github.com/forPelevin/pausecut/internal/pipeline"
)

const runTimeout = 3 * time.Hour

func runAll(cmd *cobra.Command, input string) error {
	cfg, log, err := buildConfig(cmd, input)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg.TranscriptPath, _ = cmd.Flags().GetString("transcript")
	cfg.SkipCut, _ = cmd.Flags().GetBool("skip-cut")
	if cfg.TranscriptPath != "" {
		if cfg.TranscriptPath, err = filepath.Abs(cfg.TranscriptPath); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	bar := newCutBar(cmd)
	cfg.Progress = bar.progress

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	return pipeline.Run(ctx, cfg)
}

func runTranscribe(cmd *cobra.Command, input string) error {
	cfg, log, err := buildConfig(cmd, input)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	path, err := pipeline.Transcribe(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runAnalyze(cmd *cobra.Command, transcript string) error {
	cfg, log, err := buildConfig(cmd, "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.TranscriptPath, err = filepath.Abs(transcript); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Analyze(cfg)
}

func runCut(cmd *cobra.Command, input, cutsPath string) error {
	cfg, log, err := buildConfig(cmd, input)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.CutsPath, err = filepath.Abs(cutsPath); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	bar := newCutBar(cmd)
	cfg.Progress = bar.progress

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	return pipeline.CutFromFile(ctx, cfg)
}

// buildConfig merges config file, environment and flags into a pipeline
// config and builds the logger.
func buildConfig(cmd *cobra.Command, input string) (pipeline.Config, *zap.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	c, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return pipeline.Config{}, nil, err
	}

	log, err := logger.New(c.LogLevel(), c.LogDevelopment())
	if err != nil {
		return pipeline.Config{}, nil, err
	}

	absIn := ""
	if input != "" {
		if absIn, err = filepath.Abs(input); err != nil {
			return pipeline.Config{}, nil, err
		}
	}

	return pipeline.Config{
		InputMP4:  absIn,
		OutDir:    c.OutDir(),
		CacheDir:  c.CacheDir(),
		Segmenter: c.Segmenter(),
		Log:       log,

		FFmpegPath:  c.FFmpegPath(),
		FFprobePath: c.FFprobePath(),

		WhisperBin:   c.WhisperBin(),
		WhisperModel: c.WhisperModel(),

		ASRBackend:      c.ASRBackend(),
		ASRAPIKey:       c.ASRAPIKey(),
		ASRModel:        c.ASRModel(),
		ASRLanguage:     c.ASRLanguage(),
		ASRBaseURL:      c.ASRBaseURL(),
		ASRAllowedHosts: c.ASRAllowedHosts(),
	}, log, nil
}

type cutBar struct {
	cmd *cobra.Command
	bar *progressbar.ProgressBar
}

func newCutBar(cmd *cobra.Command) *cutBar {
	return &cutBar{cmd: cmd}
}

// progress lazily sizes the bar: the cut count is only known after analysis.
func (b *cutBar) progress(done, total int) {
	if b.bar == nil {
		b.bar = progressbar.NewOptions(
			total,
			progressbar.OptionSetWriter(b.cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("cutting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = b.bar.Set(done)
	if done == total {
		_ = b.bar.Finish()
	}
}
