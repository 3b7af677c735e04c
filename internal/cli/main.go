package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/pausecut/internal/domain/segmenter"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pausecut",
		Short:         "Find clip boundaries at long speech pauses and cut them from a video",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (yaml, toml or json)")
	pf.String("out", "out", "Output directory")
	pf.String("cache-dir", ".cache", "Cache directory for audio and ASR output")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("log-dev", false, "Human-readable console logs")

	root.AddCommand(
		newRunCmd(),
		newTranscribeCmd(),
		newAnalyzeCmd(),
		newCutCmd(),
	)
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Transcribe, find cuts and cut the video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd, args[0])
		},
	}
	cmd.Flags().String("transcript", "", "Use this transcript (.srt, .vtt, .json) instead of transcribing")
	cmd.Flags().Bool("skip-cut", false, "Only write the cut list")
	addSegmenterFlags(cmd)
	addASRFlags(cmd)
	return cmd
}

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a video into transcript.srt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, args[0])
		},
	}
	addASRFlags(cmd)
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <transcript>",
		Short: "Write cuts.json and cuts.txt from a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0])
		},
	}
	addSegmenterFlags(cmd)
	return cmd
}

func newCutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cut <video> <cuts.json>",
		Short: "Cut a video along a cut list without re-encoding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCut(cmd, args[0], args[1])
		},
	}
}

func addSegmenterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("pause", segmenter.DefaultPauseThreshold, "Pause in seconds that starts a new cut")
	f.Float64("min", segmenter.DefaultMinDuration, "Min cut duration seconds")
	f.Float64("max", segmenter.DefaultMaxDuration, "Max cut duration seconds")
	f.Int("preview-chars", segmenter.DefaultPreviewChars, "Max characters of text preview")
}

func addASRFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("asr", "whispercpp", "Transcription backend (whispercpp, openai)")
	f.String("language", "", "Spoken language hint for the remote backend")
}
