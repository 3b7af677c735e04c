package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/forPelevin/pausecut/internal/domain/segmenter"
	"github.com/forPelevin/pausecut/internal/logger"
	"github.com/forPelevin/pausecut/internal/ports"
	"github.com/forPelevin/pausecut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/pausecut/internal/ports/adapters/remoteasr"
	"github.com/forPelevin/pausecut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/pausecut/internal/types"
	"github.com/forPelevin/pausecut/internal/usecase"
)

const (
	ASRWhisperCpp = "whispercpp"
	ASROpenAI     = "openai"
)

type Config struct {
	// InputMP4 is the source video. Required to transcribe or cut.
	InputMP4 string
	// TranscriptPath (.srt, .vtt or .json) replaces transcription when set.
	TranscriptPath string
	// CutsPath is a cuts.json to cut from, used by CutFromFile.
	CutsPath string

	OutDir  string
	SkipCut bool

	Segmenter segmenter.Config

	Log      *zap.Logger
	Progress func(done, total int)

	// CacheDir is the base directory for local artifacts (audio, ASR output).
	// If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	WhisperBin   string
	WhisperModel string

	ASRBackend      string
	ASRAPIKey       string
	ASRModel        string
	ASRLanguage     string
	ASRBaseURL      string
	ASRAllowedHosts []string
}

func (c Config) needsASR() bool {
	return c.InputMP4 != "" && c.TranscriptPath == "" && c.CutsPath == ""
}

func (c Config) Validate() error {
	if c.InputMP4 == "" && c.TranscriptPath == "" {
		return errors.New("input is empty")
	}
	if c.InputMP4 != "" {
		if _, err := os.Stat(c.InputMP4); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if c.TranscriptPath != "" {
		if _, err := os.Stat(c.TranscriptPath); err != nil {
			return fmt.Errorf("stat transcript: %w", err)
		}
	}
	if err := c.Segmenter.Validate(); err != nil {
		return fmt.Errorf("segmenter: %w", err)
	}
	if !c.needsASR() {
		return nil
	}
	switch c.ASRBackend {
	case "", ASRWhisperCpp:
		if c.WhisperModel == "" {
			return errors.New("whisper model path is required")
		}
		return nil
	case ASROpenAI:
		if c.ASRAPIKey == "" {
			return errors.New("asr api key is required for the openai backend (set OPENAI_API_KEY)")
		}
		return remoteasr.ValidateBaseURL(c.ASRBaseURL, c.ASRAllowedHosts)
	default:
		return fmt.Errorf("unknown asr backend %q", c.ASRBackend)
	}
}

// Run transcribes (or loads) the transcript, writes the cut list and, unless
// SkipCut is set, cuts the clips and writes manifest.json.
func Run(ctx context.Context, cfg Config) error {
	log := logger.OrNop(cfg.Log)
	ws, err := prepareWorkspace(cfg, cfg.InputMP4, true, log)
	if err != nil {
		return err
	}
	uc := newUsecase(cfg, log)

	tr, source, err := obtainTranscript(ctx, cfg, uc, ws)
	if err != nil {
		return err
	}

	a := uc.Analyze(usecase.AnalyzeInput{Source: source, Transcript: tr, Segmenter: cfg.Segmenter})
	if err := writeAnalysis(ws.outDir, a, log); err != nil {
		return err
	}
	if cfg.SkipCut {
		return nil
	}
	return cutAndRecord(ctx, cfg, uc, ws, a.ID, a.Cuts, log)
}

// Transcribe extracts audio, transcribes it and stores transcript.srt in the
// run directory. It returns the path of the written file.
func Transcribe(ctx context.Context, cfg Config) (string, error) {
	log := logger.OrNop(cfg.Log)
	ws, err := prepareWorkspace(cfg, cfg.InputMP4, true, log)
	if err != nil {
		return "", err
	}
	uc := newUsecase(cfg, log)
	tr, err := uc.Transcribe(ctx, usecase.TranscribeInput{InputMP4: cfg.InputMP4, CacheDir: ws.cacheDir})
	if err != nil {
		return "", err
	}
	return writeTranscript(ws.outDir, tr, log)
}

// Analyze turns TranscriptPath into cuts.json and cuts.txt without touching
// any media.
func Analyze(cfg Config) error {
	if cfg.TranscriptPath == "" {
		return errors.New("transcript path is required")
	}
	log := logger.OrNop(cfg.Log)
	ws, err := prepareWorkspace(cfg, cfg.TranscriptPath, false, log)
	if err != nil {
		return err
	}
	tr, err := LoadTranscript(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	uc := newUsecase(cfg, log)
	a := uc.Analyze(usecase.AnalyzeInput{Source: cfg.TranscriptPath, Transcript: tr, Segmenter: cfg.Segmenter})
	return writeAnalysis(ws.outDir, a, log)
}

// CutFromFile cuts InputMP4 along the cut list in CutsPath.
func CutFromFile(ctx context.Context, cfg Config) error {
	if cfg.InputMP4 == "" {
		return errors.New("input is empty")
	}
	if cfg.CutsPath == "" {
		return errors.New("cuts path is required")
	}
	cuts, err := LoadCuts(cfg.CutsPath)
	if err != nil {
		return err
	}
	log := logger.OrNop(cfg.Log)
	ws, err := prepareWorkspace(cfg, cfg.InputMP4, true, log)
	if err != nil {
		return err
	}
	return cutAndRecord(ctx, cfg, newUsecase(cfg, log), ws, "", cuts, log)
}

type workspace struct {
	cacheDir string
	outDir   string
}

// prepareWorkspace creates the run output directory and, for steps that touch
// media, the per-input cache directory.
func prepareWorkspace(cfg Config, input string, withCache bool, log *zap.Logger) (workspace, error) {
	var cacheDir string
	if withCache {
		baseCache := cfg.CacheDir
		if baseCache == "" {
			baseCache = ".cache"
		}
		cacheDir = filepath.Join(baseCache, "runs", hash(input))
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return workspace{}, err
		}
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, input, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return workspace{}, err
	}
	log.Info("workspace ready", zap.String("cache", cacheDir), zap.String("out", runOutDir))
	return workspace{cacheDir: cacheDir, outDir: runOutDir}, nil
}

func newUsecase(cfg Config, log *zap.Logger) usecase.Usecase {
	var asr ports.ASR
	switch cfg.ASRBackend {
	case ASROpenAI:
		asr = remoteasr.New(cfg.ASRAPIKey, cfg.ASRModel, cfg.ASRLanguage, cfg.ASRBaseURL)
	default:
		asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	}
	return usecase.New(usecase.Deps{
		Video: ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		ASR:   asr,
		Log:   log,
	})
}

func obtainTranscript(ctx context.Context, cfg Config, uc usecase.Usecase, ws workspace) (types.Transcript, string, error) {
	if cfg.TranscriptPath != "" {
		tr, err := LoadTranscript(cfg.TranscriptPath)
		return tr, cfg.TranscriptPath, err
	}
	tr, err := uc.Transcribe(ctx, usecase.TranscribeInput{InputMP4: cfg.InputMP4, CacheDir: ws.cacheDir})
	if err != nil {
		return types.Transcript{}, "", err
	}
	path, err := writeTranscript(ws.outDir, tr, logger.OrNop(cfg.Log))
	if err != nil {
		return types.Transcript{}, "", err
	}
	return tr, path, nil
}

func cutAndRecord(
	ctx context.Context,
	cfg Config,
	uc usecase.Usecase,
	ws workspace,
	analysisID string,
	cuts []types.CutCandidate,
	log *zap.Logger,
) error {
	m, cutErr := uc.Cut(ctx, usecase.CutInput{
		InputMP4:   cfg.InputMP4,
		AnalysisID: analysisID,
		Cuts:       cuts,
		OutDir:     ws.outDir,
		Progress:   cfg.Progress,
	})
	if cutErr != nil && len(m.Clips) == 0 {
		return cutErr
	}
	manifestPath := filepath.Join(ws.outDir, "manifest.json")
	if err := writeJSON(manifestPath, m); err != nil {
		return err
	}
	log.Info("manifest written", zap.Int("clips", len(m.Clips)), zap.String("path", manifestPath))
	if cutErr != nil {
		return cutErr
	}
	if failed := m.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d cuts failed (see %s)", failed, len(m.Clips), manifestPath)
	}
	return nil
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// compile-time adapter checks
var (
	_ ports.VideoTool = (*ffmpeg.Adapter)(nil)
	_ ports.ASR       = (*whispercpp.Adapter)(nil)
	_ ports.ASR       = (*remoteasr.Adapter)(nil)
)
