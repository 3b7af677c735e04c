package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forPelevin/pausecut/internal/domain/report"
	"github.com/forPelevin/pausecut/internal/domain/segmenter"
	"github.com/forPelevin/pausecut/internal/logger"
	"github.com/forPelevin/pausecut/internal/ports"
	"github.com/forPelevin/pausecut/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.ASR
	Log   *zap.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	d.Log = logger.OrNop(d.Log)
	return Usecase{d: d}
}

type TranscribeInput struct {
	InputMP4 string
	CacheDir string
}

func (u Usecase) Transcribe(ctx context.Context, in TranscribeInput) (types.Transcript, error) {
	wav := filepath.Join(in.CacheDir, "audio.wav")
	u.d.Log.Info("extracting audio", zap.String("input", in.InputMP4), zap.String("wav", wav))
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputMP4, wav); err != nil {
		return types.Transcript{}, err
	}

	started := time.Now()
	tr, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}
	u.d.Log.Info("transcribed",
		zap.Int("segments", len(tr.Segments)),
		zap.String("language", tr.Language),
		zap.Duration("took", time.Since(started)),
	)
	return tr, nil
}

type AnalyzeInput struct {
	Source     string
	Transcript types.Transcript
	Segmenter  segmenter.Config
}

func (u Usecase) Analyze(in AnalyzeInput) types.Analysis {
	res := segmenter.Analyze(in.Transcript.Segments, in.Segmenter)
	u.d.Log.Info("speech groups found",
		zap.Int("segments", len(in.Transcript.Segments)),
		zap.Int("groups", res.Groups),
		zap.Int("kept", len(res.Cuts)),
		zap.Int("dropped", res.Dropped),
	)
	return types.Analysis{
		ID:             uuid.NewString(),
		Source:         in.Source,
		PauseThreshold: in.Segmenter.PauseThreshold,
		MinDuration:    in.Segmenter.MinDuration,
		MaxDuration:    in.Segmenter.MaxDuration,
		PreviewChars:   in.Segmenter.PreviewChars,
		Groups:         res.Groups,
		Dropped:        res.Dropped,
		Cuts:           res.Cuts,
	}
}

type CutInput struct {
	InputMP4   string
	AnalysisID string
	Cuts       []types.CutCandidate
	OutDir     string
	// Progress, if set, is called after each cut with the number handled so far.
	Progress func(done, total int)
}

// Cut extracts every cut into OutDir/clips in list order. A cut that fails is
// recorded in the manifest with an error status and the remaining cuts are
// still processed; only context cancellation stops the loop early.
func (u Usecase) Cut(ctx context.Context, in CutInput) (types.Manifest, error) {
	m := types.Manifest{ID: in.AnalysisID, Input: in.InputMP4, Clips: []types.ManifestClip{}}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	clipsDir := filepath.Join(in.OutDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return m, err
	}

	mediaDur, err := u.d.Video.ProbeDuration(ctx, in.InputMP4)
	if err != nil {
		return m, fmt.Errorf("probe input: %w", err)
	}
	u.d.Log.Info("cutting", zap.Int("cuts", len(in.Cuts)), zap.Duration("media", mediaDur))

	for i, c := range in.Cuts {
		if err := ctx.Err(); err != nil {
			return m, err
		}
		n := i + 1
		name := report.ClipName(n)
		clip := types.ManifestClip{
			ID:          report.ClipID(n),
			Number:      n,
			StartSec:    c.Start,
			EndSec:      c.End,
			TextPreview: c.TextPreview,
			File:        filepath.ToSlash(filepath.Join("clips", name)),
			Status:      types.ClipCompleted,
		}

		log := u.d.Log.With(zap.Int("cut", n), zap.Float64("start", c.Start), zap.Float64("end", c.End))
		if mediaDur > 0 && c.StartDuration() >= mediaDur {
			clip.Status = types.ClipFailed
			clip.Error = fmt.Sprintf("cut starts at %.3fs, beyond media duration %.3fs", c.Start, mediaDur.Seconds())
			log.Warn("cut skipped", zap.String("reason", clip.Error))
		} else if err := u.d.Video.CutCopy(ctx, in.InputMP4, c.StartDuration(), c.EndDuration(), filepath.Join(clipsDir, name)); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return m, ctxErr
			}
			clip.Status = types.ClipFailed
			clip.Error = firstLine(err.Error())
			log.Warn("cut failed", zap.Error(err))
		} else {
			log.Info("cut saved", zap.String("file", clip.File))
		}

		m.Clips = append(m.Clips, clip)
		if in.Progress != nil {
			in.Progress(n, len(in.Cuts))
		}
	}
	return m, nil
}

// ffmpeg errors carry the whole tool output after the first line
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
