package ports

import (
	"context"
	"time"

	"github.com/forPelevin/pausecut/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	// CutCopy extracts [start, end] from inMP4 without re-encoding.
	CutCopy(ctx context.Context, inMP4 string, start, end time.Duration, outMP4 string) error
	ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}
