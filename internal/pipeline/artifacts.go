package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/forPelevin/pausecut/internal/domain/report"
	"github.com/forPelevin/pausecut/internal/domain/subtitles"
	"github.com/forPelevin/pausecut/internal/types"
)

// LoadTranscript reads a transcript by extension: SubRip (.srt), WebVTT
// (.vtt) or a JSON document with a "segments" array (.json).
func LoadTranscript(path string) (types.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	var segs []types.Segment
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		segs, err = subtitles.ParseSRT(bytes.NewReader(b))
	case ".vtt":
		segs, err = subtitles.ParseVTT(bytes.NewReader(b))
	case ".json":
		var tr types.Transcript
		if err := json.Unmarshal(b, &tr); err != nil {
			return types.Transcript{}, fmt.Errorf("decode transcript %s: %w", path, err)
		}
		return tr, nil
	default:
		return types.Transcript{}, fmt.Errorf("unsupported transcript format %q (want .srt, .vtt or .json)", ext)
	}
	if err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return types.Transcript{Segments: segs}, nil
}

// LoadCuts reads a cuts.json list.
func LoadCuts(path string) ([]types.CutCandidate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cuts: %w", err)
	}
	var cuts []types.CutCandidate
	if err := json.Unmarshal(b, &cuts); err != nil {
		return nil, fmt.Errorf("decode cuts %s: %w", path, err)
	}
	return cuts, nil
}

func writeTranscript(outDir string, tr types.Transcript, log *zap.Logger) (string, error) {
	path := filepath.Join(outDir, "transcript.srt")
	if err := os.WriteFile(path, []byte(subtitles.RenderSRT(tr.Segments)), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	log.Info("transcript written", zap.Int("segments", len(tr.Segments)), zap.String("path", path))
	return path, nil
}

// writeAnalysis stores the cut list (cuts.json), its readable form (cuts.txt)
// and the analysis record with counts and thresholds (analysis.json).
func writeAnalysis(outDir string, a types.Analysis, log *zap.Logger) error {
	cutsPath := filepath.Join(outDir, "cuts.json")
	if err := writeJSON(cutsPath, a.Cuts); err != nil {
		return err
	}
	txtPath := filepath.Join(outDir, "cuts.txt")
	if err := os.WriteFile(txtPath, []byte(report.RenderText(a.Cuts)), 0o644); err != nil {
		return fmt.Errorf("write cuts text: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, "analysis.json"), a); err != nil {
		return err
	}
	log.Info("cut list written",
		zap.Int("cuts", len(a.Cuts)),
		zap.String("json", cutsPath),
		zap.String("text", txtPath),
	)
	return nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
