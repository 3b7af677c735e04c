package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/forPelevin/pausecut/internal/domain/segmenter"
	"github.com/forPelevin/pausecut/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-video-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
		"Aula Introdução":   "aula-introdução",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestConfigValidate(t *testing.T) {
	tmp := t.TempDir()
	video := touch(t, tmp, "aula.mp4", "not really a video")
	srt := touch(t, tmp, "aula.srt", "")

	base := Config{Segmenter: segmenter.DefaultConfig(), WhisperModel: "model.bin"}
	with := func(mut func(*Config)) Config {
		c := base
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "no input", cfg: base, wantErr: "input is empty"},
		{name: "missing video", cfg: with(func(c *Config) { c.InputMP4 = filepath.Join(tmp, "nope.mp4") }), wantErr: "stat input"},
		{name: "missing transcript", cfg: with(func(c *Config) { c.TranscriptPath = filepath.Join(tmp, "nope.srt") }), wantErr: "stat transcript"},
		{name: "bad segmenter", cfg: with(func(c *Config) {
			c.TranscriptPath = srt
			c.Segmenter.MinDuration = 500
		}), wantErr: "segmenter: min duration"},
		{name: "transcript only", cfg: with(func(c *Config) { c.TranscriptPath = srt })},
		{name: "whisper default", cfg: with(func(c *Config) { c.InputMP4 = video })},
		{name: "whisper without model", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.WhisperModel = ""
		}), wantErr: "whisper model path is required"},
		{name: "transcript skips asr checks", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.TranscriptPath = srt
			c.ASRBackend = "nope"
		})},
		{name: "unknown backend", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.ASRBackend = "nope"
		}), wantErr: `unknown asr backend "nope"`},
		{name: "openai without key", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.ASRBackend = ASROpenAI
		}), wantErr: "asr api key is required"},
		{name: "openai http base url", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.ASRBackend = ASROpenAI
			c.ASRAPIKey = "k"
			c.ASRBaseURL = "http://api.openai.com"
		}), wantErr: "https is required"},
		{name: "openai ok", cfg: with(func(c *Config) {
			c.InputMP4 = video
			c.ASRBackend = ASROpenAI
			c.ASRAPIKey = "k"
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadTranscript(t *testing.T) {
	tmp := t.TempDir()

	srt := touch(t, tmp, "a.srt", "1\n00:00:00,000 --> 00:00:05,000\nolá\n\n")
	tr, err := LoadTranscript(srt)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "olá", tr.Segments[0].Text)

	vtt := touch(t, tmp, "a.vtt", "WEBVTT\n\n00:01.000 --> 00:02.000\nhi\n")
	tr, err = LoadTranscript(vtt)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)

	js := touch(t, tmp, "a.json", `{"segments":[{"start":1,"end":2,"text":"x"}]}`)
	tr, err = LoadTranscript(js)
	require.NoError(t, err)
	assert.Equal(t, []types.Segment{{Start: 1, End: 2, Text: "x"}}, tr.Segments)

	_, err = LoadTranscript(touch(t, tmp, "a.txt", "x"))
	assert.ErrorContains(t, err, "unsupported transcript format")

	_, err = LoadTranscript(filepath.Join(tmp, "missing.srt"))
	assert.ErrorContains(t, err, "read transcript")

	_, err = LoadTranscript(touch(t, tmp, "bad.srt", "1\n00:00:xx,000 --> 00:00:01,000\nx\n"))
	assert.ErrorContains(t, err, "parse transcript")
}

func TestLoadCuts(t *testing.T) {
	tmp := t.TempDir()
	p := touch(t, tmp, "cuts.json", `[{"start": 0, "end": 25.5, "text_preview": "a"}]`)
	cuts, err := LoadCuts(p)
	require.NoError(t, err)
	assert.Equal(t, []types.CutCandidate{{Start: 0, End: 25.5, TextPreview: "a"}}, cuts)

	_, err = LoadCuts(filepath.Join(tmp, "missing.json"))
	assert.ErrorContains(t, err, "read cuts")

	_, err = LoadCuts(touch(t, tmp, "bad.json", "{"))
	assert.ErrorContains(t, err, "decode cuts")
}

func TestAnalyze_WritesCutList(t *testing.T) {
	tmp := t.TempDir()
	srt := touch(t, tmp, "aula.srt", `1
00:00:00,000 --> 00:00:12,000
Bom dia, turma.

2
00:00:12,500 --> 00:00:25,000
Hoje vamos falar de <pausas>.

3
00:00:30,000 --> 00:00:34,000
Pergunta rápida.

4
00:00:40,000 --> 00:01:10,000
Segundo bloco da aula.
`)
	outRoot := filepath.Join(tmp, "out")
	err := Analyze(Config{
		TranscriptPath: srt,
		OutDir:         outRoot,
		CacheDir:       filepath.Join(tmp, "cache"),
		Segmenter:      segmenter.DefaultConfig(),
		Log:            zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	runs, err := os.ReadDir(outRoot)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	runDir := filepath.Join(outRoot, runs[0].Name())
	assert.True(t, strings.HasPrefix(runs[0].Name(), "aula-"))

	b, err := os.ReadFile(filepath.Join(runDir, "cuts.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<pausas>", "html must not be escaped")

	var cuts []types.CutCandidate
	require.NoError(t, json.Unmarshal(b, &cuts))
	assert.Equal(t, []types.CutCandidate{
		{Start: 0, End: 25, TextPreview: "Bom dia, turma. Hoje vamos falar de <pausas>."},
		{Start: 40, End: 70, TextPreview: "Segundo bloco da aula."},
	}, cuts)

	txt, err := os.ReadFile(filepath.Join(runDir, "cuts.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(txt), "Cut 1: 0.000 - 25.000\n"))

	var a types.Analysis
	ab, err := os.ReadFile(filepath.Join(runDir, "analysis.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(ab, &a))
	assert.Equal(t, 3, a.Groups)
	assert.Equal(t, 1, a.Dropped)
	assert.NotEmpty(t, a.ID)

	_, err = os.Stat(filepath.Join(tmp, "cache"))
	assert.True(t, os.IsNotExist(err), "analyze touches no media and needs no cache")
}

func TestAnalyze_RequiresTranscript(t *testing.T) {
	err := Analyze(Config{Segmenter: segmenter.DefaultConfig()})
	assert.ErrorContains(t, err, "transcript path is required")
}

func TestCutFromFile_MissingCuts(t *testing.T) {
	tmp := t.TempDir()
	err := CutFromFile(context.Background(), Config{
		InputMP4: touch(t, tmp, "v.mp4", "x"),
		CutsPath: filepath.Join(tmp, "cuts.json"),
		OutDir:   filepath.Join(tmp, "out"),
	})
	assert.ErrorContains(t, err, "read cuts")
}
