package remoteasr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/pausecut/internal/types"
)

// Adapter transcribes audio through an OpenAI-compatible
// /v1/audio/transcriptions endpoint.
type Adapter struct {
	key      string
	model    string
	language string
	client   *openai.Client
}

const (
	defaultModel   = openai.Whisper1
	requestTimeout = 30 * time.Minute
)

func New(apiKey, model, language, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = apiBase(baseURL)
	return &Adapter{
		key:      apiKey,
		model:    model,
		language: language,
		client:   openai.NewClientWithConfig(cfg),
	}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.CreateTranscription(reqCtx, openai.AudioRequest{
		Model:    a.model,
		Reader:   f,
		FilePath: filepath.Base(wavPath),
		Language: a.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return types.Transcript{}, fmt.Errorf("asr timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return types.Transcript{}, a.describeError(err)
	}

	if cacheDir != "" {
		// keep the response next to the audio for reruns and debugging
		if b, err := json.MarshalIndent(resp, "", "  "); err == nil {
			_ = os.WriteFile(filepath.Join(cacheDir, "asr.json"), b, 0o644)
		}
	}

	tr := types.Transcript{Language: resp.Language, Duration: resp.Duration}
	tr.Segments = make([]types.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{Start: s.Start, End: s.End, Text: text})
	}
	return tr, nil
}

// describeError flattens client errors into one redacted line that keeps the
// HTTP status when the server answered.
func (a *Adapter) describeError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("asr status %d: %s", apiErr.HTTPStatusCode, a.clean(apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("asr status %d: %s", reqErr.HTTPStatusCode, a.clean(reqErr.Error()))
	}
	return fmt.Errorf("asr request: %s", a.clean(err.Error()))
}

func (a *Adapter) clean(s string) string {
	return truncate(redactSecrets(s, a.key), 400)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
