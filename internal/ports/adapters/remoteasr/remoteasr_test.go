package remoteasr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF....WAVE"), 0o644))
	return p
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "pt", r.FormValue("language"))

		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(f)
		assert.Equal(t, "RIFF....WAVE", string(b))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"language": "portuguese",
			"duration": 12.5,
			"text": "Olá. Tudo bem?",
			"segments": [
				{"id": 0, "start": 0.0, "end": 2.0, "text": " Olá."},
				{"id": 1, "start": 2.0, "end": 2.1, "text": " "},
				{"id": 2, "start": 4.5, "end": 6.0, "text": " Tudo bem?"}
			]
		}`)
	}))
	defer srv.Close()

	cache := t.TempDir()
	a := New("sk-test", "", "pt", srv.URL)
	tr, err := a.Transcribe(context.Background(), writeWav(t), cache)
	require.NoError(t, err)

	assert.Equal(t, "portuguese", tr.Language)
	assert.Equal(t, 12.5, tr.Duration)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "Olá.", tr.Segments[0].Text)
	assert.Equal(t, 4.5, tr.Segments[1].Start)

	_, err = os.Stat(filepath.Join(cache, "asr.json"))
	assert.NoError(t, err)
}

func TestTranscribe_ErrorStatusIsRedacted(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "api error",
			status: http.StatusUnauthorized,
			body:   `{"error": {"message": "Incorrect API key provided: sk-secret-123", "type": "invalid_request_error"}}`,
		},
		{
			name:   "plain body",
			status: http.StatusBadGateway,
			body:   "upstream refused Authorization: Bearer sk-secret-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			a := New("sk-secret-123", "whisper-1", "", srv.URL)
			_, err := a.Transcribe(context.Background(), writeWav(t), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("asr status %d", tt.status))
			assert.NotContains(t, err.Error(), "sk-secret-123")
		})
	}
}

func TestTranscribe_MissingAudio(t *testing.T) {
	a := New("k", "", "", "https://api.openai.com")
	_, err := a.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open audio")
}

func TestRedactSecrets(t *testing.T) {
	apiKey := "sk-super-secret"
	in := `status 401; Authorization: Bearer sk-super-secret; api_key=sk-super-secret`
	got := redactSecrets(in, apiKey)

	assert.NotContains(t, got, apiKey)
	assert.Contains(t, got, "Authorization: [REDACTED]")
	assert.Contains(t, got, "api_key=[REDACTED]")
}
