package whispercpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TranscriptionOffsets(t *testing.T) {
	in := `{
  "result": {"language": "pt"},
  "transcription": [
    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "offsets": {"from": 0, "to": 2500}, "text": " Olá a todos."},
    {"offsets": {"from": 2500, "to": 3000}, "text": "   "},
    {"offsets": {"from": 5200, "to": 9000}, "text": " Hoje vamos falar."}
  ]
}`
	tr, err := decode([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "pt", tr.Language)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, 0.0, tr.Segments[0].Start)
	assert.Equal(t, 2.5, tr.Segments[0].End)
	assert.Equal(t, "Olá a todos.", tr.Segments[0].Text)
	assert.Equal(t, 5.2, tr.Segments[1].Start)
}

func TestDecode_Segments(t *testing.T) {
	in := `{"segments": [{"start": 1.5, "end": 3, "text": " hi ", "words": [{"start": 1.5, "end": 2, "word": " hi"}]}]}`
	tr, err := decode([]byte(in))
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "hi", tr.Segments[0].Text)
	assert.Equal(t, "hi", tr.Segments[0].Words[0].Word)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := decode([]byte("{"))
	assert.Error(t, err)
}
