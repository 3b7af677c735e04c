package types

import "time"

type Transcript struct {
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// Segment is one timed unit of transcribed speech. Times are seconds from the
// start of the source audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// CutCandidate is a contiguous run of segments bounded by long pauses.
// Its JSON form is the cut list consumed by the cutter.
type CutCandidate struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	TextPreview string  `json:"text_preview"`
}

func (c CutCandidate) Duration() float64 { return c.End - c.Start }

func (c CutCandidate) StartDuration() time.Duration { return Seconds(c.Start) }

func (c CutCandidate) EndDuration() time.Duration { return Seconds(c.End) }

type Analysis struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	PauseThreshold float64        `json:"pause_threshold_sec"`
	MinDuration    float64        `json:"min_duration_sec"`
	MaxDuration    float64        `json:"max_duration_sec"`
	PreviewChars   int            `json:"preview_chars"`
	Groups         int            `json:"groups"`
	Dropped        int            `json:"dropped"`
	Cuts           []CutCandidate `json:"cuts"`
}

const (
	ClipCompleted = "completed"
	ClipFailed    = "error"
)

type Manifest struct {
	ID    string         `json:"id"`
	Input string         `json:"input"`
	Clips []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID          string  `json:"id"`
	Number      int     `json:"number"`
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
	TextPreview string  `json:"text_preview"`
	File        string  `json:"file"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
}

// Failed reports how many clips ended with an error status.
func (m Manifest) Failed() int {
	n := 0
	for _, c := range m.Clips {
		if c.Status == ClipFailed {
			n++
		}
	}
	return n
}

func Seconds(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
