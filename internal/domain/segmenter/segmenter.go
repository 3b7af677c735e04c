package segmenter

import (
	"errors"
	"fmt"

	"github.com/forPelevin/pausecut/internal/types"
)

const (
	DefaultPauseThreshold = 2.0
	DefaultMinDuration    = 20.0
	DefaultMaxDuration    = 300.0
	DefaultPreviewChars   = 150
)

// Config holds the segmentation thresholds. All durations are seconds.
type Config struct {
	// PauseThreshold is the minimum gap between a segment's end and the next
	// segment's start that closes the current group.
	PauseThreshold float64
	// MinDuration and MaxDuration are inclusive bounds on a group's span.
	MinDuration float64
	MaxDuration float64
	// PreviewChars caps the preview text, in characters.
	PreviewChars int
}

func DefaultConfig() Config {
	return Config{
		PauseThreshold: DefaultPauseThreshold,
		MinDuration:    DefaultMinDuration,
		MaxDuration:    DefaultMaxDuration,
		PreviewChars:   DefaultPreviewChars,
	}
}

// Validate is for callers that accept thresholds from users. Segment itself
// never rejects a config.
func (c Config) Validate() error {
	if c.PauseThreshold < 0 {
		return errors.New("pause threshold must be >= 0")
	}
	if c.MinDuration < 0 {
		return errors.New("min duration must be >= 0")
	}
	if c.MaxDuration <= 0 {
		return errors.New("max duration must be > 0")
	}
	if c.MinDuration > c.MaxDuration {
		return fmt.Errorf("min duration %.3f must be <= max duration %.3f", c.MinDuration, c.MaxDuration)
	}
	if c.PreviewChars <= 0 {
		return errors.New("preview chars must be > 0")
	}
	return nil
}

type Result struct {
	Cuts []types.CutCandidate
	// Groups is the number of pause-delimited groups before duration filtering.
	Groups int
	// Dropped is the number of groups rejected by the duration window.
	Dropped int
}

// Segment splits segs into pause-delimited groups and returns the groups whose
// duration lies within [MinDuration, MaxDuration], in input order.
func Segment(segs []types.Segment, cfg Config) []types.CutCandidate {
	return Analyze(segs, cfg).Cuts
}

// Analyze is Segment plus the group and drop counts.
func Analyze(segs []types.Segment, cfg Config) Result {
	groups := Group(segs, cfg.PauseThreshold)
	res := Result{
		Cuts:   make([]types.CutCandidate, 0, len(groups)),
		Groups: len(groups),
	}
	for _, g := range groups {
		c := types.CutCandidate{Start: g[0].Start, End: g[len(g)-1].End}
		// NaN durations fail both comparisons and are dropped
		if d := c.Duration(); !(cfg.MinDuration <= d && d <= cfg.MaxDuration) {
			res.Dropped++
			continue
		}
		c.TextPreview = Preview(g, cfg.PreviewChars)
		res.Cuts = append(res.Cuts, c)
	}
	return res
}

// Group partitions segs into runs of adjacent segments. A new run starts
// whenever next.Start - prev.End >= pauseThreshold. Segments are never
// reordered, so concatenating the groups yields segs again.
func Group(segs []types.Segment, pauseThreshold float64) [][]types.Segment {
	if len(segs) == 0 {
		return nil
	}

	var groups [][]types.Segment
	cur := []types.Segment{segs[0]}
	for i := 0; i < len(segs)-1; i++ {
		pause := segs[i+1].Start - segs[i].End
		if pause >= pauseThreshold {
			groups = append(groups, cur)
			cur = []types.Segment{segs[i+1]}
			continue
		}
		cur = append(cur, segs[i+1])
	}
	// the last run has no following pause to close it
	return append(groups, cur)
}
