package subtitles

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/forPelevin/pausecut/internal/types"
)

var reTag = regexp.MustCompile(`<[^>]*>`)

// ParseVTT reads WebVTT cues. NOTE, STYLE and REGION blocks are skipped and
// inline markup such as <c> or <00:00:01.000> is stripped from cue text.
func ParseVTT(r io.Reader) ([]types.Segment, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	blocks := splitBlocks(string(b))
	if len(blocks) == 0 || !strings.HasPrefix(blocks[0].lines[0], "WEBVTT") {
		return nil, errors.New("vtt: missing WEBVTT header")
	}

	var out []types.Segment
	for _, blk := range blocks[1:] {
		switch first := blk.lines[0]; {
		case strings.HasPrefix(first, "NOTE"),
			strings.HasPrefix(first, "STYLE"),
			strings.HasPrefix(first, "REGION"):
			continue
		}
		seg, ok, err := parseCue(blk.lines, true)
		if err != nil {
			return nil, fmt.Errorf("vtt line %d: %w", blk.line, err)
		}
		if ok {
			out = append(out, seg)
		}
	}
	return out, nil
}
