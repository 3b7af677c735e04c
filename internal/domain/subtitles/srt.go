package subtitles

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/forPelevin/pausecut/internal/types"
)

// ParseSRT reads SubRip cues: an index line, "start --> end", then one or
// more text lines, blocks separated by blank lines. Multi-line text is joined
// with a single space. Cues without text are skipped.
func ParseSRT(r io.Reader) ([]types.Segment, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	var out []types.Segment
	for _, blk := range splitBlocks(string(b)) {
		seg, ok, err := parseCue(blk.lines, false)
		if err != nil {
			return nil, fmt.Errorf("srt line %d: %w", blk.line, err)
		}
		if ok {
			out = append(out, seg)
		}
	}
	return out, nil
}

// RenderSRT writes segs as SubRip, numbering cues from 1.
func RenderSRT(segs []types.Segment) string {
	var b strings.Builder
	for i, s := range segs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(s.Start, ','),
			FormatTimestamp(s.End, ','),
			strings.TrimSpace(s.Text),
		)
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS<sep>mmm.
func FormatTimestamp(sec float64, sep byte) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}

// ParseTimestamp accepts HH:MM:SS,mmm, HH:MM:SS.mmm and MM:SS.mmm.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(strings.Replace(s, ",", ".", 1), ":")
	var h, m int
	var secPart string
	var err error
	switch len(parts) {
	case 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid hours in %q", s)
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		secPart = parts[2]
	case 2:
		if m, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		secPart = parts[1]
	default:
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	sec, err := strconv.ParseFloat(secPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}
	if h < 0 || m < 0 || m >= 60 || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("timestamp out of range %q", s)
	}
	return float64(h)*3600 + float64(m)*60 + sec, nil
}

type block struct {
	line  int
	lines []string
}

func splitBlocks(content string) []block {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var out []block
	var cur *block
	for i, l := range strings.Split(content, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			if cur != nil {
				out = append(out, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &block{line: i + 1}
		}
		cur.lines = append(cur.lines, l)
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// parseCue finds the timing line within the first two lines of a block (an
// optional index or cue id may precede it) and collects the text after it.
func parseCue(lines []string, stripTags bool) (types.Segment, bool, error) {
	at := -1
	for i := 0; i < len(lines) && i < 2; i++ {
		if strings.Contains(lines[i], "-->") {
			at = i
			break
		}
	}
	if at < 0 {
		return types.Segment{}, false, nil
	}

	start, end, err := parseTiming(lines[at])
	if err != nil {
		return types.Segment{}, false, err
	}

	text := make([]string, 0, len(lines)-at-1)
	for _, l := range lines[at+1:] {
		if stripTags {
			l = strings.TrimSpace(reTag.ReplaceAllString(l, ""))
		}
		if l != "" {
			text = append(text, l)
		}
	}
	if len(text) == 0 {
		return types.Segment{}, false, nil
	}
	return types.Segment{Start: start, End: end, Text: strings.Join(text, " ")}, true, nil
}

func parseTiming(l string) (float64, float64, error) {
	startStr, rest, ok := strings.Cut(l, "-->")
	if !ok {
		return 0, 0, fmt.Errorf("missing --> in %q", l)
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("missing end time in %q", l)
	}
	start, err := ParseTimestamp(startStr)
	if err != nil {
		return 0, 0, err
	}
	// anything after the end time is VTT cue settings
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
