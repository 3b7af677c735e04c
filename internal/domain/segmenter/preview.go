package segmenter

import (
	"strings"

	"github.com/forPelevin/pausecut/internal/types"
)

const TruncationMarker = "..."

// Preview joins the group's text with single spaces and keeps at most limit
// characters, appending TruncationMarker when anything was cut off.
func Preview(group []types.Segment, limit int) string {
	parts := make([]string, 0, len(group))
	for _, s := range group {
		parts = append(parts, s.Text)
	}
	return truncate(strings.Join(parts, " "), limit)
}

func truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	// count characters, not bytes: transcripts are rarely ASCII-only
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + TruncationMarker
}
