package report

import (
	"fmt"
	"strings"

	"github.com/forPelevin/pausecut/internal/types"
)

// RenderText is the human-readable companion of cuts.json.
func RenderText(cuts []types.CutCandidate) string {
	var b strings.Builder
	for i, c := range cuts {
		fmt.Fprintf(&b, "Cut %d: %.3f - %.3f\n", i+1, c.Start, c.End)
		fmt.Fprintf(&b, "%s\n\n", c.TextPreview)
	}
	return b.String()
}

func ClipID(n int) string { return fmt.Sprintf("%03d", n) }

// ClipName is the file name of the n-th (1-based) clip.
func ClipName(n int) string { return "cut_" + ClipID(n) + ".mp4" }
