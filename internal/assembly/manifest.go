package assembly

import (
	"fmt"
	"strings"
)

// BuildManifest renders the ffmpeg concat-list input for an ordered image
// sequence. Each frame is shown for frameSeconds; the final image is listed
// once more without a duration because the concat demuxer ignores the last
// duration directive otherwise.
func BuildManifest(imagePaths []string, frameSeconds int) string {
	var b strings.Builder
	for _, path := range imagePaths {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(path))
		fmt.Fprintf(&b, "duration %d\n", frameSeconds)
	}
	if len(imagePaths) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(imagePaths[len(imagePaths)-1]))
	}
	return b.String()
}

// escapeConcatPath quotes a path for the concat demuxer's single-quoted
// string syntax. An embedded single quote closes the string, emits an escaped
// quote, and reopens it. Paths never reach a shell; this escaping only guards
// the concat parser itself.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
