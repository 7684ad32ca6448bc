package server

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// sanitizeFilename reduces a client-supplied filename to a safe basename:
// accents are decomposed and dropped, path separators and control characters
// collapse to underscores, and leading dots are stripped so the result can
// never escape the job directory or hide from directory listings. Returns ""
// when nothing safe remains; callers must reject such uploads.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark left over from decomposition.
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), "._")
}
