// Package jobs discovers uploaded job bundles on disk and exposes them as Job
// descriptors. The filesystem is the only source of job state: every List call
// re-enumerates the job root from scratch.
package jobs

import (
	"path/filepath"
	"strings"
)

// DescriptionFile is the per-job narration text written by the upload API.
const DescriptionFile = "desc.txt"

// ManifestFile is the per-job image ordering manifest written by the upload API.
const ManifestFile = "input.txt"

// AudioFile is the narration artifact produced by the synthesis stage.
const AudioFile = "audio.mp3"

// Job represents one uploaded bundle awaiting or undergoing processing. The
// identifier is the directory name and is stable for the job's lifetime.
type Job struct {
	ID              string
	Dir             string
	DescriptionPath string
	Description     string
	// ImagePaths is ordered; the order determines the frame sequence of the
	// rendered reel and must be preserved verbatim through assembly.
	ImagePaths []string

	// AudioPath is set once the synthesis stage succeeds.
	AudioPath string
	// OutputPath is set once the assembly stage succeeds.
	OutputPath string
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// RecognizedImage reports whether name carries a supported image extension.
func RecognizedImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
