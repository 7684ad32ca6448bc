package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelsnap/internal/logging"
)

// Source enumerates job directories under a root folder. A directory entry is
// a valid job iff it contains a non-empty description file and at least one
// recognized image; entries failing validation are skipped with a log, never
// fatal to the scan.
type Source struct {
	root   string
	logger *slog.Logger
}

// NewSource constructs a job source rooted at root.
func NewSource(root string, logger *slog.Logger) *Source {
	return &Source{
		root:   root,
		logger: logging.NewComponentLogger(logger, "jobsource"),
	}
}

// Root returns the directory the source scans.
func (s *Source) Root() string {
	return s.root
}

// List re-enumerates the job root and returns the current job descriptors in
// directory order. A missing or unreadable root is an error: no scan is
// possible without it.
func (s *Source) List(ctx context.Context) ([]*Job, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("enumerate job root %q: %w", s.root, err)
	}

	var found []*Job
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		job, err := s.load(entry.Name())
		if err != nil {
			s.logger.Warn("skipping invalid job directory",
				logging.String(logging.FieldEventType, "job_invalid"),
				logging.String(logging.FieldJobID, entry.Name()),
				logging.Error(err),
			)
			continue
		}
		s.logger.Debug("job discovered",
			logging.String(logging.FieldEventType, "job_discovered"),
			logging.String(logging.FieldJobID, job.ID),
			logging.Int("images", len(job.ImagePaths)),
		)
		found = append(found, job)
	}
	return found, nil
}

func (s *Source) load(id string) (*Job, error) {
	dir := filepath.Join(s.root, id)

	descPath := filepath.Join(dir, DescriptionFile)
	descBytes, err := os.ReadFile(descPath)
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}
	description := strings.TrimSpace(string(descBytes))
	if description == "" {
		return nil, errors.New("description file is empty")
	}

	images, err := s.orderedImages(dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, errors.New("no recognized image files")
	}

	return &Job{
		ID:              id,
		Dir:             dir,
		DescriptionPath: descPath,
		Description:     description,
		ImagePaths:      images,
	}, nil
}

// orderedImages resolves the job's frame sequence. The upload manifest is the
// order authority when present; otherwise images fall back to ascending file
// name order.
func (s *Source) orderedImages(dir string) ([]string, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	file, err := os.Open(manifestPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open manifest: %w", err)
		}
		return sortedImages(dir)
	}
	defer file.Close()

	names, err := ParseManifest(file)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(names))
	for _, name := range names {
		if !RecognizedImage(name) {
			return nil, fmt.Errorf("manifest references non-image file %q", name)
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("manifest references missing file %q: %w", name, err)
		}
		images = append(images, path)
	}
	return images, nil
}

func sortedImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate job directory: %w", err)
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !RecognizedImage(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}
