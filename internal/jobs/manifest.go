package jobs

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseManifest reads an upload ordering manifest and returns the referenced
// file names in order. The format is the concat-list layout the upload API
// writes: alternating "file '<name>'" and "duration <seconds>" lines.
// Referenced names are bare file names; anything resembling a path is
// rejected so a crafted manifest cannot reach outside the job directory.
func ParseManifest(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "file "):
			name, err := parseFileLine(line)
			if err != nil {
				return nil, fmt.Errorf("manifest line %d: %w", lineNo, err)
			}
			names = append(names, name)
		case strings.HasPrefix(line, "duration "):
			// Frame durations are re-derived at assembly time.
		default:
			return nil, fmt.Errorf("manifest line %d: unrecognized directive %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return names, nil
}

func parseFileLine(line string) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "file "))
	if len(rest) < 2 || rest[0] != '\'' || rest[len(rest)-1] != '\'' {
		return "", fmt.Errorf("file directive must quote the name: %q", line)
	}
	name := rest[1 : len(rest)-1]
	if name == "" {
		return "", fmt.Errorf("file directive names an empty file")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fmt.Errorf("file directive %q escapes the job directory", name)
	}
	return name, nil
}
