package assembly_test

import (
	"strings"
	"testing"

	"reelsnap/internal/assembly"
)

func TestBuildManifestOrderAndDurations(t *testing.T) {
	manifest := assembly.BuildManifest([]string{"/jobs/j/a.png", "/jobs/j/b.png", "/jobs/j/c.png"}, 2)

	want := "file '/jobs/j/a.png'\n" +
		"duration 2\n" +
		"file '/jobs/j/b.png'\n" +
		"duration 2\n" +
		"file '/jobs/j/c.png'\n" +
		"duration 2\n" +
		"file '/jobs/j/c.png'\n"
	if manifest != want {
		t.Fatalf("manifest mismatch:\ngot:\n%s\nwant:\n%s", manifest, want)
	}
}

func TestBuildManifestSwappedOrderChangesOutput(t *testing.T) {
	forward := assembly.BuildManifest([]string{"/j/a.png", "/j/b.png"}, 2)
	reversed := assembly.BuildManifest([]string{"/j/b.png", "/j/a.png"}, 2)
	if forward == reversed {
		t.Fatal("swapping input order must change manifest output")
	}
	if !strings.HasPrefix(forward, "file '/j/a.png'") {
		t.Fatalf("unexpected first entry:\n%s", forward)
	}
	if !strings.HasPrefix(reversed, "file '/j/b.png'") {
		t.Fatalf("unexpected first entry:\n%s", reversed)
	}
}

func TestBuildManifestEscapesSingleQuotes(t *testing.T) {
	manifest := assembly.BuildManifest([]string{"/j/it's.png"}, 1)
	if !strings.Contains(manifest, `file '/j/it'\''s.png'`) {
		t.Fatalf("expected escaped quote, got:\n%s", manifest)
	}
}

func TestBuildManifestEmpty(t *testing.T) {
	if manifest := assembly.BuildManifest(nil, 2); manifest != "" {
		t.Fatalf("expected empty manifest, got %q", manifest)
	}
}
