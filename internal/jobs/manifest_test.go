package jobs_test

import (
	"strings"
	"testing"

	"reelsnap/internal/jobs"
)

func TestParseManifestPreservesOrder(t *testing.T) {
	input := "file 'b.png' \nduration 2 \nfile 'a.png' \nduration 2 \nfile 'c.jpg' \nduration 2 \n"
	names, err := jobs.ParseManifest(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	want := []string{"b.png", "a.png", "c.jpg"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, names, want)
		}
	}
}

func TestParseManifestSkipsBlankLines(t *testing.T) {
	names, err := jobs.ParseManifest(strings.NewReader("\nfile 'one.png'\n\nduration 3\n"))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if len(names) != 1 || names[0] != "one.png" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestParseManifestRejectsTraversal(t *testing.T) {
	cases := []string{
		"file '../etc/passwd'\n",
		"file '/abs/path.png'\n",
		"file 'a\\b.png'\n",
		"file '..'\n",
	}
	for _, input := range cases {
		if _, err := jobs.ParseManifest(strings.NewReader(input)); err == nil {
			t.Fatalf("expected rejection for %q", input)
		}
	}
}

func TestParseManifestRejectsUnknownDirective(t *testing.T) {
	if _, err := jobs.ParseManifest(strings.NewReader("frames 'a.png'\n")); err == nil {
		t.Fatal("expected error for unknown directive")
	}
}

func TestParseManifestRejectsUnquotedName(t *testing.T) {
	if _, err := jobs.ParseManifest(strings.NewReader("file a.png\n")); err == nil {
		t.Fatal("expected error for unquoted name")
	}
}

func TestRecognizedImage(t *testing.T) {
	for _, name := range []string{"a.png", "B.JPG", "c.jpeg"} {
		if !jobs.RecognizedImage(name) {
			t.Errorf("%q should be recognized", name)
		}
	}
	for _, name := range []string{"a.gif", "b.txt", "c", "audio.mp3"} {
		if jobs.RecognizedImage(name) {
			t.Errorf("%q should not be recognized", name)
		}
	}
}
