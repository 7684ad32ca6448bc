package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"reelsnap/internal/ledger"
)

func openLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "done.txt"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return l
}

func TestRecordThenContains(t *testing.T) {
	l := openLedger(t)

	ok, err := l.Contains("job-1")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Fatal("empty ledger should not contain job-1")
	}

	if err := l.Record("job-1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	ok, err = l.Contains("job-1")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Fatal("expected job-1 to be recorded")
	}
}

func TestContainsSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	l, err := ledger.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Record("job-42"); err != nil {
		t.Fatal(err)
	}

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := reopened.Contains("job-42")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("record should survive process restart")
	}
}

func TestTruncatedTrailingLineIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	// Simulates a crash mid-append: job-2 has no terminating newline.
	if err := os.WriteFile(path, []byte("job-1\njob-2"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := ledger.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := l.Contains("job-1")
	if err != nil || !ok {
		t.Fatalf("job-1 should be present (ok=%v err=%v)", ok, err)
	}
	ok, err = l.Contains("job-2")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("truncated record job-2 must read as absent")
	}
}

func TestCompletedSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	if err := os.WriteFile(path, []byte("job-1\n\n  \njob-3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := ledger.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	done, err := l.Completed()
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(done), done)
	}
}

func TestRecordRejectsUnsafeIDs(t *testing.T) {
	l := openLedger(t)
	for _, id := range []string{"", "a\nb", "a/b", "..\nx"} {
		if err := l.Record(id); err == nil {
			t.Fatalf("expected rejection for id %q", id)
		}
	}
}

func TestRecordIsAppendOnly(t *testing.T) {
	l := openLedger(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := l.Record(id); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\nb\nc\n" {
		t.Fatalf("unexpected ledger contents: %q", data)
	}
}

func TestOpenRequiresParentDirectory(t *testing.T) {
	_, err := ledger.Open(filepath.Join(t.TempDir(), "missing", "done.txt"))
	if err == nil {
		t.Fatal("expected error when parent directory missing")
	}
}
