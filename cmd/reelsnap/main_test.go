package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsnap/internal/jobs"
	"reelsnap/internal/ledger"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	jobRoot    string
	reelsDir   string
	ledgerPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		jobRoot:    filepath.Join(base, "uploads"),
		reelsDir:   filepath.Join(base, "reels"),
		ledgerPath: filepath.Join(base, "logs", "done.txt"),
	}
	for _, dir := range []string{env.jobRoot, env.reelsDir, filepath.Join(base, "logs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	body := fmt.Sprintf(`[paths]
job_root = %q
reels_dir = %q
log_dir = %q
ledger_path = %q

[tts]
api_key = "test-key"

[server]
bind = "127.0.0.1:0"
`, env.jobRoot, env.reelsDir, filepath.Join(base, "logs"), env.ledgerPath)
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *cliTestEnv) writeJob(t *testing.T, id string) {
	t.Helper()
	dir := filepath.Join(e.jobRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, jobs.DescriptionFile), []byte("a description"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "1.png"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLIJobsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeJob(t, "job-pending")
	env.writeJob(t, "job-done")

	led, err := ledger.Open(env.ledgerPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := led.Record("job-done"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, env.configPath, "jobs")
	if err != nil {
		t.Fatalf("jobs command failed: %v", err)
	}
	if !strings.Contains(out, "job-pending") || !strings.Contains(out, "pending") {
		t.Fatalf("expected pending job in output:\n%s", out)
	}
	if !strings.Contains(out, "job-done") || !strings.Contains(out, "completed") {
		t.Fatalf("expected completed job in output:\n%s", out)
	}

	out, err = runCLI(t, env.configPath, "jobs", "--pending")
	if err != nil {
		t.Fatalf("jobs --pending failed: %v", err)
	}
	if strings.Contains(out, "job-done") {
		t.Fatalf("--pending must hide completed jobs:\n%s", out)
	}
}

func TestCLIJobsCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, env.configPath, "jobs")
	if err != nil {
		t.Fatalf("jobs command failed: %v", err)
	}
	if !strings.Contains(out, "No jobs found") {
		t.Fatalf("expected empty message, got:\n%s", out)
	}
}

func TestCLIReelsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(filepath.Join(env.reelsDir, "job-a.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.reelsDir, ".job-b.mp4.partial"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, env.configPath, "reels")
	if err != nil {
		t.Fatalf("reels command failed: %v", err)
	}
	if !strings.Contains(out, "job-a.mp4") {
		t.Fatalf("expected rendered reel in output:\n%s", out)
	}
	if strings.Contains(out, "partial") {
		t.Fatalf("partial files must be hidden:\n%s", out)
	}
}

func TestCLIStatusCommandWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeJob(t, "job-pending")

	out, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	if !strings.Contains(out, "not reachable") {
		t.Fatalf("expected daemon-down notice:\n%s", out)
	}
	if !strings.Contains(out, "1 pending, 0 completed") {
		t.Fatalf("expected local counts:\n%s", out)
	}
	if !strings.Contains(out, "Dependencies") || !strings.Contains(out, "FFmpeg") {
		t.Fatalf("expected dependency report:\n%s", out)
	}
}

func TestCLIConfigShowRedactsAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, env.configPath) {
		t.Fatalf("expected config path header:\n%s", out)
	}
	if !strings.Contains(out, "[tts]") || !strings.Contains(out, "<redacted>") {
		t.Fatalf("expected redacted tts section:\n%s", out)
	}
	if strings.Contains(out, "test-key") {
		t.Fatalf("api key leaked into output:\n%s", out)
	}
}

func TestCLIVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.HasPrefix(out, "reelsnap ") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestCLITestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify failed: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Fatalf("expected unconfigured notice:\n%s", out)
	}
}
