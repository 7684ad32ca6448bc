package synthesis_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelsnap/internal/config"
	"reelsnap/internal/services"
	"reelsnap/internal/synthesis"
)

func newTestConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.TTS.APIKey = "test-key"
	cfg.TTS.VoiceID = "voice-1"
	cfg.TTS.BaseURL = baseURL
	cfg.TTS.TimeoutSeconds = 5
	return &cfg
}

func TestSynthesizeWritesAudio(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := synthesis.NewClient(newTestConfig(server.URL))
	outPath := filepath.Join(t.TempDir(), "audio.mp3")

	if err := client.Synthesize(context.Background(), "hello world", outPath); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if gotPath != "/v1/text-to-speech/voice-1" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key header %q", gotKey)
	}
	if gotBody["text"] != "hello world" {
		t.Fatalf("unexpected request body %v", gotBody)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("unexpected audio content %q", data)
	}
}

func TestSynthesizeEmptyTextFailsBeforeCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := synthesis.NewClient(newTestConfig(server.URL))
	err := client.Synthesize(context.Background(), "   ", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("provider must not be called for empty text")
	}
}

func TestSynthesizeProviderErrorSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := synthesis.NewClient(newTestConfig(server.URL))
	err := client.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSynthesizeFailureLeavesNoArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "audio.mp3")
	client := synthesis.NewClient(newTestConfig(server.URL))
	if err := client.Synthesize(context.Background(), "hello", outPath); err == nil {
		t.Fatal("expected failure")
	}

	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatal("failed synthesis must not leave an audio file")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no staging leftovers, found %d entries", len(entries))
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	cfg := newTestConfig(server.URL)
	cfg.TTS.TimeoutSeconds = 1
	client := synthesis.NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := client.Synthesize(ctx, "hello", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
