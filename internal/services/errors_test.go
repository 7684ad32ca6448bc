package services_test

import (
	"errors"
	"strings"
	"testing"

	"reelsnap/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "synthesis", "call provider", "request failed", inner)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	for _, want := range []string{"synthesis", "call provider", "request failed", "connection refused"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "assembly", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestWrapWithoutDetailUsesFallbackMessage(t *testing.T) {
	err := services.Wrap(services.ErrTimeout, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", services.Wrap(services.ErrValidation, "synthesis", "validate", "empty text", nil), false},
		{"external tool", services.Wrap(services.ErrExternalTool, "assembly", "run", "exit 1", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "assembly", "run", "", nil), true},
		{"plain", errors.New("disk full"), true},
	}
	for _, tc := range cases {
		if got := services.Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
