package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"recognizer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "pdftotext", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "pdftotext", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestAlertKeySurvivesWrapping(t *testing.T) {
	cause := errors.New("exit status 1")
	alert := services.Alert(services.AlertCouldNotRead, cause)
	wrapped := fmt.Errorf("pipeline: %w", alert)

	key, ok := services.AlertKey(wrapped)
	if !ok || key != services.AlertCouldNotRead {
		t.Fatalf("expected alert key %q, got %q ok=%v", services.AlertCouldNotRead, key, ok)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("expected alert to unwrap to its cause")
	}
}

func TestAlertKeyAbsentForPlainErrors(t *testing.T) {
	err := services.Wrap(services.ErrTransient, "recognize", "post", "request failed", errors.New("eof"))
	if key, ok := services.AlertKey(err); ok {
		t.Fatalf("expected no alert key, got %q", key)
	}
	if _, ok := services.AlertKey(nil); ok {
		t.Fatal("expected no alert key for nil")
	}
}

func TestErrorHintByMarker(t *testing.T) {
	if hint := services.ErrorHint(services.Wrap(services.ErrExternalTool, "", "", "", nil)); !strings.Contains(hint, "pdftotext") {
		t.Fatalf("unexpected hint %q", hint)
	}
	if hint := services.ErrorHint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil, got %q", hint)
	}
}
