package services_test

import (
	"errors"
	"strings"
	"testing"

	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "catalog", "embed", "failed", base)
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
	for _, fragment := range []string{"catalog", "embed", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	dup := services.Wrap(services.ErrDuplicate, "organizing", "check destination", "exists", nil)
	if status := services.FailureStatus(dup); status != media.StatusDuplicate {
		t.Fatalf("expected duplicate status, got %s", status)
	}

	outside := services.Wrap(services.ErrOutsideRoot, "organizing", "containment", "refused", nil)
	if status := services.FailureStatus(outside); status != media.StatusFailed {
		t.Fatalf("expected failed for containment error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != media.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}
