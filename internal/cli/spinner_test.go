package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Clustering...")
	s.out = &buf
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Clustering...") {
		t.Errorf("spinner output %q should contain the message", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not report cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.out = &bytes.Buffer{}
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.out = &bytes.Buffer{}
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("never started")
	s.out = &bytes.Buffer{}
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("Clustering... iteration 10/10")
	s.out = &bytes.Buffer{}

	s.SetMessage("Done")
	if got := s.Message(); got != "Done" {
		t.Errorf("Message() = %q, want %q", got, "Done")
	}
}

func TestSpinnerHooks(t *testing.T) {
	s := newSpinner("Clustering...")
	s.out = &bytes.Buffer{}
	h := &spinnerHooks{spinner: s, total: 10}

	h.OnStep(context.Background(), 3, 0, 12.5, time.Millisecond)
	if got, want := s.Message(), "Clustering... iteration 3/10 (inertia 12.50)"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}

	h.OnStep(context.Background(), 4, 2, 11, time.Millisecond)
	if got := s.Message(); !strings.HasSuffix(got, ", 2 re-seeded") {
		t.Errorf("Message() = %q, want re-seeded suffix", got)
	}
}
