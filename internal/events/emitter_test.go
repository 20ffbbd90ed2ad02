package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/phishguard/internal/classify"
)

// errorWriter is a writer that always returns an error.
type errorWriter struct{}

func (e *errorWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var out []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		out = append(out, evt)
	}
	return out
}

func TestEmitAssignsTimestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewEmitter(buf).Emit(Event{Type: TypeScanStart}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	evts := decodeLines(t, buf)
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	if time.Since(evts[0].Timestamp) > time.Second {
		t.Fatalf("timestamp not recent: %v", evts[0].Timestamp)
	}
}

func TestEmitPreservesTimestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := NewEmitter(buf).Emit(Event{Type: "test", Timestamp: ts}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got := decodeLines(t, buf)[0].Timestamp; !got.Equal(ts) {
		t.Fatalf("expected %v, got %v", ts, got)
	}
}

func TestEmitWithRunID(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewEmitter(buf)
	child := parent.WithRunID("run-1")

	if err := child.Emit(Event{Type: TypeScanStart}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := child.Emit(Event{Type: TypeScanFinished, RunID: "explicit"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := parent.Emit(Event{Type: TypeWarning}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	evts := decodeLines(t, buf)
	if len(evts) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evts))
	}
	if evts[0].RunID != "run-1" || evts[1].RunID != "explicit" || evts[2].RunID != "" {
		t.Fatalf("unexpected run ids: %q %q %q", evts[0].RunID, evts[1].RunID, evts[2].RunID)
	}
}

func TestEmitOutcome(t *testing.T) {
	buf := &bytes.Buffer{}
	o := classify.Outcome{
		URL:    "http://fake-paypal-signin.net/login",
		Host:   "fake-paypal-signin.net",
		Policy: classify.PolicyAllowList,
		Result: classify.NewResult(true, 95, "not on the list", "PayPal", true),
	}
	if err := NewEmitter(buf).EmitOutcome(o); err != nil {
		t.Fatalf("EmitOutcome() error = %v", err)
	}

	evt := decodeLines(t, buf)[0]
	if evt.Type != TypeCheckResult {
		t.Fatalf("expected type %s, got %s", TypeCheckResult, evt.Type)
	}
	if evt.Message != "not on the list" {
		t.Fatalf("unexpected message %q", evt.Message)
	}
	if evt.Fields["verdict"] != "phishing" || evt.Fields["confidence"] != float64(95) || evt.Fields["target"] != "PayPal" {
		t.Fatalf("unexpected fields: %#v", evt.Fields)
	}
}

func TestEmitOutcomeOmitsEmptyTarget(t *testing.T) {
	buf := &bytes.Buffer{}
	o := classify.Outcome{URL: "google.com", Result: classify.NewResult(false, 100, "", "", true)}
	if err := NewEmitter(buf).EmitOutcome(o); err != nil {
		t.Fatalf("EmitOutcome() error = %v", err)
	}
	if _, ok := decodeLines(t, buf)[0].Fields["target"]; ok {
		t.Fatal("target should be omitted for safe verdicts")
	}
}

func TestEmitConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)
	derived := emitter.WithRunID("run")

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			target := emitter
			if id%2 == 0 {
				target = derived
			}
			if err := target.Emit(Event{Type: "concurrent", Fields: map[string]interface{}{"id": id}}); err != nil {
				t.Errorf("Emit() error in goroutine %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, buf)); got != goroutines {
		t.Fatalf("expected %d lines, got %d", goroutines, got)
	}
}

// errorMarshaler is a type that always fails to marshal to JSON.
type errorMarshaler struct{}

func (e errorMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("marshal error")
}

func TestEmitErrors(t *testing.T) {
	tests := []struct {
		name   string
		writer io.Writer
		event  Event
	}{
		{name: "write error propagates", writer: &errorWriter{}, event: Event{Type: "test"}},
		{name: "marshal error", writer: &bytes.Buffer{}, event: Event{Type: "test", Fields: map[string]interface{}{"bad": errorMarshaler{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewEmitter(tt.writer).Emit(tt.event); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
