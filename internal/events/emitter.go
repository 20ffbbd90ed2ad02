package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/example/phishguard/internal/classify"
)

// Event types written by the CLI.
const (
	TypeScanStart       = "scan-start"
	TypeCheckResult     = "check-result"
	TypeArtifactWritten = "artifact-written"
	TypeScanFinished    = "scan-finished"
	TypeReport          = "report"
	TypeWarning         = "warning"
)

// Event represents a single NDJSON record.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"runId,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emitter writes NDJSON events to an io.Writer safely across goroutines.
type Emitter struct {
	writer io.Writer
	runID  string
	mu     sync.Mutex
}

// NewEmitter returns a new NDJSON emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

// WithRunID returns an emitter sharing the writer that stamps every event with id.
func (e *Emitter) WithRunID(id string) *Emitter {
	return &Emitter{writer: &lockedWriter{mu: &e.mu, w: e.writer}, runID: id}
}

// Emit serializes the event to JSON and appends a newline.
func (e *Emitter) Emit(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.RunID == "" {
		evt.RunID = e.runID
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err = e.writer.Write(append(payload, '\n'))
	return err
}

// EmitOutcome writes a check-result event for a finished check.
func (e *Emitter) EmitOutcome(o classify.Outcome) error {
	fields := map[string]interface{}{
		"url":        o.URL,
		"host":       o.Host,
		"policy":     o.Policy,
		"verdict":    o.Result.Verdict(),
		"isPhishing": o.Result.IsPhishing,
		"confidence": o.Result.Confidence,
		"verified":   o.Result.Verified,
		"durationMs": o.DurationMs,
	}
	if o.Result.Target != "" {
		fields["target"] = o.Result.Target
	}
	return e.Emit(Event{Type: TypeCheckResult, Message: o.Result.Details, Fields: fields})
}

// lockedWriter lets derived emitters share the parent's lock so lines from
// both never interleave.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
