// Package dashboard aggregates check outcomes into detection statistics.
package dashboard

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/example/phishguard/internal/classify"
)

// DefaultRecentLimit is how many recent detections a snapshot keeps.
const DefaultRecentLimit = 10

// Detection is a single entry of the recent detections list.
type Detection struct {
	URL        string    `json:"url"`
	Result     string    `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence int       `json:"confidence"`
	Target     string    `json:"target,omitempty"`
}

// Metrics is an immutable snapshot of the tracked statistics.
type Metrics struct {
	TotalScans       int         `json:"totalScans"`
	PhishingDetected int         `json:"phishingDetected"`
	SafeURLs         int         `json:"safeUrls"`
	AvgConfidence    float64     `json:"avgConfidence"`
	DailyScans       int         `json:"dailyScans"`
	SafetyRate       float64     `json:"safetyRate"`
	ThreatRate       float64     `json:"threatRate"`
	Recent           []Detection `json:"recentDetections"`
}

// Tracker accumulates outcomes. It is safe for concurrent use.
type Tracker struct {
	mu            sync.Mutex
	recentLimit   int
	total         int
	phishing      int
	confidenceSum int
	checkedAt     []time.Time
	recent        []Detection
	now           func() time.Time
}

// NewTracker returns a Tracker keeping recentLimit recent detections.
func NewTracker(recentLimit int) *Tracker {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Tracker{recentLimit: recentLimit, now: time.Now}
}

// Record adds an outcome to the statistics.
func (t *Tracker) Record(o classify.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if o.Result.IsPhishing {
		t.phishing++
	}
	t.confidenceSum += o.Result.Confidence
	t.checkedAt = append(t.checkedAt, o.CheckedAt)

	t.recent = append(t.recent, Detection{
		URL:        o.URL,
		Result:     o.Result.Verdict(),
		Timestamp:  o.CheckedAt,
		Confidence: o.Result.Confidence,
		Target:     o.Result.Target,
	})
	sort.SliceStable(t.recent, func(i, j int) bool {
		return t.recent[i].Timestamp.After(t.recent[j].Timestamp)
	})
	if len(t.recent) > t.recentLimit {
		t.recent = t.recent[:t.recentLimit]
	}
}

// Snapshot returns the current statistics.
func (t *Tracker) Snapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := Metrics{
		TotalScans:       t.total,
		PhishingDetected: t.phishing,
		SafeURLs:         t.total - t.phishing,
		Recent:           append([]Detection(nil), t.recent...),
	}
	if t.total == 0 {
		return m
	}

	m.AvgConfidence = round1(float64(t.confidenceSum) / float64(t.total))
	m.SafetyRate = round1(float64(m.SafeURLs) / float64(t.total) * 100)
	m.ThreatRate = round1(float64(m.PhishingDetected) / float64(t.total) * 100)

	cutoff := t.now().Add(-24 * time.Hour)
	for _, at := range t.checkedAt {
		if at.After(cutoff) {
			m.DailyScans++
		}
	}
	return m
}

// FromOutcomes computes metrics for a finished batch.
func FromOutcomes(outcomes []classify.Outcome, recentLimit int) Metrics {
	t := NewTracker(recentLimit)
	for _, o := range outcomes {
		t.Record(o)
	}
	return t.Snapshot()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
