package classify

import (
	"context"
	"time"

	"github.com/example/phishguard/internal/urlnorm"
)

// DefaultDelay is the simulated analysis latency.
const DefaultDelay = 2 * time.Second

// Checker runs a policy behind a fixed simulated delay.
type Checker struct {
	Policy Policy
	Delay  time.Duration
}

// NewChecker returns a Checker for policy. A zero delay disables the wait.
func NewChecker(policy Policy, delay time.Duration) *Checker {
	return &Checker{Policy: policy, Delay: delay}
}

// Check classifies raw. It always returns a result; cancelling ctx only cuts
// the simulated delay short.
func (c *Checker) Check(ctx context.Context, raw string) CheckResult {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return c.Policy.Classify(raw)
}

// Outcome is a CheckResult together with what was checked and when.
type Outcome struct {
	URL        string      `json:"url"`
	Host       string      `json:"host"`
	Domain     string      `json:"domain,omitempty"`
	Policy     string      `json:"policy"`
	Result     CheckResult `json:"result"`
	CheckedAt  time.Time   `json:"checkedAt"`
	DurationMs int64       `json:"durationMs"`
}

// Inspect checks raw and wraps the result in an Outcome.
func (c *Checker) Inspect(ctx context.Context, raw string) Outcome {
	start := time.Now()
	result := c.Check(ctx, raw)
	host := urlnorm.Hostname(raw)
	return Outcome{
		URL:        raw,
		Host:       host,
		Domain:     urlnorm.RegistrableDomain(host),
		Policy:     c.Policy.Name(),
		Result:     result,
		CheckedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}
