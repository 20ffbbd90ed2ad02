package classify

import (
	"math/rand/v2"
	"sync"
)

const (
	defaultFlagRate     = 0.3
	defaultVerifiedRate = 0.8
)

// HeuristicPolicy is the demo classifier: a pattern match plus a random roll.
// Its verdicts are not reproducible unless the random source is seeded.
type HeuristicPolicy struct {
	patterns     PatternSet
	targets      []string
	flagRate     float64
	verifiedRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicPolicy returns a demo policy drawing from rng.
func NewHeuristicPolicy(patterns PatternSet, rng *rand.Rand) *HeuristicPolicy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &HeuristicPolicy{
		patterns:     patterns,
		targets:      DefaultTargets,
		flagRate:     defaultFlagRate,
		verifiedRate: defaultVerifiedRate,
		rng:          rng,
	}
}

// Name implements Policy.
func (p *HeuristicPolicy) Name() string {
	return PolicyHeuristic
}

// Classify implements Policy.
func (p *HeuristicPolicy) Classify(raw string) CheckResult {
	_, matched := p.patterns.Match(raw)

	p.mu.Lock()
	defer p.mu.Unlock()

	phishing := matched || p.rng.Float64() < p.flagRate
	if !phishing {
		return NewResult(false, 80+p.rng.IntN(20),
			"URL appears to be legitimate based on security analysis",
			"", p.rng.Float64() < p.verifiedRate)
	}

	confidence := 70 + p.rng.IntN(30)
	target := p.targets[p.rng.IntN(len(p.targets))]
	return NewResult(true, confidence,
		"URL matches known phishing patterns or suspicious domain characteristics",
		target, p.rng.Float64() < p.verifiedRate)
}
