package classify

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

// Built-in policy names.
const (
	PolicyAllowList = "allowlist"
	PolicyHeuristic = "heuristic-demo"
)

// ErrUnknownPolicy is returned when a policy name is not registered.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy decides whether a raw URL is phishing.
type Policy interface {
	Name() string
	Classify(raw string) CheckResult
}

// Rules carries the configuration data a policy is built from.
type Rules struct {
	AllowList          []string
	SuspiciousPatterns []string
	// Seed makes the heuristic policy reproducible when set.
	Seed *uint64
}

func (r Rules) allowList() AllowList {
	if len(r.AllowList) == 0 {
		return NewAllowList(DefaultAllowList...)
	}
	return NewAllowList(r.AllowList...)
}

func (r Rules) patterns() PatternSet {
	if len(r.SuspiciousPatterns) == 0 {
		return NewPatternSet(DefaultSuspiciousPatterns...)
	}
	return NewPatternSet(r.SuspiciousPatterns...)
}

func (r Rules) source() *rand.Rand {
	if r.Seed != nil {
		return rand.New(rand.NewPCG(*r.Seed, *r.Seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Factory builds a policy from rules.
type Factory func(Rules) Policy

// Registry maps policy names to constructors.
type Registry map[string]Factory

// DefaultRegistry contains the built-in policies.
var DefaultRegistry = Registry{
	PolicyAllowList: func(r Rules) Policy { return NewAllowListPolicy(r.allowList()) },
	PolicyHeuristic: func(r Rules) Policy { return NewHeuristicPolicy(r.patterns(), r.source()) },
}

// Build instantiates the named policy.
func (r Registry) Build(name string, rules Rules) (Policy, error) {
	factory, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
	return factory(rules), nil
}

// Names returns the registered policy names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}
