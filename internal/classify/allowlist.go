package classify

import "github.com/example/phishguard/internal/urlnorm"

const (
	allowedConfidence = 100
	deniedConfidence  = 95
)

// AllowListPolicy treats every hostname outside the allow-list as phishing.
// It is deterministic: the same input always yields the same verdict.
type AllowListPolicy struct {
	allow AllowList
}

// NewAllowListPolicy returns a policy backed by allow.
func NewAllowListPolicy(allow AllowList) *AllowListPolicy {
	return &AllowListPolicy{allow: allow}
}

// Name implements Policy.
func (p *AllowListPolicy) Name() string {
	return PolicyAllowList
}

// Classify implements Policy.
func (p *AllowListPolicy) Classify(raw string) CheckResult {
	host := urlnorm.Hostname(raw)
	if p.allow.Contains(host) {
		return NewResult(false, allowedConfidence, "Domain is on the verified safe list", "", true)
	}
	return NewResult(true, deniedConfidence,
		"Domain is not on the verified safe list and is treated as a potential threat",
		InferTarget(host), true)
}
