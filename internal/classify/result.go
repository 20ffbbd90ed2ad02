package classify

// UnknownTarget labels a phishing verdict whose impersonated brand could not be inferred.
const UnknownTarget = "Unknown"

// CheckResult is the verdict produced by a single check.
type CheckResult struct {
	IsPhishing bool   `json:"isPhishing"`
	Confidence int    `json:"confidence"`
	Details    string `json:"details"`
	Target     string `json:"target,omitempty"`
	Verified   bool   `json:"verified"`
}

// NewResult builds a CheckResult with confidence clamped to [0,100]. The
// target is kept only for phishing verdicts, and a phishing verdict always
// carries one.
func NewResult(phishing bool, confidence int, details, target string, verified bool) CheckResult {
	switch {
	case confidence < 0:
		confidence = 0
	case confidence > 100:
		confidence = 100
	}

	if !phishing {
		target = ""
	} else if target == "" {
		target = UnknownTarget
	}

	return CheckResult{
		IsPhishing: phishing,
		Confidence: confidence,
		Details:    details,
		Target:     target,
		Verified:   verified,
	}
}

// Verdict returns "phishing" or "safe".
func (r CheckResult) Verdict() string {
	if r.IsPhishing {
		return "phishing"
	}
	return "safe"
}
