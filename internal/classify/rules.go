package classify

import (
	"sort"
	"strings"

	"github.com/example/phishguard/internal/urlnorm"
)

// DefaultAllowList holds the verified safe domains.
var DefaultAllowList = []string{
	"google.com",
	"yahoo.com",
	"sih.gov.in",
}

// DefaultSuspiciousPatterns are brand-impersonation keywords and URL shorteners.
var DefaultSuspiciousPatterns = []string{
	"bit.ly",
	"tinyurl.com",
	"secure-bank-login",
	"paypal-verify",
	"amazon-security",
	"microsoft-account",
	"google-docs-share",
	"facebook-security",
}

// DefaultTargets are the services a phishing page is assumed to impersonate.
var DefaultTargets = []string{
	"Banking Services",
	"PayPal",
	"Microsoft",
	"Google",
	"Amazon",
	"Facebook",
	"Apple ID",
	"Government Services",
}

// brandKeywords is checked in order; the first keyword found in the host wins.
var brandKeywords = []struct {
	keyword string
	target  string
}{
	{"paypal", "PayPal"},
	{"amazon", "Amazon"},
	{"microsoft", "Microsoft"},
	{"office365", "Microsoft"},
	{"outlook", "Microsoft"},
	{"google", "Google"},
	{"facebook", "Facebook"},
	{"apple", "Apple ID"},
	{"icloud", "Apple ID"},
	{"bank", "Banking Services"},
	{"gov", "Government Services"},
}

// InferTarget guesses the impersonated brand from keywords in host.
func InferTarget(host string) string {
	host = strings.ToLower(host)
	for _, b := range brandKeywords {
		if strings.Contains(host, b.keyword) {
			return b.target
		}
	}
	return UnknownTarget
}

// AllowList is an immutable set of exact-match hostnames.
type AllowList struct {
	hosts map[string]struct{}
}

// NewAllowList normalizes entries into a set. Blank entries are dropped.
func NewAllowList(entries ...string) AllowList {
	hosts := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if h := urlnorm.Hostname(e); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return AllowList{hosts: hosts}
}

// Contains reports whether host is exactly one of the allowed hostnames.
func (a AllowList) Contains(host string) bool {
	_, ok := a.hosts[host]
	return ok
}

// Len returns the number of entries.
func (a AllowList) Len() int {
	return len(a.hosts)
}

// Entries returns the hostnames in sorted order.
func (a AllowList) Entries() []string {
	out := make([]string, 0, len(a.hosts))
	for h := range a.hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// PatternSet is an immutable list of lower-cased substrings.
type PatternSet struct {
	patterns []string
}

// NewPatternSet lower-cases and de-duplicates patterns.
func NewPatternSet(patterns ...string) PatternSet {
	seen := make(map[string]struct{}, len(patterns))
	var out []string
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return PatternSet{patterns: out}
}

// Match returns the first pattern contained in raw, compared case-insensitively.
func (s PatternSet) Match(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, p := range s.patterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// Len returns the number of patterns.
func (s PatternSet) Len() int {
	return len(s.patterns)
}
