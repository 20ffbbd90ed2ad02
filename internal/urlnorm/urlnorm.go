// Package urlnorm turns free-form user input into a bare hostname.
package urlnorm

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrEmptyInput is returned by Validate for blank input.
	ErrEmptyInput = errors.New("please enter a URL to check")
	// ErrInvalidURL is returned by Validate when an absolute http(s) URL is required.
	ErrInvalidURL = errors.New("please enter a valid URL (e.g., https://example.com)")
)

var (
	schemeRegex   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	leadingRegex  = regexp.MustCompile(`(?i)^(?:[a-z][a-z0-9+.-]*://)?(?:www\.)?`)
	defaultScheme = "https://"
)

// HasScheme reports whether raw starts with a "scheme://" prefix.
func HasScheme(raw string) bool {
	return schemeRegex.MatchString(strings.TrimSpace(raw))
}

// Hostname extracts a best-effort hostname from raw. It never fails: input
// that does not parse as a URL is reduced by stripping a leading scheme and
// "www." and cutting at the first slash.
func Hostname(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !HasScheme(candidate) {
		candidate = defaultScheme + candidate
	}

	if u, err := url.Parse(candidate); err == nil && u.Hostname() != "" {
		return canonicalHost(u.Hostname())
	}

	stripped := leadingRegex.ReplaceAllString(trimmed, "")
	if idx := strings.Index(stripped, "/"); idx >= 0 {
		stripped = stripped[:idx]
	}
	return stripped
}

func canonicalHost(host string) string {
	host = strings.TrimRight(strings.ToLower(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

// RegistrableDomain returns the eTLD+1 of host, or host itself when the
// public suffix list has no answer (IP literals, single labels).
func RegistrableDomain(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// Validate applies the same input checks as the URL form: blank input is
// rejected, and with requireScheme the input must be an absolute http(s) URL.
func Validate(raw string, requireScheme bool) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ErrEmptyInput
	}
	if !requireScheme {
		return nil
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}
