// Package reputation queries third-party URL reputation services.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Provider looks a URL up in a remote reputation service.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, rawURL string) (*Response, error)
}

// Response is the raw answer of a reputation lookup, shaped after PhishTank's
// checkurl JSON.
type Response struct {
	Meta    Meta    `json:"meta"`
	Results Results `json:"results"`
}

// Meta describes the request on the provider side.
type Meta struct {
	Timestamp string `json:"timestamp,omitempty"`
	ServerID  string `json:"serverid,omitempty"`
	Status    string `json:"status,omitempty"`
	RequestID string `json:"requestid,omitempty"`
}

// Results holds what the provider knows about the URL.
type Results struct {
	URL             Field `json:"url"`
	InDatabase      Field `json:"in_database"`
	PhishID         Field `json:"phish_id,omitempty"`
	PhishDetailPage Field `json:"phish_detail_page,omitempty"`
	SubmissionTime  Field `json:"submission_time,omitempty"`
	Verified        Field `json:"verified,omitempty"`
	VerifiedAt      Field `json:"verified_at,omitempty"`
	Valid           Field `json:"valid,omitempty"`
	Online          Field `json:"online,omitempty"`
	Target          Field `json:"target,omitempty"`
}

// Field is a scalar that decodes from a JSON string, boolean, number or null.
// PhishTank reports flags as booleans in JSON and as "y"/"n" strings elsewhere.
type Field string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*f = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
	case trimmed == "true" || trimmed == "false":
		*f = Field(trimmed)
	default:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return fmt.Errorf("unsupported JSON value for field: %s", trimmed)
		}
		*f = Field(trimmed)
	}
	return nil
}

// String returns the raw value.
func (f Field) String() string {
	return string(f)
}

// Bool interprets the value as a flag.
func (f Field) Bool() bool {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "true", "y", "yes", "1":
		return true
	default:
		return false
	}
}
