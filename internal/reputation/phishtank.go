package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/phishguard/internal/urlnorm"
)

const (
	DefaultEndpoint  = "http://checkurl.phishtank.com/checkurl/"
	DefaultUserAgent = "phishtank/phishguard"
	DefaultTimeout   = 15 * time.Second
)

// ErrRequestFailed is returned when the provider answers with a non-2xx status.
var ErrRequestFailed = errors.New("phishtank: request failed")

// PhishTankConfig configures the PhishTank provider.
type PhishTankConfig struct {
	Endpoint  string
	AppKey    string
	UserAgent string
	Timeout   time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// PhishTank queries the PhishTank checkurl API.
type PhishTank struct {
	endpoint  string
	appKey    string
	userAgent string
	client    *http.Client
}

// NewPhishTank returns a PhishTank provider with defaults filled in.
func NewPhishTank(cfg PhishTankConfig) *PhishTank {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &PhishTank{
		endpoint:  endpoint,
		appKey:    cfg.AppKey,
		userAgent: userAgent,
		client:    client,
	}
}

// Name implements Provider.
func (p *PhishTank) Name() string {
	return "phishtank"
}

// Endpoint returns the URL lookups are posted to.
func (p *PhishTank) Endpoint() string {
	return p.endpoint
}

// Lookup implements Provider.
func (p *PhishTank) Lookup(ctx context.Context, rawURL string) (*Response, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, urlnorm.ErrEmptyInput
	}

	form := url.Values{}
	form.Set("url", rawURL)
	form.Set("format", "json")
	if p.appKey != "" {
		form.Set("app_key", p.appKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("phishtank: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("phishtank: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("phishtank: decode response: %w", err)
	}
	return &out, nil
}
