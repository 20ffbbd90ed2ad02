package reputation

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	resp      Response
	expiresAt time.Time
}

// Cached remembers successful lookups of another Provider for a fixed TTL.
type Cached struct {
	next   Provider
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCached wraps next. A nil logger discards cache diagnostics.
func NewCached(next Provider, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cached{
		next:    next,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Name implements Provider.
func (c *Cached) Name() string {
	return c.next.Name()
}

// Lookup implements Provider. Errors are never cached.
func (c *Cached) Lookup(ctx context.Context, rawURL string) (*Response, error) {
	key := strings.TrimSpace(rawURL)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.now().Before(e.expiresAt) {
			c.mu.Unlock()
			c.logger.Debug("reputation cache hit", "provider", c.next.Name(), "url", key)
			resp := e.resp
			return &resp, nil
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	resp, err := c.next.Lookup(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{resp: *resp, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return resp, nil
}

// Len returns the number of cached entries, expired ones included.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
