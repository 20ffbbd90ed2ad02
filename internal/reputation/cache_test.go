package reputation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Lookup(ctx context.Context, rawURL string) (*Response, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &Response{Results: Results{URL: Field(rawURL), InDatabase: "false"}}, nil
}

func TestCachedServesRepeatLookups(t *testing.T) {
	next := &countingProvider{}
	c := NewCached(next, time.Minute, nil)

	first, err := c.Lookup(context.Background(), "https://a.test")
	require.NoError(t, err)
	second, err := c.Lookup(context.Background(), " https://a.test ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.Results.URL, second.Results.URL)
	assert.Equal(t, "counting", c.Name())
	assert.Equal(t, 1, c.Len())
}

func TestCachedExpiresEntries(t *testing.T) {
	next := &countingProvider{}
	c := NewCached(next, time.Minute, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Lookup(context.Background(), "https://a.test")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Lookup(context.Background(), "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	next := &countingProvider{err: errors.New("boom")}
	c := NewCached(next, time.Minute, nil)

	_, err := c.Lookup(context.Background(), "https://a.test")
	require.Error(t, err)
	_, err = c.Lookup(context.Background(), "https://a.test")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, c.Len())
}

func TestCachedReturnsCopies(t *testing.T) {
	c := NewCached(&countingProvider{}, time.Minute, nil)
	first, err := c.Lookup(context.Background(), "https://a.test")
	require.NoError(t, err)
	first.Results.Target = "mutated"

	second, err := c.Lookup(context.Background(), "https://a.test")
	require.NoError(t, err)
	assert.Empty(t, second.Results.Target)
}
