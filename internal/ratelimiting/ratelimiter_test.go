package ratelimiting

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedRateLimiter struct {
	consumeFunc func(key string) bool
}

func (m *mockedRateLimiter) Consume(key string) bool {
	return m.consumeFunc(key)
}

func TestTokenBucketRateLimiter(t *testing.T) {
	t.Parallel()

	// No refill to keep the test deterministic
	rateLimiter, stop := NewTokenBucketRateLimiter(0, 2)
	defer stop()

	require.True(t, rateLimiter.Consume("player2"))

	// Burst of 2
	require.True(t, rateLimiter.Consume("player1"))
	require.True(t, rateLimiter.Consume("player1"))
	require.False(t, rateLimiter.Consume("player1"))

	// Separate buckets per key
	require.True(t, rateLimiter.Consume("player3"))
	require.True(t, rateLimiter.Consume("player3"))
	require.False(t, rateLimiter.Consume("player3"))

	require.True(t, rateLimiter.Consume("player2"))
	require.False(t, rateLimiter.Consume("player2"))
}

func TestIPKeyFunc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		remoteAddr string
		key        string
	}{
		{remoteAddr: "123.123.123.123", key: "ip: 123.123.123.123"},
		{remoteAddr: "123.123.123.123:4567", key: "ip: 123.123.123.123"},
		{remoteAddr: "[2001:db8::1]:4567", key: "ip: [2001:db8::1]"},
		{remoteAddr: "[2001:db8::1]", key: "ip: [2001:db8::1]"},
	}

	for _, c := range cases {
		t.Run(c.remoteAddr, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.key, IPKeyFunc(&http.Request{RemoteAddr: c.remoteAddr}))
		})
	}
}

func TestPlayerIDKeyFunc(t *testing.T) {
	t.Parallel()

	request := &http.Request{}
	assert.Equal(t, "player-id: <missing>", PlayerIDKeyFunc(request))

	request.SetPathValue("playerID", "abc_123")
	assert.Equal(t, "player-id: abc_123", PlayerIDKeyFunc(request))
}

func TestRequestBasedRateLimiter(t *testing.T) {
	t.Parallel()

	var expectedKey string
	var allowed bool
	rateLimiter := &mockedRateLimiter{
		consumeFunc: func(key string) bool {
			t.Helper()
			assert.Equal(t, expectedKey, key)
			return allowed
		},
	}
	requestRateLimiter := NewRequestBasedRateLimiter(rateLimiter, IPKeyFunc)

	expectedKey = "ip: 1.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))

	expectedKey = "ip: 2.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "2.1.1.1"}))
	assert.Equal(t, "ip: 2.1.1.1", requestRateLimiter.KeyFor(&http.Request{RemoteAddr: "2.1.1.1"}))
}
