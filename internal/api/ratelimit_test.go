package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a limiter whose time moves only when advanced.
func fakeClock(budget int, window time.Duration) (*ReadLimiter, func(time.Duration)) {
	l := NewReadLimiter(budget, window)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, func(d time.Duration) { now = now.Add(d) }
}

func TestReadBudgetPerWindow(t *testing.T) {
	l, advance := fakeClock(2, time.Minute)
	defer l.Close()

	ok, left, _ := l.take("a")
	assert.True(t, ok)
	assert.Equal(t, 1, left)
	ok, left, _ = l.take("a")
	assert.True(t, ok)
	assert.Zero(t, left)

	advance(20 * time.Second)
	ok, _, retry := l.take("a")
	assert.False(t, ok)
	assert.Equal(t, 41, retry)
	assert.Equal(t, 2, l.Remaining("b"), "budgets are per client")

	advance(40 * time.Second)
	assert.Equal(t, 2, l.Remaining("a"))
	ok, _, _ = l.take("a")
	assert.True(t, ok)
}

func TestSweepDropsIdleClients(t *testing.T) {
	l, advance := fakeClock(5, time.Minute)
	defer l.Close()

	l.take("a")
	advance(90 * time.Second)
	l.take("b")
	advance(40 * time.Second)

	assert.Equal(t, 1, l.sweep())
	assert.Equal(t, 0, l.sweep())
	assert.Equal(t, 4, l.Remaining("b"))
}

func TestLimitReadsHeaders(t *testing.T) {
	l, _ := fakeClock(1, time.Minute)
	defer l.Close()
	h := limitReads(l, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "61", rec.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestCloseIsIdempotent(t *testing.T) {
	l := NewReadLimiter(1, time.Second)
	l.Close()
	assert.NotPanics(t, l.Close)
}
