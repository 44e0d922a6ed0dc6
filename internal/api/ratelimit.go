// Read budget for the unauthenticated observation endpoints. Each client
// address gets Limit GET requests per window; admin POSTs are not counted.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ReadLimiter hands out a fixed number of reads per client per window.
type ReadLimiter struct {
	budget int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*allowance

	stop     chan struct{}
	stopOnce sync.Once
}

type allowance struct {
	used  int
	since time.Time
}

// NewReadLimiter allows budget reads per client each window and sweeps idle
// clients every two windows until Close.
func NewReadLimiter(budget int, window time.Duration) *ReadLimiter {
	l := &ReadLimiter{
		budget:  budget,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*allowance),
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

func (l *ReadLimiter) sweepLoop() {
	t := time.NewTicker(2 * l.window)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

// Close stops the sweeper. Safe to call more than once.
func (l *ReadLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// take spends one read for client. It reports whether the read is allowed,
// the reads left in the window, and the seconds until the window turns over.
func (l *ReadLimiter) take(client string) (ok bool, left, retry int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, found := l.clients[client]
	if !found || now.Sub(a.since) >= l.window {
		a = &allowance{since: now}
		l.clients[client] = a
	}
	if a.used >= l.budget {
		return false, 0, int((l.window - now.Sub(a.since)).Seconds()) + 1
	}
	a.used++
	return true, l.budget - a.used, 0
}

// Remaining is the number of reads client has left in its current window.
func (l *ReadLimiter) Remaining(client string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.clients[client]
	if !ok || l.now().Sub(a.since) >= l.window {
		return l.budget
	}
	return l.budget - a.used
}

func (l *ReadLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	now := l.now()
	for c, a := range l.clients {
		if now.Sub(a.since) > 2*l.window {
			delete(l.clients, c)
			n++
		}
	}
	return n
}

// clientIP prefers the first X-Forwarded-For hop, then the remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// limitReads charges each request to its client's budget and answers 429
// with Retry-After once it is spent.
func limitReads(l *ReadLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, left, retry := l.take(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "read budget exhausted", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))
		next(w, r)
	}
}
