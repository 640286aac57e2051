// Package ratelimit throttles mutating API requests per client address.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts requests per client within a fixed window and rejects
// clients that exceed the budget.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*window
	denied       int64
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	limit           int
	windowSize      time.Duration
	cleanupInterval time.Duration
}

type window struct {
	start    time.Time
	requests int
}

// Config holds limiter settings.
type Config struct {
	// Limit is the number of requests allowed per window.
	Limit int
	// Window is the counting interval.
	Window time.Duration
	// CleanupInterval controls how often stale clients are evicted.
	CleanupInterval time.Duration
}

// DefaultConfig allows 60 writes per minute per client.
func DefaultConfig() Config {
	return Config{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewLimiter starts a limiter with its background eviction loop.
func NewLimiter(config Config) *Limiter {
	if config.Limit <= 0 {
		config = DefaultConfig()
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	l := &Limiter{
		clients:         make(map[string]*window),
		stopCleanup:     make(chan struct{}),
		limit:           config.Limit,
		windowSize:      config.Window,
		cleanupInterval: config.CleanupInterval,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from clientIP fits in the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) > l.windowSize {
		l.clients[clientIP] = &window{start: now, requests: 1}
		return true
	}

	w.requests++
	if w.requests > l.limit {
		l.denied++
		return false
	}
	return true
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictStale()
		case <-l.stopCleanup:
			return
		}
	}
}

// evictStale drops clients whose window ended at least two windows ago.
func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-2 * l.windowSize)
	for ip, w := range l.clients {
		if w.start.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Stop terminates the eviction loop.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}

// Metrics reports limiter activity.
type Metrics struct {
	TrackedClients int64 `json:"tracked_clients"`
	DeniedRequests int64 `json:"denied_requests"`
}

// GetMetrics returns a snapshot of limiter activity.
func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Metrics{
		TrackedClients: int64(len(l.clients)),
		DeniedRequests: l.denied,
	}
}
