// Package ratelimit provides per-client request limiting on top of golang.org/x/time/rate.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int // burst size of the bucket, 0 when unlimited
	Remaining  int
	RetryAfter time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and route class.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter. A nil config uses the defaults with the
// environment ignored.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			RPS:             DefaultRPS,
			Burst:           DefaultBurst,
			CleanupInterval: DefaultCleanupInterval,
			IdleTTL:         DefaultIdleTTL,
		}
	}

	l := &Limiter{
		config:  config,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow reports whether a request from clientID to path may proceed.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] || unlimited(path, method) {
		return true, Info{Allowed: true}
	}

	class, limit, burst := l.classify(path, method)
	now := time.Now()
	lim := l.get(clientID+":"+class, limit, burst, now)

	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
		res.CancelAt(now)
		return false, Info{Limit: burst, RetryAfter: delay}
	}

	return true, Info{
		Allowed:   true,
		Limit:     burst,
		Remaining: max(0, int(lim.TokensAt(now))),
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func unlimited(path, method string) bool {
	return method == "GET" && (path == "/health" || path == "/metrics")
}

func (l *Limiter) classify(path, method string) (string, rate.Limit, int) {
	if method == "POST" && strings.HasSuffix(path, "/edits") && l.config.EditRPS > 0 {
		burst := l.config.EditBurst
		if burst <= 0 {
			burst = l.config.Burst
		}
		return "edit", rate.Limit(l.config.EditRPS), burst
	}
	return "default", rate.Limit(l.config.RPS), l.config.Burst
}

func (l *Limiter) get(key string, limit rate.Limit, burst int, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(limit, burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			l.evictIdle(now)
		case <-l.stop:
			return
		}
	}
}

// evictIdle drops buckets not used within the idle TTL before now.
func (l *Limiter) evictIdle(now time.Time) int {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	cutoff := now.Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			evicted++
		}
	}
	return evicted
}
