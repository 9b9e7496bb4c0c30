package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter grants a burst of tokens per key that refills at a
// steady rate. Suited to the pointer-event stream, where short bursts
// are normal but the sustained rate must stay bounded.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	burst      float64
	ratePerSec float64
	stop       chan struct{}
	stopOnce   sync.Once
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewTokenBucketLimiter creates a token bucket limiter allowing burst
// immediate requests per key and ratePerSec sustained.
func NewTokenBucketLimiter(burst int, ratePerSec float64) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets:    make(map[string]*bucket),
		burst:      float64(burst),
		ratePerSec: ratePerSec,
		stop:       make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

// Rate returns the sustained refill rate in events per second.
func (l *TokenBucketLimiter) Rate() float64 {
	return l.ratePerSec
}

// Allow consumes one token for the key if available.
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	}

	// fractional refill, so sub-second rates accumulate correctly
	b.tokens += now.Sub(b.lastSeen).Seconds() * l.ratePerSec
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Reset forgets the key's bucket.
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
	return nil
}

// Stop terminates the background eviction loop.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *TokenBucketLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Hour)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// SlidingWindowLimiter counts requests per key inside a rolling window.
// Used for the coarse per-IP and per-user HTTP limits.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
}

// NewSlidingWindowLimiter creates a limiter of limit requests per
// windowSize per key.
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
	}
}

// Allow records the request if the key is under its window limit.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-l.windowSize)

	l.mu.Lock()
	defer l.mu.Unlock()

	requests := l.windows[key]

	// prune in place; entries are appended in time order
	keep := 0
	for _, at := range requests {
		if at.After(windowStart) {
			requests[keep] = at
			keep++
		}
	}
	requests = requests[:keep]

	if len(requests) >= l.limit {
		l.windows[key] = requests
		return false, nil
	}

	l.windows[key] = append(requests, now)
	return true, nil
}

// Reset forgets the key's window.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// IPRateLimiter limits requests per client IP.
type IPRateLimiter struct {
	limiter RateLimiter
}

// NewIPRateLimiter creates an IP limiter of requestsPerMinute.
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute),
	}
}

// Allow checks whether a request from the IP may proceed.
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, "ip:"+ip)
}

// UserRateLimiter limits requests per authenticated user.
type UserRateLimiter struct {
	limiter RateLimiter
}

// NewUserRateLimiter creates a user limiter of requestsPerMinute.
func NewUserRateLimiter(requestsPerMinute int) *UserRateLimiter {
	return &UserRateLimiter{
		limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute),
	}
}

// Allow checks whether a request from the user may proceed.
func (l *UserRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.limiter.Allow(ctx, "user:"+userID)
}

// GestureRateLimiter bounds the pointer-event stream per canvas. Drags
// legitimately burst far above any per-minute HTTP budget, so they get
// a dedicated bucket instead of sharing the request limiter.
type GestureRateLimiter struct {
	limiter *TokenBucketLimiter
}

// NewGestureRateLimiter allows bursts of burst pointer events per
// canvas, refilling at eventsPerSecond.
func NewGestureRateLimiter(burst int, eventsPerSecond float64) *GestureRateLimiter {
	return &GestureRateLimiter{
		limiter: NewTokenBucketLimiter(burst, eventsPerSecond),
	}
}

// Allow checks whether another pointer event for the canvas may
// proceed.
func (l *GestureRateLimiter) Allow(ctx context.Context, canvasID string) (bool, error) {
	return l.limiter.Allow(ctx, "canvas:"+canvasID)
}

// Rate returns the sustained pointer-event budget per second.
func (l *GestureRateLimiter) Rate() float64 {
	return l.limiter.Rate()
}

// Stop terminates the underlying bucket eviction loop.
func (l *GestureRateLimiter) Stop() {
	l.limiter.Stop()
}
