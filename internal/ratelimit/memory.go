package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	defaultPerMinute = 30
	defaultBurst     = 10
)

// Memory is a per-key token bucket kept in process memory.
type Memory struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	bucket map[string]*bucket
	now    func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewMemory(perMinute, burst int) *Memory {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Memory{
		rate:   float64(perMinute) / 60.0,
		burst:  float64(burst),
		bucket: make(map[string]*bucket),
		now:    time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.bucket[key]
	if !ok {
		m.bucket[key] = &bucket{tokens: m.burst - 1, last: now}
		return true, nil
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens = minFloat(m.burst, b.tokens+elapsed*m.rate)
	b.last = now
	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Sweep drops buckets idle since before cutoff and returns how many went.
func (m *Memory) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, b := range m.bucket {
		if b.last.Before(cutoff) {
			delete(m.bucket, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bucket)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
