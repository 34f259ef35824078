package utils

import (
	"math/rand"
	"sync"
	"time"
)

// Pacer applies a randomized delay between network-issuing operations.
// The pipeline is strictly sequential, so one Pacer bounds the whole run's
// request rate.
type Pacer struct {
	min time.Duration
	max time.Duration
	rnd *rand.Rand
}

// NewPacer creates a Pacer sleeping a uniform random duration in [min, max].
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{
		min: min,
		max: max,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay returns the next randomized delay without sleeping.
func (p *Pacer) Delay() time.Duration {
	if p.max == p.min {
		return p.min
	}
	return p.min + time.Duration(p.rnd.Int63n(int64(p.max-p.min)+1))
}

// Wait sleeps for the next randomized delay.
func (p *Pacer) Wait() {
	time.Sleep(p.Delay())
}

// URLSet is a thread-safe set for tracking visited URLs.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been visited.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
