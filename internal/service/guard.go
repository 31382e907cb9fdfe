package service

import (
	"sync"
	"time"

	"github.com/joshacw/chf-enquiries-map/internal/metrics"
)

// guardTTL is how long an instance's sequence state survives without a new
// fetch. Widget instances are minted per page load and never say goodbye, so
// idle entries are evicted instead of kept forever.
const guardTTL = 30 * time.Minute

type guardEntry struct {
	seq     uint64
	touched time.Time
}

// Guard is the request-generation guard for fetches that can be superseded
// before they resolve. Each widget instance gets a monotonically increasing
// sequence; a response whose sequence is no longer the latest issued for that
// instance is discarded instead of overwriting fresher view state.
//
// In-flight fetches are not cancelled; only their results are dropped at
// completion time.
type Guard struct {
	mu      sync.Mutex
	entries map[string]guardEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		entries: make(map[string]guardEntry),
		ttl:     guardTTL,
		now:     time.Now,
	}
}

// Begin registers a new fetch for the instance and returns its sequence
// number. Any earlier in-flight fetch for the same instance becomes stale.
// Entries idle past the TTL are evicted here, so the map size tracks active
// instances rather than lifetime page views.
func (g *Guard) Begin(instance string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, e := range g.entries {
		if now.Sub(e.touched) > g.ttl {
			delete(g.entries, key)
		}
	}

	e := g.entries[instance]
	e.seq++
	e.touched = now
	g.entries[instance] = e
	return e.seq
}

// Current returns the latest sequence issued for an instance, zero if none.
func (g *Guard) Current(instance string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.entries[instance].seq
}

// Stale reports whether a completed fetch has been superseded. An evicted
// instance reports stale, matching the TTL being far longer than any request.
// A stale result is also counted, since the caller is about to throw it away.
func (g *Guard) Stale(instance string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	stale := g.entries[instance].seq != seq
	if stale {
		metrics.StaleResponsesDiscarded.Inc()
	}
	return stale
}
