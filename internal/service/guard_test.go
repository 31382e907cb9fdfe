package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard_LatestFetchWins(t *testing.T) {
	g := NewGuard()

	first := g.Begin("widget-1")
	second := g.Begin("widget-1")

	// The older in-flight fetch resolves after the newer one was issued.
	assert.True(t, g.Stale("widget-1", first))
	assert.False(t, g.Stale("widget-1", second))
}

func TestGuard_InstancesAreIndependent(t *testing.T) {
	g := NewGuard()

	a := g.Begin("widget-a")
	b := g.Begin("widget-b")

	assert.False(t, g.Stale("widget-a", a))
	assert.False(t, g.Stale("widget-b", b))

	g.Begin("widget-a")
	assert.True(t, g.Stale("widget-a", a))
	assert.False(t, g.Stale("widget-b", b))
}

func TestGuard_CurrentTracksLatest(t *testing.T) {
	g := NewGuard()

	assert.Equal(t, uint64(0), g.Current("widget-1"))

	g.Begin("widget-1")
	seq := g.Begin("widget-1")
	assert.Equal(t, seq, g.Current("widget-1"))
}

func TestGuard_EvictsIdleInstances(t *testing.T) {
	g := NewGuard()

	clock := time.Now()
	g.now = func() time.Time { return clock }

	g.Begin("widget-old")
	g.Begin("widget-fresh")
	assert.Len(t, g.entries, 2)

	// widget-fresh keeps fetching; widget-old goes idle past the TTL.
	clock = clock.Add(g.ttl + time.Minute)
	g.Begin("widget-fresh")

	assert.Len(t, g.entries, 1)
	assert.Equal(t, uint64(0), g.Current("widget-old"))
	assert.Equal(t, uint64(2), g.Current("widget-fresh"))
}

func TestGuard_SizeBoundedByActiveInstances(t *testing.T) {
	g := NewGuard()

	clock := time.Now()
	g.now = func() time.Time { return clock }

	// A long parade of one-shot page loads, each minting a new instance.
	for i := 0; i < 1000; i++ {
		g.Begin(string(rune('a'+i%26)) + string(rune('0'+i%10)))
		clock = clock.Add(g.ttl / 4)
	}

	// Only instances touched within the last TTL survive.
	assert.LessOrEqual(t, len(g.entries), 5)
}

func TestGuard_ConcurrentBegins(t *testing.T) {
	g := NewGuard()

	const n = 64
	var wg sync.WaitGroup
	seqs := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seqs[i] = g.Begin("widget-1")
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	var max uint64
	for _, s := range seqs {
		assert.False(t, seen[s], "sequence %d issued twice", s)
		seen[s] = true
		if s > max {
			max = s
		}
	}
	assert.Equal(t, uint64(n), max)

	stale := 0
	for _, s := range seqs {
		if g.Stale("widget-1", s) {
			stale++
		}
	}
	assert.Equal(t, n-1, stale, "exactly one fetch may remain current")
}
