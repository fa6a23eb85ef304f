// Package cache provides the bounded TTL cache behind the analytics memo and
// the janitor that sweeps expired entries in the background.
package cache

import (
	"context"
	"sync"
	"time"
)

// Sweepable is implemented by caches that can drop expired entries.
type Sweepable interface {
	CleanExpired() int
}

// Janitor periodically sweeps a set of caches.
type Janitor struct {
	mu      sync.Mutex
	targets []Sweepable
	onSweep func(removed int)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor calls onSweep, when non-nil, after every sweep that removed
// at least one entry.
func NewJanitor(onSweep func(removed int)) *Janitor {
	return &Janitor{onSweep: onSweep}
}

func (j *Janitor) Watch(c Sweepable) {
	j.mu.Lock()
	j.targets = append(j.targets, c)
	j.mu.Unlock()
}

// Sweep cleans every watched cache once and returns the number removed.
func (j *Janitor) Sweep() int {
	j.mu.Lock()
	targets := append([]Sweepable(nil), j.targets...)
	j.mu.Unlock()

	removed := 0
	for _, c := range targets {
		removed += c.CleanExpired()
	}
	if removed > 0 && j.onSweep != nil {
		j.onSweep(removed)
	}
	return removed
}

// Start sweeps every interval until Stop. Calling Start twice is a no-op.
func (j *Janitor) Start(interval time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the background loop and waits for it. Safe to call repeatedly,
// and before Start.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
