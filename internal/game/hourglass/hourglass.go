package hourglass

import (
	"sync"
	"time"
)

// Default tuning values for the Hour-Glass Initiative system.
const (
	DefaultCapacity = 6
	DefaultInterval = time.Second

	// AbsoluteMaxCapacity bounds capacity growth from buff effects.
	AbsoluteMaxCapacity = 8
)

// HourGlass is a combatant's regenerating sand pool. Sand regenerates one
// grain per fixed real-time interval up to a fixed capacity, independent of
// how often or how irregularly Accrue is polled.
type HourGlass struct {
	mu sync.Mutex

	current  int
	capacity int
	interval time.Duration

	// lastUpdate marks the most recent whole-grain accounting point. It is
	// advanced by whole intervals only, so fractional progress toward the
	// next grain survives across Accrue calls.
	lastUpdate time.Time
}

// New creates an empty hourglass with the given capacity and regeneration
// interval, anchored at now. Non-positive capacity or interval fall back to
// the defaults.
func New(capacity int, interval time.Duration, now time.Time) *HourGlass {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > AbsoluteMaxCapacity {
		capacity = AbsoluteMaxCapacity
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &HourGlass{
		capacity:   capacity,
		interval:   interval,
		lastUpdate: now,
	}
}

// Current returns the current sand amount.
func (hg *HourGlass) Current() int {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	return hg.current
}

// Capacity returns the maximum sand amount.
func (hg *HourGlass) Capacity() int {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	return hg.capacity
}

// Interval returns the regeneration interval for one grain.
func (hg *HourGlass) Interval() time.Duration {
	return hg.interval
}

// CanAfford reports whether the pool holds at least cost grains.
func (hg *HourGlass) CanAfford(cost int) bool {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	return hg.current >= cost
}

// Spend attempts to spend cost grains. Returns true on success, false if
// the cost is invalid or unaffordable; on failure the pool is unchanged.
// There is no partial spend.
func (hg *HourGlass) Spend(cost int) bool {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	if cost < 0 || cost > hg.capacity {
		return false
	}
	if hg.current < cost {
		return false
	}
	hg.current -= cost
	return true
}

// Set overwrites the current sand amount, clamped to [0, capacity]. Used
// for non-time-based grants such as a card effect that gives sand.
func (hg *HourGlass) Set(amount int) {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	hg.current = clamp(amount, 0, hg.capacity)
}

// IncreaseCapacity raises the maximum sand amount by n. Returns false if
// the new capacity would exceed the absolute limit.
func (hg *HourGlass) IncreaseCapacity(n int) bool {
	hg.mu.Lock()
	defer hg.mu.Unlock()
	if n < 0 || hg.capacity+n > AbsoluteMaxCapacity {
		return false
	}
	hg.capacity += n
	return true
}

// Accrue regenerates whole grains based on the time elapsed since the last
// accounting point and returns how many grains were added.
//
// lastUpdate advances by regenerated*interval, not by the full elapsed
// time, so fractional progress toward the next grain is preserved: polling
// at any granularity produces the same end state as a single call with the
// total elapsed time.
func (hg *HourGlass) Accrue(now time.Time) int {
	hg.mu.Lock()
	defer hg.mu.Unlock()

	elapsed := now.Sub(hg.lastUpdate)
	if elapsed < hg.interval {
		return 0
	}

	grains := int(elapsed / hg.interval)
	hg.lastUpdate = hg.lastUpdate.Add(time.Duration(grains) * hg.interval)

	before := hg.current
	hg.current = clamp(hg.current+grains, 0, hg.capacity)
	return hg.current - before
}

// TimeUntilNext returns the time remaining until the next grain. The second
// return value is false when the pool is full and no further regeneration
// is meaningful.
func (hg *HourGlass) TimeUntilNext(now time.Time) (time.Duration, bool) {
	hg.mu.Lock()
	defer hg.mu.Unlock()

	if hg.current >= hg.capacity {
		return 0, false
	}
	remaining := hg.interval - now.Sub(hg.lastUpdate)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
