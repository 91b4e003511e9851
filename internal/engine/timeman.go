package engine

import (
	"time"
)

// TimeManager tracks the time budget of one move.
type TimeManager struct {
	budget    time.Duration // zero means unlimited
	startTime time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new move under the given limits.
func (tm *TimeManager) Init(limits SearchLimits) {
	tm.startTime = time.Now()
	tm.budget = 0

	if limits.Infinite {
		return
	}

	tm.budget = limits.MoveTime
	// Leave some room for the caller to apply the move before the deadline.
	if tm.budget > 100*time.Millisecond {
		tm.budget -= tm.budget / 50
	}
}

// Budget returns the time allowed for this move, or zero if unlimited.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Remaining returns the time left before the budget runs out.
// Unlimited budgets report a negative duration.
func (tm *TimeManager) Remaining() time.Duration {
	if tm.budget == 0 {
		return -1
	}
	r := tm.budget - tm.Elapsed()
	if r < 0 {
		return 0
	}
	return r
}

// ShouldStop returns true once the budget is spent.
func (tm *TimeManager) ShouldStop() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}
