package quota

import (
	"sync"
	"time"
)

// Tracker enforces daily and lifetime ceilings on metered token usage for
// the upstream AI provider. Counters live in process memory only and are
// lost on restart.
//
// All operations are mutex-serialized: gin runs handlers on concurrent
// goroutines, so the check-then-act pattern needs a single lock. Callers
// that gate an expensive upstream call should use Reserve before the call
// and Commit (or Release) after it, so two in-flight requests cannot both
// pass the gate and overshoot a ceiling together.
type Tracker struct {
	mu sync.Mutex

	totalUsed     int64
	dailyUsed     int64
	lastResetDate string // YYYY-MM-DD
	lastUpdated   time.Time

	totalLimit int64
	dailyLimit int64

	now func() time.Time
}

// Stats is a read-only snapshot of the tracker counters.
type Stats struct {
	TotalUsed      int64 `json:"totalUsed"`
	TotalLimit     int64 `json:"totalLimit"`
	DailyUsed      int64 `json:"dailyUsed"`
	DailyLimit     int64 `json:"dailyLimit"`
	RemainingTotal int64 `json:"remainingTotal"`
	RemainingDaily int64 `json:"remainingDaily"`
}

// NewTracker creates a tracker with the given ceilings.
func NewTracker(totalLimit, dailyLimit int64) *Tracker {
	return NewTrackerWithClock(totalLimit, dailyLimit, time.Now)
}

// NewTrackerWithClock creates a tracker with an injectable clock for tests.
func NewTrackerWithClock(totalLimit, dailyLimit int64, now func() time.Time) *Tracker {
	t := &Tracker{
		totalLimit: totalLimit,
		dailyLimit: dailyLimit,
		now:        now,
	}
	t.lastResetDate = dateOf(now())
	t.lastUpdated = now()
	return t
}

// CanUse reports whether the estimated usage fits under both ceilings.
// Pure predicate; no mutation besides the lazy daily reset. Usage exactly
// at a limit is allowed, one token over is not.
func (t *Tracker) CanUse(estimated int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	return t.fits(estimated)
}

// Record adds actual usage to both counters. Call it only after a
// successful upstream call, with the provider-reported cost (or the
// pre-call estimate when the provider does not report one).
func (t *Tracker) Record(actual int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	t.totalUsed += actual
	t.dailyUsed += actual
	t.lastUpdated = t.now()
}

// Reservation is a provisional charge handed out by Reserve. It remembers
// the day it was charged to, so a Commit or Release that lands after the
// daily reset does not subtract from the new day's counter.
type Reservation struct {
	amount int64
	day    string
}

// Reserve atomically checks both ceilings and provisionally charges the
// estimate. Returns ok=false (charging nothing) if the estimate does not fit.
func (t *Tracker) Reserve(estimated int64) (Reservation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	if !t.fits(estimated) {
		return Reservation{}, false
	}
	t.totalUsed += estimated
	t.dailyUsed += estimated
	t.lastUpdated = t.now()
	return Reservation{amount: estimated, day: t.lastResetDate}, true
}

// Commit replaces a reservation with the actual metered cost.
func (t *Tracker) Commit(r Reservation, actual int64) {
	t.settle(r, actual)
}

// Release backs out a reservation after a failed upstream call.
func (t *Tracker) Release(r Reservation) {
	t.settle(r, 0)
}

func (t *Tracker) settle(r Reservation, actual int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	t.totalUsed += actual - r.amount
	if t.totalUsed < 0 {
		t.totalUsed = 0
	}
	if t.lastResetDate == r.day {
		t.dailyUsed += actual - r.amount
	} else {
		// The daily reset already wiped the reservation; only the actual
		// cost belongs to the new day.
		t.dailyUsed += actual
	}
	if t.dailyUsed < 0 {
		t.dailyUsed = 0
	}
	t.lastUpdated = t.now()
}

// GetStats returns a snapshot of current usage.
func (t *Tracker) GetStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	return Stats{
		TotalUsed:      t.totalUsed,
		TotalLimit:     t.totalLimit,
		DailyUsed:      t.dailyUsed,
		DailyLimit:     t.dailyLimit,
		RemainingTotal: t.totalLimit - t.totalUsed,
		RemainingDaily: t.dailyLimit - t.dailyUsed,
	}
}

// Exhausted reports which ceiling blocks the given estimate: daily, total,
// or neither. Total exhaustion takes precedence in the reported reason.
func (t *Tracker) Exhausted(estimated int64) (total bool, daily bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetDailyIfNeeded()
	return t.totalUsed+estimated > t.totalLimit, t.dailyUsed+estimated > t.dailyLimit
}

func (t *Tracker) fits(estimated int64) bool {
	if t.totalUsed+estimated > t.totalLimit {
		return false
	}
	if t.dailyUsed+estimated > t.dailyLimit {
		return false
	}
	return true
}

// resetDailyIfNeeded lazily zeroes the daily counter on the first access of
// a new calendar day. Callers must hold t.mu.
func (t *Tracker) resetDailyIfNeeded() {
	today := dateOf(t.now())
	if t.lastResetDate != today {
		t.dailyUsed = 0
		t.lastResetDate = today
	}
}

func dateOf(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// Image analysis cost heuristic. Vision models with thinking mode enabled
// burn a large flat cost per image plus a size-dependent component; the
// estimate deliberately overshoots so a request cannot exceed quota
// mid-flight.
const (
	imageBaseCost     = 1500
	imagePerMBCost    = 300
	imageThinkingCost = 800
)

// EstimateImageTokens maps an upload size in bytes to an estimated token
// cost for one analysis call.
func EstimateImageTokens(sizeBytes int64) int64 {
	megabytes := (sizeBytes + 1024*1024 - 1) / (1024 * 1024)
	return imageBaseCost + megabytes*imagePerMBCost + imageThinkingCost
}
