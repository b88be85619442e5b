package apikey

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// windowSeconds is the rate limiter's rolling-window width (spec §4.H
// "reset at 60s").
const windowSeconds = 60

// limiter holds one API key's live counters. All fields are lock-free so
// AddActiveSub/RemoveActiveSub/CheckRateLimit never block each other or
// the connection handling goroutine that owns them.
type limiter struct {
	currentSubscriptions *atomic.Uint64
	requestsThisMinute   *atomic.Uint64
	minuteStartTime      *atomic.Int64
}

func newLimiter(now time.Time) *limiter {
	return &limiter{
		currentSubscriptions: atomic.NewUint64(0),
		requestsThisMinute:   atomic.NewUint64(0),
		minuteStartTime:      atomic.NewInt64(now.Unix()),
	}
}

// recordRequest advances the rolling window and returns the request count
// within it, exactly mirroring the original's record_request: if the
// window has elapsed the counter resets to 1 and the window start moves
// to now, otherwise the counter increments.
func (l *limiter) recordRequest(now time.Time) uint64 {
	current := now.Unix()
	start := l.minuteStartTime.Load()
	if current-start >= windowSeconds {
		l.requestsThisMinute.Store(1)
		l.minuteStartTime.Store(current)
		return 1
	}
	return l.requestsThisMinute.Add(1)
}

// addSub increments the subscription count and returns the new total.
func (l *limiter) addSub() uint64 {
	return l.currentSubscriptions.Add(1)
}

// removeSub decrements the subscription count, saturating at zero (spec
// §4.H "saturating-decrement, never below zero") instead of wrapping.
func (l *limiter) removeSub() {
	for {
		cur := l.currentSubscriptions.Load()
		if cur == 0 {
			return
		}
		if l.currentSubscriptions.CAS(cur, cur-1) {
			return
		}
	}
}

// Controller is the process-wide per-key limiter registry (spec §4.H).
// One Controller is shared by pkg/wsserver (subscription admission) and
// pkg/httpmw (HTTP request admission).
type Controller struct {
	mu       sync.RWMutex
	limiters map[string]*limiter
	now      func() time.Time
}

// NewController builds an empty Controller.
func NewController() *Controller {
	return NewControllerWithClock(time.Now)
}

// NewControllerWithClock builds a Controller driven by now instead of
// wall-clock time, so tests can exercise the 60s rolling-window reset (spec
// §8 scenario 5) without sleeping.
func NewControllerWithClock(now func() time.Time) *Controller {
	return &Controller{
		limiters: make(map[string]*limiter),
		now:      now,
	}
}

func (c *Controller) getOrCreate(keyID string) *limiter {
	c.mu.RLock()
	l, ok := c.limiters[keyID]
	c.mu.RUnlock()
	if ok {
		return l
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[keyID]; ok {
		return l
	}
	l = newLimiter(c.now())
	c.limiters[keyID] = l
	return l
}

// AddActiveSub records a new live subscription for keyID, returning its
// post-increment count without checking it against role's cap — callers
// check capacity with CheckSubscriptions before subscribing and call this
// only once admission succeeds.
func (c *Controller) AddActiveSub(keyID string) uint64 {
	return c.getOrCreate(keyID).addSub()
}

// RemoveActiveSub releases one of keyID's live subscriptions (e.g. on
// unsubscribe or connection close).
func (c *Controller) RemoveActiveSub(keyID string) {
	c.getOrCreate(keyID).removeSub()
}

// CheckSubscriptions reports whether keyID (with the given role) may open
// one more concurrent subscription, returning the count that would result
// if admitted. It does not mutate state — the caller calls AddActiveSub
// only after actually admitting the subscription.
func (c *Controller) CheckSubscriptions(keyID string, role Role) (uint64, error) {
	l := c.getOrCreate(keyID)
	next := l.currentSubscriptions.Load() + 1
	if !limitsFor(role).validateSubscriptions(next) {
		return next, apperrors.New(apperrors.KindSubscriptionLimitExceeded, "subscription limit exceeded for role "+string(role))
	}
	return next, nil
}

// CheckRateLimit records one request against keyID's rolling window and
// reports whether role's per-minute cap still allows it.
func (c *Controller) CheckRateLimit(keyID string, role Role) (uint64, error) {
	l := c.getOrCreate(keyID)
	count := l.recordRequest(c.now())
	if !limitsFor(role).validateRequests(count) {
		return count, apperrors.New(apperrors.KindRateLimitExceeded, "rate limit exceeded for role "+string(role))
	}
	return count, nil
}
