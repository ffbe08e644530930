package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FEED HEALTH - Circuit breaker over consecutive unavailable ticks
// ═══════════════════════════════════════════════════════════════════════════════
//
// The driver keeps retrying every tick no matter what; the breaker only decides
// when an outage is worth announcing. It trips after maxFailures ticks in a row
// without a usable price and resets on the first good one.
//
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultFeedDownAfter is the breaker threshold when none is configured
const DefaultFeedDownAfter = 5

type FeedHealth struct {
	mu sync.RWMutex

	maxFailures int

	consecutive int
	tripped     bool
	trippedAt   time.Time
	lastErr     error
}

// NewFeedHealth creates a breaker tripping after maxFailures bad ticks
func NewFeedHealth(maxFailures int) *FeedHealth {
	if maxFailures <= 0 {
		maxFailures = DefaultFeedDownAfter
	}
	return &FeedHealth{maxFailures: maxFailures}
}

// RecordFailure counts a tick without a price
func (h *FeedHealth) RecordFailure(err error) types.FeedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.consecutive++
	h.lastErr = err
	if h.tripped || h.consecutive < h.maxFailures {
		return types.FeedSteady
	}

	h.tripped = true
	h.trippedAt = time.Now()
	log.Warn().
		Err(err).
		Int("consecutive_failures", h.consecutive).
		Msg("🚨 FEED DOWN")
	return types.FeedDown
}

// RecordSuccess clears the failure streak
func (h *FeedHealth) RecordSuccess() types.FeedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	wasTripped := h.tripped
	h.consecutive = 0
	h.tripped = false
	h.lastErr = nil
	if !wasTripped {
		return types.FeedSteady
	}

	log.Info().Dur("outage", time.Since(h.trippedAt).Round(time.Second)).Msg("✅ Feed restored")
	return types.FeedRestored
}

// IsTripped returns current trip state
func (h *FeedHealth) IsTripped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tripped
}

// Stats returns the failure streak, trip state and last error
func (h *FeedHealth) Stats() (consecutive int, tripped bool, lastErr error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.consecutive, h.tripped, h.lastErr
}
