package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/goldsniper/feeds"
	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE - Fixed-cadence driver
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow (one tick):
//   Feed → sanitize → Sniper.Evaluate → Router → {dashboard, telegram, journal}
//
// The sniper state lives here and is only touched by the loop goroutine. A
// failed or garbage price skips the sniper entirely and leaves state as is.
//
// ═══════════════════════════════════════════════════════════════════════════════

// ErrBadPrice marks a price the feed returned that cannot be used
var ErrBadPrice = errors.New("unusable price")

type Engine struct {
	mu sync.RWMutex

	// Components
	source   feeds.PriceSource
	sniper   *strategy.Sniper
	router   *Router
	health   *FeedHealth
	interval time.Duration

	// Loop-owned
	state strategy.State
	seq   uint64

	// Shared with readers (telegram commands)
	last     *types.Report
	ticks    uint64
	failures uint64
}

// NewEngine creates a new driver
func NewEngine(source feeds.PriceSource, sniper *strategy.Sniper, router *Router, interval time.Duration) *Engine {
	if router == nil {
		router = NewRouter()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Engine{
		source:   source,
		sniper:   sniper,
		router:   router,
		health:   NewFeedHealth(DefaultFeedDownAfter),
		interval: interval,
	}
}

// SetFeedDownAfter changes how many failed ticks in a row mark the feed down
func (e *Engine) SetFeedDownAfter(n int) {
	e.health = NewFeedHealth(n)
}

// Run ticks immediately, then every interval until ctx is done
func (e *Engine) Run(ctx context.Context) error {
	log.Info().
		Str("source", e.source.Name()).
		Dur("interval", e.interval).
		Str("trigger", e.sniper.Trigger().StringFixed(2)).
		Int("barriers", e.sniper.Barriers().Len()).
		Msg("⚡ Engine started")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Engine stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick fetches one price, evaluates it and routes the report
func (e *Engine) Tick(ctx context.Context) *types.Report {
	e.seq++
	report := &types.Report{
		Seq:      e.seq,
		Time:     time.Now(),
		Source:   e.source.Name(),
		Interval: e.interval,
	}

	raw, err := e.source.FetchPrice(ctx)
	if err == nil {
		var price decimal.Decimal
		price, err = sanitize(raw)
		if err == nil {
			result, next := e.sniper.Evaluate(e.state, price)
			e.state = next
			report.Available = true
			report.Price = price
			report.Result = &result
		}
	}

	if err != nil {
		report.Err = err
		report.Health = e.health.RecordFailure(err)
		log.Warn().Err(err).Str("source", report.Source).Msg("⚠️ Price unavailable, retrying next tick")
	} else {
		report.Health = e.health.RecordSuccess()
		log.Debug().
			Str("price", report.Price.StringFixed(2)).
			Str("status", report.Status().String()).
			Msg("tick")
	}

	e.mu.Lock()
	e.last = report
	e.ticks++
	if !report.Available {
		e.failures++
	}
	e.mu.Unlock()

	e.router.Route(report)
	return report
}

// sanitize rejects NaN, infinities and non-positive prices
func sanitize(raw float64) (decimal.Decimal, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrBadPrice, raw)
	}
	return decimal.NewFromFloat(raw), nil
}

// State returns the current latch state. Only safe from the loop goroutine or
// once Run has returned.
func (e *Engine) State() strategy.State {
	return e.state
}

// LastReport returns the most recent report, nil before the first tick
func (e *Engine) LastReport() *types.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Stats returns tick and failed-fetch counters
func (e *Engine) Stats() (ticks, failures uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticks, e.failures
}

// Health returns the feed breaker
func (e *Engine) Health() *FeedHealth {
	return e.health
}

// Sniper returns the strategy the engine drives
func (e *Engine) Sniper() *strategy.Sniper {
	return e.sniper
}
