package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/web3guy0/goldsniper/barrier"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BARRIER SNIPER - Two-sided rejection/bounce latch
// ═══════════════════════════════════════════════════════════════════════════════
//
// Sell side watches the zone above price (resistance), buy side the zone below
// (support). Each side arms when price touches the zone's near edge and fires
// once price leaves the zone back the way it came:
//
//   SELL: arm at price >= lower, fire on price < lower (drop >= trigger → SIGNAL)
//   BUY:  arm at price <= upper, fire on price > upper (rise >= trigger → SIGNAL)
//
// Closing through the far edge disarms silently. Evaluate is pure: the caller
// owns State and threads it from tick to tick.
//
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultTrigger is the rejection/bounce size that turns a watch into a signal
var DefaultTrigger = decimal.NewFromFloat(2.00)

// SideState is the latch for one side
type SideState struct {
	Tracked *barrier.Range
	Armed   bool
}

// State is everything the sniper remembers between ticks
type State struct {
	Sell SideState
	Buy  SideState
}

// SideResult is what one side contributed this tick. Kind is KindScanning when
// the side had nothing to say.
type SideResult struct {
	Tracked   *barrier.Range
	Armed     bool
	Kind      Kind
	Magnitude decimal.Decimal
}

// Result is the display-ready outcome of a tick
type Result struct {
	Price             decimal.Decimal
	NearestResistance *barrier.Range
	NearestSupport    *barrier.Range
	Rows              []barrier.Row
	Sell              SideResult
	Buy               SideResult
	Status            Status
}

// Sniper evaluates prices against a fixed barrier set
type Sniper struct {
	barriers *barrier.Set
	trigger  decimal.Decimal
}

// NewSniper creates a sniper. A non-positive trigger falls back to DefaultTrigger.
func NewSniper(barriers *barrier.Set, trigger decimal.Decimal) *Sniper {
	if !trigger.IsPositive() {
		trigger = DefaultTrigger
	}
	return &Sniper{
		barriers: barriers,
		trigger:  trigger,
	}
}

// Name returns the strategy identifier
func (s *Sniper) Name() string { return "barrier_sniper" }

// Barriers returns the configured set
func (s *Sniper) Barriers() *barrier.Set { return s.barriers }

// Trigger returns the signal threshold
func (s *Sniper) Trigger() decimal.Decimal { return s.trigger }

// Evaluate runs one tick. The input state is not modified.
func (s *Sniper) Evaluate(state State, price decimal.Decimal) (Result, State) {
	result := Result{
		Price:             price,
		NearestResistance: s.barriers.NearestResistance(price),
		NearestSupport:    s.barriers.NearestSupport(price),
		Rows:              s.barriers.Classify(price),
	}

	next := State{}

	// Sell side first: it sees the buy side's previous claim on a zone
	next.Sell, result.Sell = s.evaluateSell(state.Sell, s.sellZone(state, price), price)
	next.Buy, result.Buy = s.evaluateBuy(state.Buy, s.buyZone(state, price), price)

	result.Status = combine(result.Sell, result.Buy)
	return result, next
}

// sellZone picks the range the sell side should track. A zone price sits in
// belongs to the sell side unless the buy side was already tracking it.
func (s *Sniper) sellZone(state State, price decimal.Decimal) *barrier.Range {
	if z := s.barriers.Containing(price); z != nil {
		if barrier.Same(z, state.Sell.Tracked) || !barrier.Same(z, state.Buy.Tracked) {
			return z
		}
	}
	return s.barriers.NearestResistance(price)
}

// buyZone picks the range the buy side should track. The buy side only keeps a
// zone price sits in if it was tracking that zone already.
func (s *Sniper) buyZone(state State, price decimal.Decimal) *barrier.Range {
	if z := s.barriers.Containing(price); z != nil && barrier.Same(z, state.Buy.Tracked) {
		return z
	}
	return s.barriers.NearestSupport(price)
}

func (s *Sniper) evaluateSell(st SideState, zone *barrier.Range, price decimal.Decimal) (SideState, SideResult) {
	if !barrier.Same(zone, st.Tracked) {
		st.Armed = false
		st.Tracked = zone
	}
	if st.Tracked == nil {
		return st, SideResult{Kind: KindScanning}
	}

	z := *st.Tracked
	if price.GreaterThanOrEqual(z.Lower) {
		st.Armed = true
	}

	kind := KindScanning
	magnitude := decimal.Zero
	if st.Armed {
		switch {
		case price.GreaterThan(z.Upper):
			// Closed through the zone: failed setup
			st.Armed = false
		case price.LessThan(z.Lower):
			magnitude = z.Lower.Sub(price)
			kind = KindSellWatch
			if magnitude.GreaterThanOrEqual(s.trigger) {
				kind = KindSellSignal
			}
		default:
			kind = KindInResistance
		}
	}

	return st, SideResult{Tracked: st.Tracked, Armed: st.Armed, Kind: kind, Magnitude: magnitude}
}

func (s *Sniper) evaluateBuy(st SideState, zone *barrier.Range, price decimal.Decimal) (SideState, SideResult) {
	if !barrier.Same(zone, st.Tracked) {
		st.Armed = false
		st.Tracked = zone
	}
	if st.Tracked == nil {
		return st, SideResult{Kind: KindScanning}
	}

	z := *st.Tracked
	if price.LessThanOrEqual(z.Upper) {
		st.Armed = true
	}

	kind := KindScanning
	magnitude := decimal.Zero
	if st.Armed {
		switch {
		case price.LessThan(z.Lower):
			st.Armed = false
		case price.GreaterThan(z.Upper):
			magnitude = price.Sub(z.Upper)
			kind = KindBuyWatch
			if magnitude.GreaterThanOrEqual(s.trigger) {
				kind = KindBuySignal
			}
		default:
			kind = KindInSupport
		}
	}

	return st, SideResult{Tracked: st.Tracked, Armed: st.Armed, Kind: kind, Magnitude: magnitude}
}

// combine folds both sides into one status. Buy signal/watch always win; the
// buy inside-zone status only shows when the sell side raised no alert.
func combine(sell, buy SideResult) Status {
	status := Status{Kind: KindScanning, Magnitude: decimal.Zero}
	if sell.Kind != KindScanning {
		status = Status{Kind: sell.Kind, Magnitude: sell.Magnitude}
	}

	switch buy.Kind {
	case KindBuySignal, KindBuyWatch:
		status = Status{Kind: buy.Kind, Magnitude: buy.Magnitude}
	case KindInSupport:
		if !status.Kind.IsSellAlert() {
			status = Status{Kind: buy.Kind, Magnitude: buy.Magnitude}
		}
	}
	return status
}
