package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/goldsniper/strategy"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// Report is what the driver hands to every sink once per tick
type Report struct {
	Seq       uint64
	Time      time.Time
	Source    string
	Available bool // false when the feed failed or returned garbage
	Price     decimal.Decimal
	Result    *strategy.Result // nil when !Available
	Err       error            // why the price was unavailable
	Interval  time.Duration    // retry cadence, for the waiting banner
	Health    FeedEvent        // feed breaker transition on this tick
}

// FeedEvent marks the tick on which the feed was declared down or came back
type FeedEvent int

const (
	FeedSteady FeedEvent = iota
	FeedDown
	FeedRestored
)

// Status returns the combined status, or scanning when no result
func (r *Report) Status() strategy.Status {
	if r == nil || r.Result == nil {
		return strategy.Status{Kind: strategy.KindScanning}
	}
	return r.Result.Status
}

// SignalRecord is a status transition for display and persistence
type SignalRecord struct {
	Source    string
	Kind      strategy.Kind
	Severity  strategy.Severity
	Price     decimal.Decimal
	Magnitude decimal.Decimal
	Zone      string // "lower-upper" of the side's tracked range
	Timestamp time.Time
}

// NewSignalRecord builds a record from an available report
func NewSignalRecord(r *Report) SignalRecord {
	st := r.Status()
	rec := SignalRecord{
		Source:    r.Source,
		Kind:      st.Kind,
		Severity:  st.Severity(),
		Price:     r.Price,
		Magnitude: st.Magnitude,
		Timestamp: r.Time,
	}
	if r.Result != nil {
		switch st.Side() {
		case strategy.SideSell:
			if r.Result.Sell.Tracked != nil {
				rec.Zone = r.Result.Sell.Tracked.String()
			}
		case strategy.SideBuy:
			if r.Result.Buy.Tracked != nil {
				rec.Zone = r.Result.Buy.Tracked.String()
			}
		}
	}
	return rec
}
