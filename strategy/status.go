package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Side identifies which half of the sniper produced a status
type Side int

const (
	SideNone Side = iota
	SideSell      // resistance
	SideBuy       // support
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "SELL"
	case SideBuy:
		return "BUY"
	default:
		return "NONE"
	}
}

// Kind is the classification a tick produced
type Kind int

const (
	KindScanning Kind = iota
	KindSellSignal
	KindSellWatch
	KindInResistance
	KindBuySignal
	KindBuyWatch
	KindInSupport
)

func (k Kind) String() string {
	switch k {
	case KindSellSignal:
		return "SELL_SIGNAL"
	case KindSellWatch:
		return "SELL_WATCH"
	case KindInResistance:
		return "IN_RESISTANCE"
	case KindBuySignal:
		return "BUY_SIGNAL"
	case KindBuyWatch:
		return "BUY_WATCH"
	case KindInSupport:
		return "IN_SUPPORT"
	default:
		return "SCANNING"
	}
}

// Side returns the side a kind belongs to
func (k Kind) Side() Side {
	switch k {
	case KindSellSignal, KindSellWatch, KindInResistance:
		return SideSell
	case KindBuySignal, KindBuyWatch, KindInSupport:
		return SideBuy
	default:
		return SideNone
	}
}

// IsSellAlert reports a sell signal or sell watch. Only these suppress the
// buy side's inside-zone status.
func (k Kind) IsSellAlert() bool {
	return k == KindSellSignal || k == KindSellWatch
}

// Actionable reports signal or watch kinds on either side
func (k Kind) Actionable() bool {
	switch k {
	case KindSellSignal, KindSellWatch, KindBuySignal, KindBuyWatch:
		return true
	}
	return false
}

// Severity is the display tier of a status
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityWatch
	SeverityWarning // inside a zone
	SeveritySignal
)

func (s Severity) String() string {
	switch s {
	case SeverityWatch:
		return "watch"
	case SeverityWarning:
		return "warning"
	case SeveritySignal:
		return "signal"
	default:
		return "neutral"
	}
}

// Severity maps a kind to its display tier
func (k Kind) Severity() Severity {
	switch k {
	case KindSellSignal, KindBuySignal:
		return SeveritySignal
	case KindSellWatch, KindBuyWatch:
		return SeverityWatch
	case KindInResistance, KindInSupport:
		return SeverityWarning
	default:
		return SeverityNeutral
	}
}

// Status is the combined per-tick message. Magnitude is the drop (sell) or
// rise (buy) away from the zone for signal and watch kinds, zero otherwise.
type Status struct {
	Kind      Kind
	Magnitude decimal.Decimal
}

// Side of the status
func (s Status) Side() Side { return s.Kind.Side() }

// Severity of the status
func (s Status) Severity() Severity { return s.Kind.Severity() }

// Title is the headline shown in the signal box
func (s Status) Title() string {
	switch s.Kind {
	case KindSellSignal:
		return "🚨 SELL SIGNAL 🚨"
	case KindSellWatch:
		return "📉 SELL WATCH"
	case KindInResistance:
		return "⚠️ IN RESISTANCE ZONE"
	case KindBuySignal:
		return "🚀 BUY SIGNAL 🚀"
	case KindBuyWatch:
		return "📈 BUY WATCH"
	case KindInSupport:
		return "⚠️ IN SUPPORT ZONE"
	default:
		return "SCANNING MARKET..."
	}
}

// Detail lines under the title, empty for statuses without a magnitude
func (s Status) Detail() []string {
	pts := s.Magnitude.StringFixed(2) + " pts"
	switch s.Kind {
	case KindSellSignal:
		return []string{"REJECTION CONFIRMED", "Drop: " + pts}
	case KindSellWatch:
		return []string{"Retesting Zone...", "Drop: " + pts}
	case KindBuySignal:
		return []string{"BOUNCE CONFIRMED", "Rise: " + pts}
	case KindBuyWatch:
		return []string{"Retesting Zone...", "Rise: " + pts}
	default:
		return nil
	}
}

func (s Status) String() string {
	if s.Kind.Actionable() {
		return fmt.Sprintf("%s (%s pts)", s.Kind, s.Magnitude.StringFixed(2))
	}
	return s.Kind.String()
}
