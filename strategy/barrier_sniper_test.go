package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/goldsniper/barrier"
)

func px(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func rng(lo, hi float64) *barrier.Range {
	r := barrier.NewRange(lo, hi)
	return &r
}

func newSniper(t *testing.T, ranges ...barrier.Range) *Sniper {
	t.Helper()
	set, err := barrier.NewSet(ranges...)
	require.NoError(t, err)
	return NewSniper(set, px(2.0))
}

// run feeds prices through the sniper and returns every result
func run(s *Sniper, state State, prices ...float64) ([]Result, State) {
	results := make([]Result, 0, len(prices))
	for _, p := range prices {
		var r Result
		r, state = s.Evaluate(state, px(p))
		results = append(results, r)
	}
	return results, state
}

func TestSellWatchThenSignal(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))
	state := State{Sell: SideState{Tracked: rng(100, 105)}}

	results, state := run(s, state, 100, 103, 99, 97)

	assert.Equal(t, KindInResistance, results[0].Status.Kind, "touch arms")
	assert.True(t, results[0].Sell.Armed)
	assert.Equal(t, KindInResistance, results[1].Status.Kind)

	assert.Equal(t, KindSellWatch, results[2].Status.Kind)
	assert.True(t, results[2].Status.Magnitude.Equal(px(1)))

	assert.Equal(t, KindSellSignal, results[3].Status.Kind)
	assert.True(t, results[3].Status.Magnitude.Equal(px(3)))
	assert.Equal(t, SeveritySignal, results[3].Status.Severity())

	assert.True(t, state.Sell.Armed, "latch stays armed while below the zone")
}

func TestSellSignalBoundaryInclusive(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))

	results, _ := run(s, State{}, 95, 101, 98.01, 98)
	assert.Equal(t, KindScanning, results[0].Status.Kind, "approach is not armed")
	assert.Equal(t, KindInResistance, results[1].Status.Kind)
	assert.Equal(t, KindSellWatch, results[2].Status.Kind)
	assert.Equal(t, KindSellSignal, results[3].Status.Kind)
}

func TestBuyScenario(t *testing.T) {
	s := newSniper(t, barrier.NewRange(90, 95))
	state := State{Buy: SideState{Tracked: rng(90, 95)}}

	results, _ := run(s, state, 95, 92, 97, 96.5)

	assert.Equal(t, KindInSupport, results[0].Status.Kind)
	assert.True(t, results[0].Buy.Armed)
	assert.Equal(t, KindInSupport, results[1].Status.Kind)

	assert.Equal(t, KindBuySignal, results[2].Status.Kind, "rise of exactly 2.0 confirms")
	assert.True(t, results[2].Status.Magnitude.Equal(px(2)))

	assert.Equal(t, KindBuyWatch, results[3].Status.Kind)
	assert.True(t, results[3].Status.Magnitude.Equal(px(1.5)))
}

func TestBuyFromColdApproach(t *testing.T) {
	s := newSniper(t, barrier.NewRange(90, 95))

	results, state := run(s, State{}, 99, 94, 95.5)
	assert.Equal(t, KindScanning, results[0].Status.Kind)
	assert.True(t, barrier.Same(rng(90, 95), results[0].Buy.Tracked))
	assert.False(t, results[0].Buy.Armed)

	assert.Equal(t, KindInSupport, results[1].Status.Kind)
	assert.Equal(t, KindBuyWatch, results[2].Status.Kind)
	assert.True(t, state.Buy.Armed)
}

func TestArmingIsIdempotent(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))
	state := State{Sell: SideState{Tracked: rng(100, 105), Armed: true}}

	for i := 0; i < 5; i++ {
		var r Result
		r, state = s.Evaluate(state, px(99))
		assert.True(t, state.Sell.Armed)
		assert.Equal(t, KindSellWatch, r.Status.Kind)
	}

	for i := 0; i < 5; i++ {
		_, state = s.Evaluate(state, px(102))
		assert.True(t, state.Sell.Armed)
	}
}

func TestRangeSwitchResetsArming(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105), barrier.NewRange(110, 115))
	state := State{Sell: SideState{Tracked: rng(100, 105), Armed: true}}

	r, next := s.Evaluate(state, px(107))
	assert.True(t, barrier.Same(rng(110, 115), next.Sell.Tracked))
	assert.False(t, next.Sell.Armed)
	assert.Equal(t, KindScanning, r.Sell.Kind)

	// Same on the buy side
	state = State{Buy: SideState{Tracked: rng(110, 115), Armed: true}}
	_, next = s.Evaluate(state, px(108))
	assert.True(t, barrier.Same(rng(100, 105), next.Buy.Tracked))
	assert.False(t, next.Buy.Armed)
}

func TestBreakThroughDisarmsSilently(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))
	state := State{Sell: SideState{Tracked: rng(100, 105), Armed: true}}

	r, next := s.Evaluate(state, px(106))
	assert.False(t, next.Sell.Armed)
	assert.False(t, r.Status.Kind.IsSellAlert())
	assert.NotEqual(t, SideSell, r.Status.Side())

	// Buy side mirror: close below support
	state = State{Buy: SideState{Tracked: rng(100, 105), Armed: true}}
	r, next = s.Evaluate(state, px(99))
	assert.False(t, next.Buy.Armed)
	assert.NotEqual(t, SideBuy, r.Status.Side())
}

func TestDirectFarEdgeDisarm(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))

	// Tracked range kept, price over the far edge
	st, res := s.evaluateSell(SideState{Tracked: rng(100, 105), Armed: true}, rng(100, 105), px(106))
	assert.False(t, st.Armed)
	assert.Equal(t, KindScanning, res.Kind)

	st, res = s.evaluateBuy(SideState{Tracked: rng(100, 105), Armed: true}, rng(100, 105), px(99))
	assert.False(t, st.Armed)
	assert.Equal(t, KindScanning, res.Kind)
}

func TestEndToEndInsideTopZone(t *testing.T) {
	s := newSniper(t, barrier.NewRange(4551, 4570), barrier.NewRange(4380, 4400))

	r, state := s.Evaluate(State{}, px(4560))

	assert.Nil(t, r.NearestResistance)
	assert.True(t, barrier.Same(rng(4380, 4400), r.NearestSupport))
	assert.Equal(t, KindInResistance, r.Sell.Kind)
	assert.Equal(t, KindScanning, r.Buy.Kind)
	assert.Equal(t, KindInResistance, r.Status.Kind)
	assert.Equal(t, SeverityWarning, r.Status.Severity())

	assert.True(t, barrier.Same(rng(4551, 4570), state.Sell.Tracked))
	assert.True(t, barrier.Same(rng(4380, 4400), state.Buy.Tracked))

	require.Len(t, r.Rows, 2)
	assert.Equal(t, barrier.LabelInside, r.Rows[0].Label)
	assert.Equal(t, barrier.LabelSupport, r.Rows[1].Label)
}

func TestInsideZoneReportedByExactlyOneSide(t *testing.T) {
	s := newSniper(t, barrier.DefaultRanges()...)
	for _, z := range s.Barriers().Ranges() {
		mid := z.Lower.Add(z.Width().Div(px(2)))
		r, _ := s.Evaluate(State{}, mid)

		inside := 0
		if r.Sell.Kind == KindInResistance {
			inside++
		}
		if r.Buy.Kind == KindInSupport {
			inside++
		}
		assert.Equal(t, 1, inside, "zone %s", z)
		assert.Nil(t, sameOrNil(r.NearestResistance, z))
		assert.Nil(t, sameOrNil(r.NearestSupport, z))
	}
}

func sameOrNil(r *barrier.Range, z barrier.Range) *barrier.Range {
	if r != nil && r.Equal(z) {
		return r
	}
	return nil
}

func TestBuyInsideSuppressedOnlyBySellAlert(t *testing.T) {
	// Sell watch on the upper zone while price retests the lower zone from inside
	sell := SideResult{Kind: KindSellWatch, Magnitude: px(1)}
	buyInside := SideResult{Kind: KindInSupport}
	assert.Equal(t, KindSellWatch, combine(sell, buyInside).Kind)

	sell = SideResult{Kind: KindSellSignal, Magnitude: px(3)}
	assert.Equal(t, KindSellSignal, combine(sell, buyInside).Kind)

	// Inside resistance does not suppress the buy side
	sell = SideResult{Kind: KindInResistance}
	assert.Equal(t, KindInSupport, combine(sell, buyInside).Kind)

	// Buy signal/watch always win
	sell = SideResult{Kind: KindSellSignal, Magnitude: px(3)}
	assert.Equal(t, KindBuyWatch, combine(sell, SideResult{Kind: KindBuyWatch, Magnitude: px(1)}).Kind)
	assert.Equal(t, KindBuySignal, combine(sell, SideResult{Kind: KindBuySignal, Magnitude: px(2)}).Kind)

	assert.Equal(t, KindScanning, combine(SideResult{}, SideResult{}).Kind)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105))
	tracked := rng(100, 105)
	state := State{Sell: SideState{Tracked: tracked}}

	_, next := s.Evaluate(state, px(101))
	assert.False(t, state.Sell.Armed)
	assert.True(t, next.Sell.Armed)
	assert.True(t, tracked.Equal(barrier.NewRange(100, 105)))
}

func TestZoneBelongsToApproachSide(t *testing.T) {
	s := newSniper(t, barrier.NewRange(100, 105), barrier.NewRange(120, 125))

	// Coming down from above, (100,105) is support and stays with the buy side
	results, state := run(s, State{}, 110, 104)
	assert.Equal(t, KindScanning, results[0].Status.Kind)
	assert.Equal(t, KindInSupport, results[1].Status.Kind)
	assert.True(t, barrier.Same(rng(120, 125), state.Sell.Tracked))
	assert.True(t, barrier.Same(rng(100, 105), state.Buy.Tracked))
}

func TestNonPositiveTriggerFallsBack(t *testing.T) {
	set := barrier.MustSet(barrier.NewRange(100, 105))
	assert.True(t, NewSniper(set, decimal.Zero).Trigger().Equal(DefaultTrigger))
	assert.True(t, NewSniper(set, px(-1)).Trigger().Equal(DefaultTrigger))
	assert.True(t, NewSniper(set, px(0.5)).Trigger().Equal(px(0.5)))
}

func TestStatusRendering(t *testing.T) {
	st := Status{Kind: KindSellSignal, Magnitude: px(3)}
	assert.Equal(t, "🚨 SELL SIGNAL 🚨", st.Title())
	assert.Equal(t, []string{"REJECTION CONFIRMED", "Drop: 3.00 pts"}, st.Detail())
	assert.Equal(t, "SELL_SIGNAL (3.00 pts)", st.String())

	st = Status{Kind: KindBuyWatch, Magnitude: px(1.5)}
	assert.Equal(t, []string{"Retesting Zone...", "Rise: 1.50 pts"}, st.Detail())

	assert.Equal(t, "SCANNING MARKET...", Status{}.Title())
	assert.Nil(t, Status{Kind: KindInSupport}.Detail())
	assert.Equal(t, SeverityNeutral, Status{}.Severity())
}
