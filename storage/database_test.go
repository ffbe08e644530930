package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/goldsniper/barrier"
	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func report(at time.Time, kind strategy.Kind, price, mag float64) *types.Report {
	zone := barrier.NewRange(4551, 4570)
	return &types.Report{
		Time:      at,
		Source:    "goldprice",
		Available: true,
		Price:     decimal.NewFromFloat(price),
		Result: &strategy.Result{
			Price:  decimal.NewFromFloat(price),
			Sell:   strategy.SideResult{Tracked: &zone, Armed: true},
			Status: strategy.Status{Kind: kind, Magnitude: decimal.NewFromFloat(mag)},
		},
	}
}

func TestJournalRecordsTransitionsOnly(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	j.OnReport(report(base, strategy.KindInResistance, 4555, 0))
	j.OnReport(report(base.Add(2*time.Second), strategy.KindInResistance, 4556, 0))
	j.OnReport(&types.Report{Time: base.Add(4 * time.Second), Err: errors.New("down")})
	j.OnReport(report(base.Add(6*time.Second), strategy.KindSellWatch, 4550, 1))
	j.OnReport(report(base.Add(8*time.Second), strategy.KindSellWatch, 4549.5, 1.5))
	j.OnReport(report(base.Add(10*time.Second), strategy.KindSellSignal, 4548, 3))

	events, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "SELL_SIGNAL", events[0].Kind)
	assert.Equal(t, "signal", events[0].Severity)
	assert.Equal(t, "4551.000-4570.000", events[0].Zone)
	assert.True(t, events[0].Magnitude.Equal(decimal.NewFromFloat(3)))
	assert.True(t, events[0].Price.Equal(decimal.NewFromFloat(4548)))
	assert.Equal(t, "SELL_WATCH", events[1].Kind)
	assert.Equal(t, "IN_RESISTANCE", events[2].Kind)
}

func TestRecentLimit(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	kinds := []strategy.Kind{strategy.KindInSupport, strategy.KindBuyWatch, strategy.KindBuySignal, strategy.KindScanning}
	for i, k := range kinds {
		require.NoError(t, j.Record(types.NewSignalRecord(report(base.Add(time.Duration(i)*time.Second), k, 4390, 0))))
	}

	events, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "SCANNING", events[0].Kind)
	assert.Equal(t, "BUY_SIGNAL", events[1].Kind)
}

func TestCountByKind(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	for i, k := range []strategy.Kind{strategy.KindSellWatch, strategy.KindSellSignal, strategy.KindSellWatch, strategy.KindSellWatch} {
		require.NoError(t, j.Record(types.NewSignalRecord(report(base.Add(time.Duration(i)*time.Minute), k, 4550, 1))))
	}

	counts, err := j.CountByKind(base.Add(30 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["SELL_WATCH"])
	assert.Equal(t, int64(1), counts["SELL_SIGNAL"])
	assert.Equal(t, "journal", j.Name())
}

func TestEventIDAndSince(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	for i, k := range []strategy.Kind{strategy.KindInSupport, strategy.KindBuyWatch, strategy.KindBuySignal} {
		require.NoError(t, j.Record(types.NewSignalRecord(report(base.Add(time.Duration(i)*time.Minute), k, 4390, 0))))
	}

	events, err := j.Since(base.Add(30 * time.Second))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "BUY_WATCH", events[0].Kind)
	assert.Equal(t, "BUY_SIGNAL", events[1].Kind)
	assert.Len(t, events[0].EventID, 36)
	assert.NotEqual(t, events[0].EventID, events[1].EventID)
}
