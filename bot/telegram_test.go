package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/web3guy0/goldsniper/barrier"
	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

func TestNewTelegramBotRequiresCredentials(t *testing.T) {
	_, err := NewTelegramBot("", 1, nil)
	assert.Error(t, err)

	_, err = NewTelegramBot("token", 0, nil)
	assert.Error(t, err)
}

func TestFormatSignal(t *testing.T) {
	msg := FormatSignal(types.SignalRecord{
		Kind:      strategy.KindSellSignal,
		Price:     decimal.NewFromFloat(4548.25),
		Magnitude: decimal.NewFromFloat(3),
		Zone:      "4551.000-4570.000",
		Timestamp: time.Date(2026, 3, 2, 14, 5, 9, 0, time.UTC),
	})

	assert.Contains(t, msg, "*🚨 SELL SIGNAL 🚨*")
	assert.Contains(t, msg, "$4548.25")
	assert.Contains(t, msg, "Zone: *4551.000-4570.000*")
	assert.Contains(t, msg, "REJECTION CONFIRMED")
	assert.Contains(t, msg, "Drop: 3.00 pts")
	assert.Contains(t, msg, "14:05:09")

	msg = FormatSignal(types.SignalRecord{Kind: strategy.KindBuyWatch, Magnitude: decimal.NewFromFloat(1.5)})
	assert.NotContains(t, msg, "Zone")
	assert.Contains(t, msg, "Rise: 1.50 pts")
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "⏳ No tick yet", FormatStatus(nil, 0, 0))

	down := &types.Report{Source: "binance", Err: errors.New("dial"), Interval: 2 * time.Second}
	msg := FormatStatus(down, 5, 2)
	assert.Contains(t, msg, "Connecting to feed")
	assert.Contains(t, msg, "binance")
	assert.Contains(t, msg, "Ticks: 5 | Failed: 2")

	set := barrier.MustSet(barrier.NewRange(4551, 4570), barrier.NewRange(4380, 4400))
	res, _ := strategy.NewSniper(set, strategy.DefaultTrigger).Evaluate(strategy.State{}, decimal.NewFromFloat(4450))
	up := &types.Report{Available: true, Price: res.Price, Result: &res}

	msg = FormatStatus(up, 10, 0)
	assert.Contains(t, msg, "$4450.00")
	assert.Contains(t, msg, "SCANNING MARKET...")
	assert.Contains(t, msg, "Resistance: 4551.000-4570.000")
	assert.Contains(t, msg, "Support: 4380.000-4400.000")
}

func TestFormatBarriers(t *testing.T) {
	set := barrier.MustSet(barrier.NewRange(4551, 4570), barrier.NewRange(4380, 4400))
	msg := FormatBarriers(set.Classify(decimal.NewFromFloat(4560)))

	assert.Contains(t, msg, "4551.000")
	assert.Contains(t, msg, "INSIDE")
	assert.Contains(t, msg, "SUPPORT")
	assert.Less(t, strings.Index(msg, "4551.000"), strings.Index(msg, "4380.000"))
}

func TestFormatFeedEvent(t *testing.T) {
	assert.Empty(t, FormatFeedEvent(&types.Report{}))

	msg := FormatFeedEvent(&types.Report{
		Source: "goldprice", Health: types.FeedDown, Err: errors.New("status 403"), Interval: 2 * time.Second,
	})
	assert.Contains(t, msg, "FEED DOWN")
	assert.Contains(t, msg, "status 403")
	assert.Contains(t, msg, "2s")

	msg = FormatFeedEvent(&types.Report{
		Source: "goldprice", Health: types.FeedRestored, Available: true, Price: decimal.NewFromFloat(4450.5),
	})
	assert.Contains(t, msg, "Feed restored")
	assert.Contains(t, msg, "$4450.50")
}

func TestSendLimiterBurst(t *testing.T) {
	l := newSendLimiter()
	now := time.Now()
	assert.True(t, l.AllowN(now, 3))
	assert.False(t, l.AllowN(now, 1))
	assert.True(t, l.AllowN(now.Add(time.Second), 1))
}
