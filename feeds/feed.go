package feeds

import (
	"context"
	"errors"
	"fmt"

	"github.com/web3guy0/goldsniper/internal/config"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PRICE SOURCES - Spot gold (XAU/USD) providers
// ═══════════════════════════════════════════════════════════════════════════════
//
//   goldprice  public JSON endpoint, polled on demand
//   binance    PAXG/USDT trade stream over WebSocket, last trade served
//   chainlink  XAU/USD aggregator on Ethereum, read via JSON-RPC
//
// A source never panics on bad data; every failure comes back as an error and
// the driver treats the tick as "price unavailable".
//
// ═══════════════════════════════════════════════════════════════════════════════

var (
	ErrNoPrice = errors.New("no price available")
	ErrStale   = errors.New("price is stale")
)

// PriceSource returns the current spot price
type PriceSource interface {
	Name() string
	FetchPrice(ctx context.Context) (float64, error)
}

// Lifecycle is implemented by sources that run background connections
type Lifecycle interface {
	Start() error
	Stop()
}

// NewSource builds the source selected by FEED_SOURCE
func NewSource(cfg *config.Config) (PriceSource, error) {
	switch cfg.FeedSource {
	case config.FeedGoldPrice:
		return NewGoldPriceFeed(cfg.GoldPriceURL, cfg.FetchTimeout), nil
	case config.FeedBinance:
		return NewBinanceFeed(cfg.BinanceWSURL, cfg.BinanceSymbol), nil
	case config.FeedChainlink:
		return NewChainlinkFeed(cfg.ChainlinkRPCURL, cfg.ChainlinkFeed, cfg.FetchTimeout), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.FeedSource)
	}
}
