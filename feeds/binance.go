package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BINANCE FEED - PAXG/USDT trade stream (one PAXG = one troy ounce of gold)
// ═══════════════════════════════════════════════════════════════════════════════

const (
	BinanceWSURL      = "wss://stream.binance.com:9443/ws"
	BinanceSymbol     = "PAXGUSDT"
	binanceStaleAfter = 15 * time.Second
)

// BinanceFeed keeps the last trade price from the WebSocket stream
type BinanceFeed struct {
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	conn    *websocket.Conn

	wsURL  string
	symbol string

	price      decimal.Decimal
	lastUpdate time.Time
	staleAfter time.Duration
}

// binanceTrade is the <symbol>@trade event
type binanceTrade struct {
	Event     string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

// NewBinanceFeed creates a Binance trade stream feed
func NewBinanceFeed(wsURL, symbol string) *BinanceFeed {
	if wsURL == "" {
		wsURL = BinanceWSURL
	}
	if symbol == "" {
		symbol = BinanceSymbol
	}
	return &BinanceFeed{
		stopCh:     make(chan struct{}),
		wsURL:      strings.TrimRight(wsURL, "/"),
		symbol:     strings.ToUpper(symbol),
		staleAfter: binanceStaleAfter,
	}
}

// Name returns the source identifier
func (f *BinanceFeed) Name() string { return "binance" }

// Start connects and keeps reconnecting until Stop
func (f *BinanceFeed) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.mu.Unlock()

	go f.runWebSocket()
	log.Info().Str("symbol", f.symbol).Msg("📈 Binance feed started")
	return nil
}

// Stop closes the stream
func (f *BinanceFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)
	if f.conn != nil {
		f.conn.Close()
	}
	log.Info().Msg("Binance feed stopped")
}

// FetchPrice returns the last trade if it is fresh enough
func (f *BinanceFeed) FetchPrice(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.price.IsZero() {
		return 0, ErrNoPrice
	}
	if age := time.Since(f.lastUpdate); age > f.staleAfter {
		return 0, fmt.Errorf("%w: last trade %s ago", ErrStale, age.Round(time.Second))
	}
	return f.price.InexactFloat64(), nil
}

func (f *BinanceFeed) isRunning() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.running
}

func (f *BinanceFeed) runWebSocket() {
	for f.isRunning() {
		conn, err := f.connect()
		if err != nil {
			log.Error().Err(err).Msg("Binance WebSocket connection failed")
			if !f.sleep(5 * time.Second) {
				return
			}
			continue
		}

		f.readMessages(conn)

		if f.isRunning() {
			log.Warn().Msg("Binance WebSocket disconnected, reconnecting...")
			if !f.sleep(time.Second) {
				return
			}
		}
	}
}

// sleep waits unless the feed is stopped first
func (f *BinanceFeed) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-f.stopCh:
		return false
	}
}

func (f *BinanceFeed) connect() (*websocket.Conn, error) {
	url := fmt.Sprintf("%s/%s@trade", f.wsURL, strings.ToLower(f.symbol))

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	log.Info().Str("url", url).Msg("🔌 WebSocket connected to Binance")
	return conn, nil
}

func (f *BinanceFeed) readMessages(conn *websocket.Conn) {
	defer conn.Close()
	for f.isRunning() {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.isRunning() {
				log.Error().Err(err).Msg("Binance WebSocket read error")
			}
			return
		}
		f.handleMessage(message)
	}
}

func (f *BinanceFeed) handleMessage(data []byte) {
	var trade binanceTrade
	if err := json.Unmarshal(data, &trade); err != nil {
		log.Debug().Err(err).Msg("Binance message parse failed")
		return
	}
	if trade.Event != "trade" || !strings.EqualFold(trade.Symbol, f.symbol) {
		return
	}

	price, err := decimal.NewFromString(trade.Price)
	if err != nil || !price.IsPositive() {
		log.Debug().Str("raw", trade.Price).Msg("Binance trade with bad price")
		return
	}

	f.mu.Lock()
	f.price = price
	f.lastUpdate = time.Now()
	f.mu.Unlock()
}
