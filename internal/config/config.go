package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/web3guy0/goldsniper/barrier"
)

// Feed sources
const (
	FeedGoldPrice = "goldprice"
	FeedBinance   = "binance"
	FeedChainlink = "chainlink"
)

// Dashboard layouts
const (
	LayoutCentered = "centered"
	LayoutWide     = "wide"
	LayoutAuto     = "auto"
)

// DatabaseOff disables the signal journal
const DatabaseOff = "off"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the sniper
type Config struct {
	// Barriers
	Barriers   *barrier.Set
	PipTrigger decimal.Decimal

	// Feed
	FeedSource      string
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	FeedDownAfter   int
	GoldPriceURL    string
	BinanceWSURL    string
	BinanceSymbol   string
	ChainlinkRPCURL string
	ChainlinkFeed   string

	// Presentation
	Layout    string
	Dashboard bool

	// Telegram (optional)
	TelegramToken  string
	TelegramChatID int64

	// Database
	DatabasePath string

	// Metrics (optional), e.g. ":9090"
	MetricsAddr string

	Debug bool
}

// barrierFile is the BARRIER_FILE layout:
//
//	pip_trigger: 2.0
//	barriers:
//	  - [4551, 4570]
//	  - [4380, 4400]
type barrierFile struct {
	PipTrigger float64      `yaml:"pip_trigger"`
	Barriers   [][2]float64 `yaml:"barriers"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		PipTrigger: getEnvDecimal("PIP_TRIGGER", decimal.NewFromFloat(2.00)),

		FeedSource:      strings.ToLower(getEnv("FEED_SOURCE", FeedGoldPrice)),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 5*time.Second),
		FeedDownAfter:   getEnvInt("FEED_DOWN_AFTER", 5),
		GoldPriceURL:    getEnv("GOLDPRICE_URL", "https://data-asg.goldprice.org/dbXRates/USD"),
		BinanceWSURL:    getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws"),
		BinanceSymbol:   getEnv("BINANCE_SYMBOL", "PAXGUSDT"),
		ChainlinkRPCURL: getEnv("CHAINLINK_RPC_URL", "https://ethereum-rpc.publicnode.com"),
		ChainlinkFeed:   getEnv("CHAINLINK_FEED", "0x214eD9Da11D2fbe465a6fc601a91E62EbEc1a0D6"),

		Layout:    strings.ToLower(getEnv("LAYOUT", LayoutCentered)),
		Dashboard: getEnvBool("DASHBOARD", true),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		DatabasePath: getEnv("DATABASE_PATH", "data/goldsniper.db"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),

		Debug: getEnvBool("DEBUG", false),
	}

	// Parse chat ID
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	ranges, err := loadRanges(cfg)
	if err != nil {
		return nil, err
	}
	set, err := barrier.NewSet(ranges...)
	if err != nil {
		return nil, fmt.Errorf("barriers: %w", err)
	}
	cfg.Barriers = set

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRanges prefers BARRIER_FILE, then BARRIER_RANGES, then the built-in table
func loadRanges(cfg *Config) ([]barrier.Range, error) {
	if path := os.Getenv("BARRIER_FILE"); path != "" {
		ranges, trigger, err := LoadBarrierFile(path)
		if err != nil {
			return nil, err
		}
		if trigger.IsPositive() && os.Getenv("PIP_TRIGGER") == "" {
			cfg.PipTrigger = trigger
		}
		return ranges, nil
	}

	if spec := os.Getenv("BARRIER_RANGES"); spec != "" {
		ranges, err := barrier.ParseRanges(spec)
		if err != nil {
			return nil, fmt.Errorf("BARRIER_RANGES: %w", err)
		}
		return ranges, nil
	}

	return barrier.DefaultRanges(), nil
}

// LoadBarrierFile reads ranges (and an optional trigger) from YAML
func LoadBarrierFile(path string) ([]barrier.Range, decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("read barrier file: %w", err)
	}

	var file barrierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, decimal.Zero, fmt.Errorf("decode barrier file: %w", err)
	}
	if len(file.Barriers) == 0 {
		return nil, decimal.Zero, fmt.Errorf("barrier file %s: %w", path, barrier.ErrEmpty)
	}

	ranges := make([]barrier.Range, 0, len(file.Barriers))
	for _, b := range file.Barriers {
		ranges = append(ranges, barrier.NewRange(b[0], b[1]))
	}
	return ranges, decimal.NewFromFloat(file.PipTrigger), nil
}

// Validate checks values the loaders cannot
func (c *Config) Validate() error {
	if !c.PipTrigger.IsPositive() {
		return fmt.Errorf("%w: PIP_TRIGGER must be positive, got %s", ErrInvalidConfig, c.PipTrigger)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.FeedDownAfter <= 0 {
		return fmt.Errorf("%w: FEED_DOWN_AFTER must be positive", ErrInvalidConfig)
	}
	switch c.FeedSource {
	case FeedGoldPrice, FeedBinance, FeedChainlink:
	default:
		return fmt.Errorf("%w: unknown FEED_SOURCE %q", ErrInvalidConfig, c.FeedSource)
	}
	switch c.Layout {
	case LayoutCentered, LayoutWide, LayoutAuto:
	default:
		return fmt.Errorf("%w: unknown LAYOUT %q", ErrInvalidConfig, c.Layout)
	}
	return nil
}

// TelegramEnabled reports whether both token and chat are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// DatabaseEnabled reports whether the journal should be opened
func (c *Config) DatabaseEnabled() bool {
	return c.DatabasePath != "" && c.DatabasePath != DatabaseOff
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
