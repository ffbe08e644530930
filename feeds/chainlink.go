package feeds

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Chainlink XAU/USD aggregator on Ethereum mainnet
const (
	XAUUSDFeedAddress = "0x214eD9Da11D2fbe465a6fc601a91E62EbEc1a0D6"
	EthereumRPC       = "https://ethereum-rpc.publicnode.com"

	// ABI function selectors
	LatestRoundDataSelector = "0xfeaf968c" // latestRoundData()
	DecimalsSelector        = "0x313ce567" // decimals()

	// The gold aggregator heartbeats once a day off-hours
	chainlinkMaxAge = 26 * time.Hour
)

// roundData is the decoded latestRoundData() tuple we care about
type roundData struct {
	RoundID   *big.Int
	Answer    *big.Int
	UpdatedAt time.Time
}

// ChainlinkFeed reads the aggregator on every FetchPrice
type ChainlinkFeed struct {
	mu       sync.Mutex
	client   *ethclient.Client
	rpcURL   string
	feed     common.Address
	decimals int32
	timeout  time.Duration
	maxAge   time.Duration
}

// NewChainlinkFeed creates a Chainlink aggregator reader
func NewChainlinkFeed(rpcURL, feedAddress string, timeout time.Duration) *ChainlinkFeed {
	if rpcURL == "" {
		rpcURL = EthereumRPC
	}
	if feedAddress == "" {
		feedAddress = XAUUSDFeedAddress
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ChainlinkFeed{
		rpcURL:   rpcURL,
		feed:     common.HexToAddress(feedAddress),
		decimals: -1,
		timeout:  timeout,
		maxAge:   chainlinkMaxAge,
	}
}

// Name returns the source identifier
func (c *ChainlinkFeed) Name() string { return "chainlink" }

// Start dials the RPC endpoint
func (c *ChainlinkFeed) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.dial(ctx); err != nil {
		return err
	}
	log.Info().
		Str("feed", c.feed.Hex()).
		Str("network", "Ethereum").
		Msg("⛓️ Chainlink client started")
	return nil
}

// Stop closes the RPC client
func (c *ChainlinkFeed) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func (c *ChainlinkFeed) dial(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.rpcURL, err)
	}
	c.client = client
	return client, nil
}

// FetchPrice reads latestRoundData() and scales by the feed decimals
func (c *ChainlinkFeed) FetchPrice(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := c.dial(ctx)
	if err != nil {
		return 0, err
	}

	decimals, err := c.feedDecimals(ctx, client)
	if err != nil {
		return 0, err
	}

	out, err := c.call(ctx, client, LatestRoundDataSelector)
	if err != nil {
		return 0, err
	}

	round, err := parseRoundData(out)
	if err != nil {
		return 0, err
	}
	if age := time.Since(round.UpdatedAt); age > c.maxAge {
		return 0, fmt.Errorf("%w: round %s updated %s ago", ErrStale, round.RoundID, age.Round(time.Minute))
	}

	price := decimal.NewFromBigInt(round.Answer, -decimals)
	log.Debug().
		Str("price", price.StringFixed(2)).
		Str("round", round.RoundID.String()).
		Msg("⛓️ Chainlink price update")
	return price.InexactFloat64(), nil
}

func (c *ChainlinkFeed) feedDecimals(ctx context.Context, client *ethclient.Client) (int32, error) {
	c.mu.Lock()
	cached := c.decimals
	c.mu.Unlock()
	if cached >= 0 {
		return cached, nil
	}

	out, err := c.call(ctx, client, DecimalsSelector)
	if err != nil {
		return 0, err
	}
	if len(out) < 32 {
		return 0, fmt.Errorf("invalid decimals response length: %d", len(out))
	}
	d := int32(new(big.Int).SetBytes(out[:32]).Int64())

	c.mu.Lock()
	c.decimals = d
	c.mu.Unlock()
	return d, nil
}

func (c *ChainlinkFeed) call(ctx context.Context, client *ethclient.Client, selector string) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &c.feed,
		Data: common.FromHex(selector),
	}
	out, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		// Drop the client so the next tick redials
		c.Stop()
		return nil, fmt.Errorf("eth_call %s: %w", selector, err)
	}
	return out, nil
}

// parseRoundData decodes
// (uint80 roundId, int256 answer, uint256 startedAt, uint256 updatedAt, uint80 answeredInRound)
func parseRoundData(out []byte) (roundData, error) {
	if len(out) < 160 {
		return roundData{}, fmt.Errorf("invalid latestRoundData length: %d", len(out))
	}

	answer := gethmath.S256(new(big.Int).SetBytes(out[32:64]))
	if answer.Sign() <= 0 {
		return roundData{}, fmt.Errorf("%w: non-positive answer %s", ErrNoPrice, answer)
	}

	updatedAt := new(big.Int).SetBytes(out[96:128]).Int64()
	return roundData{
		RoundID:   new(big.Int).SetBytes(out[0:32]),
		Answer:    answer,
		UpdatedAt: time.Unix(updatedAt, 0),
	}, nil
}
