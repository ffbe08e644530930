package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	GoldPriceURL = "https://data-asg.goldprice.org/dbXRates/USD"

	// The endpoint rejects obvious bot user agents
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Safari/537.36"
)

// goldPriceResponse is the dbXRates payload: {"items":[{"xauPrice":2034.5,...}]}
type goldPriceResponse struct {
	Items []struct {
		Curr     string  `json:"curr"`
		XauPrice float64 `json:"xauPrice"`
		XagPrice float64 `json:"xagPrice"`
	} `json:"items"`
}

// GoldPriceFeed polls goldprice.org once per FetchPrice call
type GoldPriceFeed struct {
	url        string
	httpClient *http.Client
}

// NewGoldPriceFeed creates a goldprice.org client
func NewGoldPriceFeed(url string, timeout time.Duration) *GoldPriceFeed {
	if url == "" {
		url = GoldPriceURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoldPriceFeed{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier
func (f *GoldPriceFeed) Name() string { return "goldprice" }

// FetchPrice gets the current XAU/USD price
func (f *GoldPriceFeed) FetchPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("goldprice request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("goldprice status %d", resp.StatusCode)
	}

	var data goldPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("goldprice decode: %w", err)
	}

	if len(data.Items) == 0 {
		return 0, ErrNoPrice
	}

	price := data.Items[0].XauPrice
	log.Debug().Float64("price", price).Str("curr", data.Items[0].Curr).Msg("🪙 goldprice update")
	return price, nil
}
