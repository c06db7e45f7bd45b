// Package hata implements the exchange client for Hata, a Malaysian
// exchange whose order book endpoint requires HMAC-signed requests even for
// public data. Disabled by default; enable it only with API credentials.
package hata

import (
	"cmp"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/domain"
)

const hataApiBaseUrl = "https://my-api.hata.io"

// Hata has a short, MYR-centric market list; kept static like luno's.
var hataPairs = []struct {
	canonical string
	native    string
}{
	{"BTC/MYR", "BTC-MYR"},
	{"ETH/MYR", "ETH-MYR"},
	{"USDT/MYR", "USDT-MYR"},
	{"XRP/MYR", "XRP-MYR"},
	{"SOL/MYR", "SOL-MYR"},
}

type HataExchange struct {
	apiBaseUrl   string
	httpClient   *http.Client
	apiKeyId     string
	apiKeySecret string
	log          *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type HataOrderBookPriceFeed struct {
	Price  float64 `json:"price,string"`
	Volume float64 `json:"qty,string"`
}

type HataOrderBookResponse struct {
	Data struct {
		Asks []HataOrderBookPriceFeed `json:"asks"`
		Bids []HataOrderBookPriceFeed `json:"bids"`
	} `json:"data"`
	Status string `json:"status"`
}

func CreateClient(log *zap.Logger, id string, secret string) *HataExchange {
	return &HataExchange{
		apiBaseUrl:   hataApiBaseUrl,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		apiKeyId:     id,
		apiKeySecret: secret,
		log:          log,
	}
}

func (exchange *HataExchange) GetName() string {
	return "hata"
}

func (exchange *HataExchange) LoadMarkets(_ context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets == nil {
		markets := make([]string, 0, len(hataPairs))
		native := make(map[string]string, len(hataPairs))
		for _, p := range hataPairs {
			markets = append(markets, p.canonical)
			native[p.canonical] = p.native
		}
		exchange.markets = markets
		exchange.native = native
	}
	return slices.Clone(exchange.markets), nil
}

// FetchTicker reads the top of the signed order book endpoint. Requests are
// signed with an HMAC-SHA256 of the query string.
func (exchange *HataExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("hata: unknown symbol %q", symbol)
	}

	params := url.Values{}
	params.Set("pair_name", nativeSymbol)
	queryString := params.Encode()

	mac := hmac.New(sha256.New, []byte(exchange.apiKeySecret))
	mac.Write([]byte(queryString))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange.apiBaseUrl+"/orderbook/api/orderbook?"+queryString, nil)
	if err != nil {
		return domain.Ticker{}, err
	}
	req.Header.Set("X-API-Key", exchange.apiKeyId)
	req.Header.Set("Signature", signature)

	exchange.log.Debug("Getting Hata order book for pair: " + nativeSymbol)

	resp, err := exchange.httpClient.Do(req)
	if err != nil {
		return domain.Ticker{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Ticker{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Ticker{}, fmt.Errorf("hata: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var respData HataOrderBookResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return domain.Ticker{}, err
	}

	asks := respData.Data.Asks
	bids := respData.Data.Bids
	if len(asks) == 0 || len(bids) == 0 {
		return domain.Ticker{}, fmt.Errorf("hata: empty order book for %q", nativeSymbol)
	}

	// Sort asks by price in ascending order (lowest first)
	slices.SortFunc(asks, func(a, b HataOrderBookPriceFeed) int {
		return cmp.Compare(a.Price, b.Price)
	})

	// Sort bids by price in descending order (highest first)
	slices.SortFunc(bids, func(a, b HataOrderBookPriceFeed) int {
		return cmp.Compare(b.Price, a.Price)
	})

	return domain.Ticker{
		Bid: domain.Price(bids[0].Price),
		Ask: domain.Price(asks[0].Price),
	}, nil
}
