// Package coinbase implements the exchange client for Coinbase Exchange
// (formerly Coinbase Pro) spot markets.
package coinbase

import (
	"context"
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

const coinbaseApiBaseUrl = "https://api.exchange.coinbase.com"

type CoinbaseExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type CoinbaseProduct struct {
	Id            string `json:"id"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
	Status        string `json:"status"`
}

type CoinbaseTickerResponse struct {
	Price string `json:"price"`
	Bid   string `json:"bid"`
	Ask   string `json:"ask"`
}

func CreateClient(log *zap.Logger) *CoinbaseExchange {
	return &CoinbaseExchange{
		apiBaseUrl: coinbaseApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *CoinbaseExchange) GetName() string {
	return "coinbasepro"
}

func (exchange *CoinbaseExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Coinbase products")

	var products []CoinbaseProduct
	if err := exchange.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(products))
	native := make(map[string]string, len(products))
	for _, p := range products {
		if p.Status != "online" {
			continue
		}
		canonical := p.BaseCurrency + "/" + p.QuoteCurrency
		if _, exists := native[canonical]; exists {
			continue
		}
		markets = append(markets, canonical)
		native[canonical] = p.Id
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *CoinbaseExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("coinbasepro: unknown symbol %q", symbol)
	}

	var respData CoinbaseTickerResponse
	if err := exchange.getJSON(ctx, "/products/"+url.PathEscape(nativeSymbol)+"/ticker", &respData); err != nil {
		return domain.Ticker{}, err
	}

	return domain.Ticker{
		Bid:  domain.ParsePrice(respData.Bid),
		Ask:  domain.ParsePrice(respData.Ask),
		Last: domain.ParsePrice(respData.Price),
	}, nil
}

func (exchange *CoinbaseExchange) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange.apiBaseUrl+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "crypto-arbitrage-dashboard")

	resp, err := exchange.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coinbasepro: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
