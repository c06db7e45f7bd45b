// Package bitstamp implements the exchange client for Bitstamp spot markets.
package bitstamp

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

const bitstampApiBaseUrl = "https://www.bitstamp.net"

type BitstampExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type BitstampTradingPair struct {
	Name      string `json:"name"`
	UrlSymbol string `json:"url_symbol"`
	Trading   string `json:"trading"`
}

type BitstampTickerResponse struct {
	Last string `json:"last"`
	Bid  string `json:"bid"`
	Ask  string `json:"ask"`
}

func CreateClient(log *zap.Logger) *BitstampExchange {
	return &BitstampExchange{
		apiBaseUrl: bitstampApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *BitstampExchange) GetName() string {
	return "bitstamp"
}

// LoadMarkets lists enabled trading pairs. Bitstamp names pairs "ETH/USD"
// already, so the name is the canonical symbol as-is.
func (exchange *BitstampExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Bitstamp trading pairs")

	var pairs []BitstampTradingPair
	if err := exchange.getJSON(ctx, "/api/v2/trading-pairs-info/", &pairs); err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(pairs))
	native := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.Trading != "Enabled" || !strings.Contains(p.Name, "/") {
			continue
		}
		if _, exists := native[p.Name]; exists {
			continue
		}
		markets = append(markets, p.Name)
		native[p.Name] = p.UrlSymbol
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *BitstampExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("bitstamp: unknown symbol %q", symbol)
	}

	var respData BitstampTickerResponse
	if err := exchange.getJSON(ctx, "/api/v2/ticker/"+url.PathEscape(nativeSymbol)+"/", &respData); err != nil {
		return domain.Ticker{}, err
	}

	return domain.Ticker{
		Bid:  domain.ParsePrice(respData.Bid),
		Ask:  domain.ParsePrice(respData.Ask),
		Last: domain.ParsePrice(respData.Last),
	}, nil
}

func (exchange *BitstampExchange) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange.apiBaseUrl+path, nil)
	if err != nil {
		return err
	}

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
		return fmt.Errorf("bitstamp: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
