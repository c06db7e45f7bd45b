// Package kraken implements the exchange client for Kraken spot markets.
package kraken

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

const krakenApiBaseUrl = "https://api.kraken.com"

type KrakenExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type KrakenAssetPair struct {
	WsName string `json:"wsname"`
}

type KrakenAssetPairsResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]KrakenAssetPair `json:"result"`
}

type KrakenTickerInfo struct {
	Ask  []string `json:"a"`
	Bid  []string `json:"b"`
	Last []string `json:"c"`
}

type KrakenTickerResponse struct {
	Error  []string                    `json:"error"`
	Result map[string]KrakenTickerInfo `json:"result"`
}

func CreateClient(log *zap.Logger) *KrakenExchange {
	return &KrakenExchange{
		apiBaseUrl: krakenApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *KrakenExchange) GetName() string {
	return "kraken"
}

// LoadMarkets lists tradeable pairs using Kraken's websocket names, with the
// XBT alias folded into BTC. The pair index the API keys pairs by is kept
// for ticker lookups.
func (exchange *KrakenExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Kraken asset pairs")

	var respData KrakenAssetPairsResponse
	if err := exchange.getJSON(ctx, "/0/public/AssetPairs", &respData); err != nil {
		return nil, err
	}
	if len(respData.Error) > 0 {
		return nil, fmt.Errorf("kraken: %s", strings.Join(respData.Error, ", "))
	}

	// Map iteration order is random; sort the pair keys so the market list
	// is stable across calls.
	keys := make([]string, 0, len(respData.Result))
	for key := range respData.Result {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	markets := make([]string, 0, len(keys))
	native := make(map[string]string, len(keys))
	for _, key := range keys {
		base, quote, ok := strings.Cut(respData.Result[key].WsName, "/")
		if !ok {
			continue
		}
		canonical := unalias(base) + "/" + unalias(quote)
		if _, exists := native[canonical]; exists {
			continue
		}
		markets = append(markets, canonical)
		native[canonical] = key
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *KrakenExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("kraken: unknown symbol %q", symbol)
	}

	var respData KrakenTickerResponse
	if err := exchange.getJSON(ctx, "/0/public/Ticker?pair="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}
	if len(respData.Error) > 0 {
		return domain.Ticker{}, fmt.Errorf("kraken: %s", strings.Join(respData.Error, ", "))
	}

	// The result key does not always echo the requested pair name, so take
	// the single entry whatever it is keyed by.
	for _, info := range respData.Result {
		return domain.Ticker{
			Bid:  first(info.Bid),
			Ask:  first(info.Ask),
			Last: first(info.Last),
		}, nil
	}
	return domain.Ticker{}, fmt.Errorf("kraken: empty ticker result for %q", nativeSymbol)
}

func unalias(currency string) string {
	if currency == "XBT" {
		return "BTC"
	}
	return currency
}

func first(values []string) *float64 {
	if len(values) == 0 {
		return nil
	}
	return domain.ParsePrice(values[0])
}

func (exchange *KrakenExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("kraken: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
