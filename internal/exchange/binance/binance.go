// Package binance implements the exchange client for Binance spot markets.
package binance

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

const binanceApiBaseUrl = "https://api.binance.com"

type BinanceExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type BinanceSymbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

type BinanceExchangeInfoResponse struct {
	Symbols []BinanceSymbolInfo `json:"symbols"`
}

type BinanceTickerResponse struct {
	LastPrice string `json:"lastPrice"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
}

func CreateClient(log *zap.Logger) *BinanceExchange {
	return &BinanceExchange{
		apiBaseUrl: binanceApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *BinanceExchange) GetName() string {
	return "binance"
}

// LoadMarkets lists the tradeable markets in listing order. The result is
// cached for the life of the client.
func (exchange *BinanceExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Binance markets")

	var respData BinanceExchangeInfoResponse
	if err := exchange.getJSON(ctx, "/api/v3/exchangeInfo", &respData); err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(respData.Symbols))
	native := make(map[string]string, len(respData.Symbols))
	for _, s := range respData.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		canonical := s.BaseAsset + "/" + s.QuoteAsset
		if _, exists := native[canonical]; exists {
			continue
		}
		markets = append(markets, canonical)
		native[canonical] = s.Symbol
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *BinanceExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("binance: unknown symbol %q", symbol)
	}

	var respData BinanceTickerResponse
	if err := exchange.getJSON(ctx, "/api/v3/ticker/24hr?symbol="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}

	return domain.Ticker{
		Bid:  domain.ParsePrice(respData.BidPrice),
		Ask:  domain.ParsePrice(respData.AskPrice),
		Last: domain.ParsePrice(respData.LastPrice),
	}, nil
}

func (exchange *BinanceExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("binance: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
