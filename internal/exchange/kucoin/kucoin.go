// Package kucoin implements the exchange client for KuCoin spot markets.
package kucoin

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

const kucoinApiBaseUrl = "https://api.kucoin.com"

// KuCoin wraps every payload in a code/data envelope; "200000" is success.
const kucoinCodeOk = "200000"

type KucoinExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type KucoinSymbolInfo struct {
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`
	EnableTrading bool   `json:"enableTrading"`
}

type KucoinSymbolsResponse struct {
	Code string             `json:"code"`
	Data []KucoinSymbolInfo `json:"data"`
}

type KucoinLevel1Response struct {
	Code string `json:"code"`
	Data *struct {
		Price   string `json:"price"`
		BestBid string `json:"bestBid"`
		BestAsk string `json:"bestAsk"`
	} `json:"data"`
}

func CreateClient(log *zap.Logger) *KucoinExchange {
	return &KucoinExchange{
		apiBaseUrl: kucoinApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *KucoinExchange) GetName() string {
	return "kucoin"
}

func (exchange *KucoinExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading KuCoin symbols")

	var respData KucoinSymbolsResponse
	if err := exchange.getJSON(ctx, "/api/v2/symbols", &respData); err != nil {
		return nil, err
	}
	if respData.Code != kucoinCodeOk {
		return nil, fmt.Errorf("kucoin: unexpected code %s", respData.Code)
	}

	markets := make([]string, 0, len(respData.Data))
	native := make(map[string]string, len(respData.Data))
	for _, s := range respData.Data {
		if !s.EnableTrading {
			continue
		}
		canonical := s.BaseCurrency + "/" + s.QuoteCurrency
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

func (exchange *KucoinExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("kucoin: unknown symbol %q", symbol)
	}

	var respData KucoinLevel1Response
	if err := exchange.getJSON(ctx, "/api/v1/market/orderbook/level1?symbol="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}
	if respData.Code != kucoinCodeOk || respData.Data == nil {
		return domain.Ticker{}, fmt.Errorf("kucoin: no ticker data for %q", nativeSymbol)
	}

	return domain.Ticker{
		Bid:  domain.ParsePrice(respData.Data.BestBid),
		Ask:  domain.ParsePrice(respData.Data.BestAsk),
		Last: domain.ParsePrice(respData.Data.Price),
	}, nil
}

func (exchange *KucoinExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("kucoin: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
