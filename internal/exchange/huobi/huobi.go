// Package huobi implements the exchange client for Huobi (HTX) spot markets.
package huobi

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

const huobiApiBaseUrl = "https://api.huobi.pro"

type HuobiExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type HuobiSymbolInfo struct {
	BaseCurrency  string `json:"base-currency"`
	QuoteCurrency string `json:"quote-currency"`
	Symbol        string `json:"symbol"`
	State         string `json:"state"`
}

type HuobiSymbolsResponse struct {
	Status string            `json:"status"`
	ErrMsg string            `json:"err-msg"`
	Data   []HuobiSymbolInfo `json:"data"`
}

// Huobi reports prices as JSON numbers, with bid and ask as [price, size]
// pairs.
type HuobiMergedResponse struct {
	Status string `json:"status"`
	ErrMsg string `json:"err-msg"`
	Tick   *struct {
		Close float64   `json:"close"`
		Bid   []float64 `json:"bid"`
		Ask   []float64 `json:"ask"`
	} `json:"tick"`
}

func CreateClient(log *zap.Logger) *HuobiExchange {
	return &HuobiExchange{
		apiBaseUrl: huobiApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *HuobiExchange) GetName() string {
	return "huobipro"
}

// LoadMarkets lists online symbols. Huobi reports currencies in lowercase,
// so they are uppercased into the canonical form.
func (exchange *HuobiExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Huobi symbols")

	var respData HuobiSymbolsResponse
	if err := exchange.getJSON(ctx, "/v1/common/symbols", &respData); err != nil {
		return nil, err
	}
	if respData.Status != "ok" {
		return nil, fmt.Errorf("huobipro: %s", respData.ErrMsg)
	}

	markets := make([]string, 0, len(respData.Data))
	native := make(map[string]string, len(respData.Data))
	for _, s := range respData.Data {
		if s.State != "online" {
			continue
		}
		canonical := strings.ToUpper(s.BaseCurrency) + "/" + strings.ToUpper(s.QuoteCurrency)
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

func (exchange *HuobiExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("huobipro: unknown symbol %q", symbol)
	}

	var respData HuobiMergedResponse
	if err := exchange.getJSON(ctx, "/market/detail/merged?symbol="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}
	if respData.Status != "ok" || respData.Tick == nil {
		return domain.Ticker{}, fmt.Errorf("huobipro: no ticker data for %q: %s", nativeSymbol, respData.ErrMsg)
	}

	return domain.Ticker{
		Bid:  level(respData.Tick.Bid),
		Ask:  level(respData.Tick.Ask),
		Last: domain.Price(respData.Tick.Close),
	}, nil
}

func level(pair []float64) *float64 {
	if len(pair) == 0 {
		return nil
	}
	return domain.Price(pair[0])
}

func (exchange *HuobiExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("huobipro: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
