// Package bybit implements the exchange client for Bybit spot markets.
package bybit

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

const bybitApiBaseUrl = "https://api.bybit.com"

type BybitExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type BybitInstrument struct {
	Symbol    string `json:"symbol"`
	BaseCoin  string `json:"baseCoin"`
	QuoteCoin string `json:"quoteCoin"`
	Status    string `json:"status"`
}

type BybitInstrumentsResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []BybitInstrument `json:"list"`
	} `json:"result"`
}

type BybitTickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			LastPrice string `json:"lastPrice"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
		} `json:"list"`
	} `json:"result"`
}

func CreateClient(log *zap.Logger) *BybitExchange {
	return &BybitExchange{
		apiBaseUrl: bybitApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *BybitExchange) GetName() string {
	return "bybit"
}

func (exchange *BybitExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Bybit instruments")

	var respData BybitInstrumentsResponse
	if err := exchange.getJSON(ctx, "/v5/market/instruments-info?category=spot", &respData); err != nil {
		return nil, err
	}
	if respData.RetCode != 0 {
		return nil, fmt.Errorf("bybit: code %d: %s", respData.RetCode, respData.RetMsg)
	}

	markets := make([]string, 0, len(respData.Result.List))
	native := make(map[string]string, len(respData.Result.List))
	for _, inst := range respData.Result.List {
		if inst.Status != "Trading" {
			continue
		}
		canonical := inst.BaseCoin + "/" + inst.QuoteCoin
		if _, exists := native[canonical]; exists {
			continue
		}
		markets = append(markets, canonical)
		native[canonical] = inst.Symbol
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *BybitExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("bybit: unknown symbol %q", symbol)
	}

	var respData BybitTickersResponse
	if err := exchange.getJSON(ctx, "/v5/market/tickers?category=spot&symbol="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}
	if respData.RetCode != 0 {
		return domain.Ticker{}, fmt.Errorf("bybit: code %d: %s", respData.RetCode, respData.RetMsg)
	}
	if len(respData.Result.List) == 0 {
		return domain.Ticker{}, fmt.Errorf("bybit: empty ticker data for %q", nativeSymbol)
	}

	tick := respData.Result.List[0]
	return domain.Ticker{
		Bid:  domain.ParsePrice(tick.Bid1Price),
		Ask:  domain.ParsePrice(tick.Ask1Price),
		Last: domain.ParsePrice(tick.LastPrice),
	}, nil
}

func (exchange *BybitExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("bybit: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
