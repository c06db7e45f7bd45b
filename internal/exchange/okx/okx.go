// Package okx implements the exchange client for OKX spot markets.
package okx

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

const okxApiBaseUrl = "https://www.okx.com"

type OkxExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type OkxInstrument struct {
	InstId   string `json:"instId"`
	BaseCcy  string `json:"baseCcy"`
	QuoteCcy string `json:"quoteCcy"`
	State    string `json:"state"`
}

type OkxInstrumentsResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data []OkxInstrument `json:"data"`
}

type OkxTickerResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Last  string `json:"last"`
		BidPx string `json:"bidPx"`
		AskPx string `json:"askPx"`
	} `json:"data"`
}

func CreateClient(log *zap.Logger) *OkxExchange {
	return &OkxExchange{
		apiBaseUrl: okxApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *OkxExchange) GetName() string {
	return "okx"
}

func (exchange *OkxExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading OKX instruments")

	var respData OkxInstrumentsResponse
	if err := exchange.getJSON(ctx, "/api/v5/public/instruments?instType=SPOT", &respData); err != nil {
		return nil, err
	}
	if respData.Code != "0" {
		return nil, fmt.Errorf("okx: code %s: %s", respData.Code, respData.Msg)
	}

	markets := make([]string, 0, len(respData.Data))
	native := make(map[string]string, len(respData.Data))
	for _, inst := range respData.Data {
		if inst.State != "live" {
			continue
		}
		canonical := inst.BaseCcy + "/" + inst.QuoteCcy
		if _, exists := native[canonical]; exists {
			continue
		}
		markets = append(markets, canonical)
		native[canonical] = inst.InstId
	}

	exchange.markets = markets
	exchange.native = native
	return slices.Clone(markets), nil
}

func (exchange *OkxExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("okx: unknown symbol %q", symbol)
	}

	var respData OkxTickerResponse
	if err := exchange.getJSON(ctx, "/api/v5/market/ticker?instId="+url.QueryEscape(nativeSymbol), &respData); err != nil {
		return domain.Ticker{}, err
	}
	if respData.Code != "0" {
		return domain.Ticker{}, fmt.Errorf("okx: code %s: %s", respData.Code, respData.Msg)
	}
	if len(respData.Data) == 0 {
		return domain.Ticker{}, fmt.Errorf("okx: empty ticker data for %q", nativeSymbol)
	}

	tick := respData.Data[0]
	return domain.Ticker{
		Bid:  domain.ParsePrice(tick.BidPx),
		Ask:  domain.ParsePrice(tick.AskPx),
		Last: domain.ParsePrice(tick.Last),
	}, nil
}

func (exchange *OkxExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("okx: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
