// Package gate implements the exchange client for Gate.io spot markets.
package gate

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

const gateApiBaseUrl = "https://api.gateio.ws"

type GateExchange struct {
	apiBaseUrl string
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

type GateCurrencyPair struct {
	Id          string `json:"id"`
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	TradeStatus string `json:"trade_status"`
}

type GateTicker struct {
	Last       string `json:"last"`
	LowestAsk  string `json:"lowest_ask"`
	HighestBid string `json:"highest_bid"`
}

func CreateClient(log *zap.Logger) *GateExchange {
	return &GateExchange{
		apiBaseUrl: gateApiBaseUrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (exchange *GateExchange) GetName() string {
	return "gate"
}

func (exchange *GateExchange) LoadMarkets(ctx context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets != nil {
		return slices.Clone(exchange.markets), nil
	}

	exchange.log.Debug("Loading Gate currency pairs")

	var pairs []GateCurrencyPair
	if err := exchange.getJSON(ctx, "/api/v4/spot/currency_pairs", &pairs); err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(pairs))
	native := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.TradeStatus != "tradable" {
			continue
		}
		canonical := p.Base + "/" + p.Quote
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

func (exchange *GateExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("gate: unknown symbol %q", symbol)
	}

	var tickers []GateTicker
	if err := exchange.getJSON(ctx, "/api/v4/spot/tickers?currency_pair="+url.QueryEscape(nativeSymbol), &tickers); err != nil {
		return domain.Ticker{}, err
	}
	if len(tickers) == 0 {
		return domain.Ticker{}, fmt.Errorf("gate: empty ticker data for %q", nativeSymbol)
	}

	tick := tickers[0]
	return domain.Ticker{
		Bid:  domain.ParsePrice(tick.HighestBid),
		Ask:  domain.ParsePrice(tick.LowestAsk),
		Last: domain.ParsePrice(tick.Last),
	}, nil
}

func (exchange *GateExchange) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("gate: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
