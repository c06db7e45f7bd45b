// Package luno implements the exchange client for Luno spot markets on top
// of the official Go SDK.
package luno

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/luno/luno-go"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/domain"
)

// Luno's market catalogue is small and stable, so pairs are kept as a
// static table instead of a discovery call. Luno names bitcoin XBT; the
// canonical side uses BTC. Order matters: the BTC-quoted pair comes first
// per base so quote preferences fall through sensibly.
var lunoPairs = []struct {
	canonical string
	native    string
}{
	{"ETH/BTC", "ETHXBT"},
	{"ETH/MYR", "ETHMYR"},
	{"ETH/ZAR", "ETHZAR"},
	{"ETH/NGN", "ETHNGN"},
	{"BTC/MYR", "XBTMYR"},
	{"BTC/ZAR", "XBTZAR"},
	{"BTC/NGN", "XBTNGN"},
	{"BTC/EUR", "XBTEUR"},
	{"BTC/GBP", "XBTGBP"},
	{"XRP/BTC", "XRPXBT"},
	{"XRP/MYR", "XRPMYR"},
	{"XRP/ZAR", "XRPZAR"},
	{"LTC/BTC", "LTCXBT"},
	{"LTC/MYR", "LTCMYR"},
	{"LTC/ZAR", "LTCZAR"},
	{"BCH/BTC", "BCHXBT"},
}

type LunoExchange struct {
	lunoClient *luno.Client
	log        *zap.Logger

	mu      sync.Mutex
	markets []string
	native  map[string]string
}

// CreateClient builds a Luno client. Credentials are optional; the public
// order book endpoint works without them.
func CreateClient(log *zap.Logger, id string, secret string) *LunoExchange {
	lunoClient := luno.NewClient()
	if id != "" && secret != "" {
		lunoClient.SetAuth(id, secret)
	}

	return &LunoExchange{
		lunoClient: lunoClient,
		log:        log,
	}
}

func (exchange *LunoExchange) GetName() string {
	return "luno"
}

func (exchange *LunoExchange) LoadMarkets(_ context.Context) ([]string, error) {
	exchange.mu.Lock()
	defer exchange.mu.Unlock()
	if exchange.markets == nil {
		markets := make([]string, 0, len(lunoPairs))
		native := make(map[string]string, len(lunoPairs))
		for _, p := range lunoPairs {
			markets = append(markets, p.canonical)
			native[p.canonical] = p.native
		}
		exchange.markets = markets
		exchange.native = native
	}
	return slices.Clone(exchange.markets), nil
}

// FetchTicker reads the top of the order book: the first ask is the lowest
// ask and the first bid is the highest bid. Luno's order book has no last
// trade price, so Last stays absent.
func (exchange *LunoExchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	exchange.mu.Lock()
	nativeSymbol, ok := exchange.native[symbol]
	exchange.mu.Unlock()
	if !ok {
		return domain.Ticker{}, fmt.Errorf("luno: unknown symbol %q", symbol)
	}

	exchange.log.Debug("Getting Luno order book for pair: " + nativeSymbol)

	res, err := exchange.lunoClient.GetOrderBook(ctx, &luno.GetOrderBookRequest{Pair: nativeSymbol})
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("luno: get order book for %q: %w", nativeSymbol, err)
	}
	if len(res.Asks) == 0 || len(res.Bids) == 0 {
		return domain.Ticker{}, fmt.Errorf("luno: empty order book for %q", nativeSymbol)
	}

	return domain.Ticker{
		Bid: domain.Price(res.Bids[0].Price.Float64()),
		Ask: domain.Price(res.Asks[0].Price.Float64()),
	}, nil
}
