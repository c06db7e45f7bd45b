// Package exchange wires exchange ids to their client implementations.
package exchange

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/config"
	"crypto-arbitrage-dashboard/internal/domain"
	"crypto-arbitrage-dashboard/internal/exchange/binance"
	"crypto-arbitrage-dashboard/internal/exchange/bitstamp"
	"crypto-arbitrage-dashboard/internal/exchange/bybit"
	"crypto-arbitrage-dashboard/internal/exchange/coinbase"
	"crypto-arbitrage-dashboard/internal/exchange/gate"
	"crypto-arbitrage-dashboard/internal/exchange/hata"
	"crypto-arbitrage-dashboard/internal/exchange/huobi"
	"crypto-arbitrage-dashboard/internal/exchange/kraken"
	"crypto-arbitrage-dashboard/internal/exchange/kucoin"
	"crypto-arbitrage-dashboard/internal/exchange/luno"
	"crypto-arbitrage-dashboard/internal/exchange/okx"
)

// CreateClient builds the client for one exchange id.
func CreateClient(id string, cfg config.ExchangeConfig, log *zap.Logger) (domain.Exchanger, error) {
	switch id {
	case "binance":
		return binance.CreateClient(log), nil
	case "coinbasepro":
		return coinbase.CreateClient(log), nil
	case "kraken":
		return kraken.CreateClient(log), nil
	case "kucoin":
		return kucoin.CreateClient(log), nil
	case "okx":
		return okx.CreateClient(log), nil
	case "gate":
		return gate.CreateClient(log), nil
	case "bitstamp":
		return bitstamp.CreateClient(log), nil
	case "huobipro":
		return huobi.CreateClient(log), nil
	case "bybit":
		return bybit.CreateClient(log), nil
	case "luno":
		return luno.CreateClient(log, cfg.ApiKeyId, cfg.ApiKeySecret), nil
	case "hata":
		return hata.CreateClient(log, cfg.ApiKeyId, cfg.ApiKeySecret), nil
	default:
		return nil, fmt.Errorf("unsupported exchange id %q", id)
	}
}

// CreateClients builds clients for every configured exchange, enabled or
// not, so an exchange toggled on through the settings API joins the next
// cycle without a restart. Unknown ids are logged and skipped.
func CreateClients(cfg config.Config, log *zap.Logger) map[string]domain.Exchanger {
	ids := make([]string, 0, len(cfg.Exchanges))
	for id := range cfg.Exchanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	clients := make(map[string]domain.Exchanger)
	for _, id := range ids {
		client, err := CreateClient(id, cfg.Exchanges[id], log)
		if err != nil {
			log.Warn("Skipping exchange " + id + ": " + err.Error())
			continue
		}
		clients[id] = client
	}
	return clients
}
