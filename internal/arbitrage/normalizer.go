package arbitrage

import "crypto-arbitrage-dashboard/internal/domain"

// Normalize turns a raw ticker into a usable Quote. A missing bid or ask is
// backfilled from the last trade price; if either side is still missing the
// ticker is unusable and the quote must be excluded from spread math and
// reported in the exchange's status note. Prices are never zero-filled.
func Normalize(exchange, symbol string, t domain.Ticker) (domain.Quote, bool) {
	bid := t.Bid
	ask := t.Ask
	if !present(bid) && present(t.Last) {
		bid = t.Last
	}
	if !present(ask) && present(t.Last) {
		ask = t.Last
	}
	if !present(bid) || !present(ask) {
		return domain.Quote{}, false
	}
	return domain.Quote{
		Exchange: exchange,
		Symbol:   symbol,
		Bid:      *bid,
		Ask:      *ask,
	}, true
}

func present(p *float64) bool {
	return p != nil && *p > 0
}
