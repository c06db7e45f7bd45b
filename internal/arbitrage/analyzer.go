package arbitrage

import (
	"sort"
	"time"

	"crypto-arbitrage-dashboard/internal/domain"
)

// FeeSchedule carries the fee assumptions for one cycle: a global taker fee,
// optional per-exchange overrides, and a flat transfer cost charged once per
// round trip. Fees are in percent (0.1 means 0.1%).
type FeeSchedule struct {
	DefaultTakerPercent float64
	TakerPercent        map[string]float64
	TransferFee         float64
}

// TakerFor returns the taker fee percent in effect for an exchange.
// Per-exchange overrides take precedence over the default.
func (f FeeSchedule) TakerFor(exchange string) float64 {
	if pct, ok := f.TakerPercent[exchange]; ok && pct > 0 {
		return pct
	}
	return f.DefaultTakerPercent
}

// Effective applies the exchange's taker fee to a quote. Buying costs the ask
// plus the fee, selling nets the bid minus the fee.
func Effective(q domain.Quote, fees FeeSchedule) domain.EffectiveQuote {
	pct := fees.TakerFor(q.Exchange)
	fee := pct / 100
	return domain.EffectiveQuote{
		Quote:         q,
		FeePercent:    pct,
		EffectiveBuy:  q.Ask * (1 + fee),
		EffectiveSell: q.Bid * (1 - fee),
	}
}

// EffectiveQuotes fee-adjusts every quote, preserving input order.
func EffectiveQuotes(quotes []domain.Quote, fees FeeSchedule) []domain.EffectiveQuote {
	out := make([]domain.EffectiveQuote, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, Effective(q, fees))
	}
	return out
}

// SortByEffectiveBuy orders rows cheapest-to-buy first, the order the board
// table is displayed in. The sort is stable so equal prices keep their
// enumeration order.
func SortByEffectiveBuy(rows []domain.EffectiveQuote) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EffectiveBuy < rows[j].EffectiveBuy
	})
}

// Compute finds the best realizable opportunity for an asset: buy where the
// fee-adjusted ask is lowest, sell where the fee-adjusted bid is highest,
// minus the flat transfer cost. Ties go to the first-seen quote.
//
// There is no opportunity when fewer than two exchanges produced usable
// quotes, when the best buy and sell land on the same exchange (a
// single-exchange spread is not realizable arbitrage), or when the effective
// buy price is non-positive (the percent would be undefined).
func Compute(asset string, rows []domain.EffectiveQuote, transferFee float64, now time.Time) (domain.Opportunity, bool) {
	if len(rows) < 2 {
		return domain.Opportunity{}, false
	}

	buy, sell := 0, 0
	for i, row := range rows[1:] {
		if row.EffectiveBuy < rows[buy].EffectiveBuy {
			buy = i + 1
		}
		if row.EffectiveSell > rows[sell].EffectiveSell {
			sell = i + 1
		}
	}

	if rows[buy].Exchange == rows[sell].Exchange {
		return domain.Opportunity{}, false
	}
	if rows[buy].EffectiveBuy <= 0 {
		return domain.Opportunity{}, false
	}

	profit := rows[sell].EffectiveSell - rows[buy].EffectiveBuy - transferFee
	return domain.Opportunity{
		Asset:          asset,
		BuyExchange:    rows[buy].Exchange,
		BuySymbol:      rows[buy].Symbol,
		BuyPrice:       rows[buy].EffectiveBuy,
		SellExchange:   rows[sell].Exchange,
		SellSymbol:     rows[sell].Symbol,
		SellPrice:      rows[sell].EffectiveSell,
		ProfitAbsolute: profit,
		ProfitPercent:  profit / rows[buy].EffectiveBuy * 100,
		Timestamp:      now.UTC(),
	}, true
}
