package arbitrage

import (
	"fmt"
	"time"

	"crypto-arbitrage-dashboard/internal/domain"
)

// Format renders an opportunity into the alert message and the record handed
// to the history ledger. Pure: delivery and persistence are the caller's
// problem and may fail independently of each other.
func Format(o domain.Opportunity, fees FeeSchedule) (string, domain.AlertRecord) {
	message := fmt.Sprintf(
		"*Arbitrage Alert - %s*\n"+
			"Buy: %s at %.6f (%s)\n"+
			"Sell: %s at %.6f (%s)\n"+
			"Profit/unit: %.6f USD\n"+
			"Profit %%: %.4f%%\n"+
			"Timestamp: %s",
		o.Asset,
		o.BuyExchange, o.BuyPrice, o.BuySymbol,
		o.SellExchange, o.SellPrice, o.SellSymbol,
		o.ProfitAbsolute,
		o.ProfitPercent,
		o.Timestamp.UTC().Format(time.RFC3339),
	)

	record := domain.AlertRecord{
		Opportunity:    o,
		BuyFeePercent:  fees.TakerFor(o.BuyExchange),
		SellFeePercent: fees.TakerFor(o.SellExchange),
		TransferFee:    fees.TransferFee,
	}
	return message, record
}
