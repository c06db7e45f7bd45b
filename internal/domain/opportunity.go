package domain

import "time"

// Opportunity is the best realizable cross-exchange spread found for an asset
// in one cycle. BuyExchange and SellExchange are always distinct: a
// single-exchange spread is not arbitrage and is never reported as one.
type Opportunity struct {
	Asset          string    `json:"asset"`
	BuyExchange    string    `json:"buy_exchange"`
	BuySymbol      string    `json:"buy_symbol,omitempty"`
	BuyPrice       float64   `json:"buy_price"`
	SellExchange   string    `json:"sell_exchange"`
	SellSymbol     string    `json:"sell_symbol,omitempty"`
	SellPrice      float64   `json:"sell_price"`
	ProfitAbsolute float64   `json:"profit_absolute"`
	ProfitPercent  float64   `json:"profit_percent"`
	Timestamp      time.Time `json:"timestamp"`
}

// AlertRecord is the persisted form of an Opportunity that cleared the alert
// threshold, together with the fee assumptions that were in effect. Created
// at alert time, never mutated.
type AlertRecord struct {
	Opportunity
	BuyFeePercent  float64 `json:"buy_fee_percent"`
	SellFeePercent float64 `json:"sell_fee_percent"`
	TransferFee    float64 `json:"transfer_fee"`
}
