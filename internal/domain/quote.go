package domain

// Quote is a normalized per-exchange price for one asset: both sides are
// guaranteed present and positive once a Ticker has passed normalization.
type Quote struct {
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
}

// EffectiveQuote is a Quote adjusted by the taker fee in effect for its
// exchange. Recomputed every cycle, never persisted.
type EffectiveQuote struct {
	Quote
	FeePercent    float64 `json:"fee_percent"`
	EffectiveBuy  float64 `json:"effective_buy"`
	EffectiveSell float64 `json:"effective_sell"`
}
