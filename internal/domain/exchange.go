package domain

import "context"

// Exchanger is the capability every exchange client provides: enumerate the
// markets it lists and fetch a ticker for one of them. Symbols are canonical
// "BASE/QUOTE" strings; each client maps them to its native format.
//
// Ticker sources are treated as unreliable. Errors, partial tickers and
// unsupported symbols are steady-state conditions for callers, not
// exceptional ones.
type Exchanger interface {
	GetName() string
	// LoadMarkets returns the canonical symbols the exchange currently
	// lists, in the exchange's own enumeration order.
	LoadMarkets(ctx context.Context) ([]string, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
}
