package arbitrage

import "strings"

// DefaultQuotePreferences is the order in which quote assets are tried when
// resolving a tradable symbol for a base asset.
var DefaultQuotePreferences = []string{"USDT", "USD", "BTC"}

// ResolveSymbol finds the best tradable "BASE/QUOTE" symbol for a base asset
// in an exchange's market list. Preferred quotes are tried in order; if none
// match, the first market listed for the base wins, in the exchange's own
// enumeration order. A false return means the exchange does not list the
// asset and must be excluded from the cycle; it is never an error.
func ResolveSymbol(base string, markets []string, quotePreferences []string) (string, bool) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" || len(markets) == 0 {
		return "", false
	}
	if len(quotePreferences) == 0 {
		quotePreferences = DefaultQuotePreferences
	}

	listed := make(map[string]struct{}, len(markets))
	for _, m := range markets {
		listed[m] = struct{}{}
	}

	for _, quote := range quotePreferences {
		symbol := base + "/" + strings.ToUpper(quote)
		if _, ok := listed[symbol]; ok {
			return symbol, true
		}
	}

	prefix := base + "/"
	for _, m := range markets {
		if strings.HasPrefix(m, prefix) {
			return m, true
		}
	}

	return "", false
}
