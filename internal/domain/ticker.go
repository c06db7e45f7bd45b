package domain

import "strconv"

// Ticker is the raw market snapshot returned by an exchange client. Bid, ask
// and last are independently optional: public ticker endpoints routinely omit
// one or more of them, and a nil field must never be confused with a zero
// price.
type Ticker struct {
	Bid  *float64
	Ask  *float64
	Last *float64
}

// Price wraps a value as an optional ticker price. Non-positive values are
// treated as absent, matching how exchanges report "no quote".
func Price(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// ParsePrice parses a decimal string from an exchange payload into an
// optional price. Empty, malformed and non-positive values are absent.
func ParsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return Price(v)
}
