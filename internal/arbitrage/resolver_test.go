package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSymbol(t *testing.T) {
	markets := []string{"BTC/USDT", "ETH/BTC", "ETH/USD", "ETH/USDT", "XRP/EUR", "XRP/GBP"}

	t.Run("picks the most preferred quote", func(t *testing.T) {
		symbol, ok := ResolveSymbol("ETH", markets, []string{"USDT", "USD", "BTC"})
		assert.True(t, ok)
		assert.Equal(t, "ETH/USDT", symbol)
	})

	t.Run("walks preferences in order", func(t *testing.T) {
		symbol, ok := ResolveSymbol("ETH", []string{"ETH/BTC", "ETH/USD"}, []string{"USDT", "USD", "BTC"})
		assert.True(t, ok)
		assert.Equal(t, "ETH/USD", symbol)
	})

	t.Run("falls back to the first listed market for the base", func(t *testing.T) {
		symbol, ok := ResolveSymbol("XRP", markets, []string{"USDT", "USD", "BTC"})
		assert.True(t, ok)
		assert.Equal(t, "XRP/EUR", symbol)
	})

	t.Run("reports an unlisted asset", func(t *testing.T) {
		_, ok := ResolveSymbol("DOGE", markets, []string{"USDT"})
		assert.False(t, ok)
	})

	t.Run("does not treat a longer base as a prefix match", func(t *testing.T) {
		symbol, ok := ResolveSymbol("BTC", []string{"BTCDOWN/USDT", "BTC/EUR"}, []string{"USDT"})
		assert.True(t, ok)
		assert.Equal(t, "BTC/EUR", symbol)
	})

	t.Run("nil preferences fall back to the defaults", func(t *testing.T) {
		symbol, ok := ResolveSymbol("ETH", []string{"ETH/BTC", "ETH/USD"}, nil)
		assert.True(t, ok)
		assert.Equal(t, "ETH/USD", symbol)
	})

	t.Run("lowercase input is canonicalized", func(t *testing.T) {
		symbol, ok := ResolveSymbol("eth", markets, []string{"usdt"})
		assert.True(t, ok)
		assert.Equal(t, "ETH/USDT", symbol)
	})

	t.Run("no markets means no symbol", func(t *testing.T) {
		_, ok := ResolveSymbol("ETH", nil, []string{"USDT"})
		assert.False(t, ok)
	})
}
