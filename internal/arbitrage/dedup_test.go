package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crypto-arbitrage-dashboard/internal/domain"
)

func opportunity(buyPrice, sellPrice, profitPct float64) domain.Opportunity {
	return domain.Opportunity{
		Asset:         "ETH",
		BuyExchange:   "binance",
		SellExchange:  "kraken",
		BuyPrice:      buyPrice,
		SellPrice:     sellPrice,
		ProfitPercent: profitPct,
	}
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "ETH_binance_kraken_3500_3512", DedupKey(opportunity(3500.75, 3512.20, 1.0)))

	t.Run("sub-unit drift maps to the same key", func(t *testing.T) {
		assert.Equal(t,
			DedupKey(opportunity(3500.10, 3512.90, 1.0)),
			DedupKey(opportunity(3500.99, 3512.01, 2.0)))
	})

	t.Run("route is part of the key", func(t *testing.T) {
		other := opportunity(3500.75, 3512.20, 1.0)
		other.SellExchange = "okx"
		assert.NotEqual(t, DedupKey(opportunity(3500.75, 3512.20, 1.0)), DedupKey(other))
	})
}

func TestAlertMemory(t *testing.T) {
	t.Run("fires once per key", func(t *testing.T) {
		memory := NewAlertMemory()
		opp := opportunity(3500.75, 3512.20, 1.0)

		assert.True(t, memory.ShouldAlert(opp, 0.5))
		memory.MarkAlerted(opp)

		assert.False(t, memory.ShouldAlert(opp, 0.5))
		assert.False(t, memory.ShouldAlert(opportunity(3500.10, 3512.90, 1.5), 0.5),
			"sub-unit price drift is the same condition")
		assert.Equal(t, 1, memory.Len())
	})

	t.Run("whole-unit drift fires again", func(t *testing.T) {
		memory := NewAlertMemory()
		memory.MarkAlerted(opportunity(3500.75, 3512.20, 1.0))

		assert.True(t, memory.ShouldAlert(opportunity(3501.10, 3512.20, 1.0), 0.5))
	})

	t.Run("threshold is strict", func(t *testing.T) {
		memory := NewAlertMemory()

		assert.False(t, memory.ShouldAlert(opportunity(100, 101, 0.5), 0.5))
		assert.False(t, memory.ShouldAlert(opportunity(100, 99, -1.0), 0.5))
		assert.True(t, memory.ShouldAlert(opportunity(100, 101, 0.51), 0.5))
	})
}
