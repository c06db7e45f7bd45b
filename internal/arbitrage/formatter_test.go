package arbitrage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-arbitrage-dashboard/internal/domain"
)

func TestFormat(t *testing.T) {
	fees := FeeSchedule{
		DefaultTakerPercent: 0.2,
		TakerPercent:        map[string]float64{"kraken": 0.26},
		TransferFee:         5,
	}
	opp := domain.Opportunity{
		Asset:          "ETH",
		BuyExchange:    "binance",
		BuySymbol:      "ETH/USDT",
		BuyPrice:       3500.123456,
		SellExchange:   "kraken",
		SellSymbol:     "ETH/USD",
		SellPrice:      3542.5,
		ProfitAbsolute: 37.376544,
		ProfitPercent:  1.0679,
		Timestamp:      time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	message, record := Format(opp, fees)

	t.Run("message layout", func(t *testing.T) {
		lines := strings.Split(message, "\n")
		require.Len(t, lines, 6)
		assert.Equal(t, "*Arbitrage Alert - ETH*", lines[0])
		assert.Equal(t, "Buy: binance at 3500.123456 (ETH/USDT)", lines[1])
		assert.Equal(t, "Sell: kraken at 3542.500000 (ETH/USD)", lines[2])
		assert.Equal(t, "Profit/unit: 37.376544 USD", lines[3])
		assert.Equal(t, "Profit %: 1.0679%", lines[4])

		ts := strings.TrimPrefix(lines[5], "Timestamp: ")
		parsed, err := time.Parse(time.RFC3339, ts)
		require.NoError(t, err)
		assert.Equal(t, opp.Timestamp, parsed)
	})

	t.Run("record carries the fee assumptions", func(t *testing.T) {
		assert.Equal(t, opp, record.Opportunity)
		assert.Equal(t, 0.2, record.BuyFeePercent)
		assert.Equal(t, 0.26, record.SellFeePercent)
		assert.Equal(t, 5.0, record.TransferFee)
	})
}
