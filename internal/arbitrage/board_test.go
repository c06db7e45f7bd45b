package arbitrage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	board := NewBoard()

	cycles, last := board.Stats()
	assert.Zero(t, cycles)
	assert.True(t, last.IsZero())

	_, ok := board.Get("ETH")
	assert.False(t, ok)

	board.Update(AssetBoard{Asset: "ETH"})
	board.Update(AssetBoard{Asset: "BTC"})
	now := time.Now().UTC()
	board.CycleDone(now)

	t.Run("get returns the latest table", func(t *testing.T) {
		ab, ok := board.Get("ETH")
		require.True(t, ok)
		assert.Equal(t, "ETH", ab.Asset)
	})

	t.Run("all is sorted by asset", func(t *testing.T) {
		all := board.All()
		require.Len(t, all, 2)
		assert.Equal(t, "BTC", all[0].Asset)
		assert.Equal(t, "ETH", all[1].Asset)
	})

	t.Run("stats track cycles", func(t *testing.T) {
		cycles, last := board.Stats()
		assert.Equal(t, uint64(1), cycles)
		assert.Equal(t, now, last)
	})

	t.Run("update replaces, not merges", func(t *testing.T) {
		board.Update(AssetBoard{Asset: "ETH", Statuses: []string{"binance: no data"}})
		ab, ok := board.Get("ETH")
		require.True(t, ok)
		assert.Equal(t, []string{"binance: no data"}, ab.Statuses)
	})
}
