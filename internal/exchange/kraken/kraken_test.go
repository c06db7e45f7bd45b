package kraken

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKrakenExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/0/public/AssetPairs":
			w.Write([]byte(`{"error":[],"result":{
				"XXBTZUSD":{"wsname":"XBT/USD"},
				"XETHZUSD":{"wsname":"ETH/USD"},
				"NOWSNAME":{"wsname":"BROKEN"}}}`))
		case "/0/public/Ticker":
			assert.Equal(t, "XXBTZUSD", r.URL.Query().Get("pair"))
			w.Write([]byte(`{"error":[],"result":{"XXBTZUSD":{
				"a":["97000.50000","1","1.000"],
				"b":["96999.10000","2","2.000"],
				"c":["97000.00000","0.01000000"]}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	exchange := CreateClient(zap.NewNop())
	exchange.apiBaseUrl = srv.URL

	assert.Equal(t, "kraken", exchange.GetName())

	markets, err := exchange.LoadMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH/USD", "BTC/USD"}, markets, "XBT folds into BTC, wsname-less pairs are dropped")

	t.Run("ticker reads the a/b/c arrays", func(t *testing.T) {
		ticker, err := exchange.FetchTicker(context.Background(), "BTC/USD")
		require.NoError(t, err)
		require.NotNil(t, ticker.Bid)
		require.NotNil(t, ticker.Ask)
		require.NotNil(t, ticker.Last)
		assert.Equal(t, 96999.10, *ticker.Bid)
		assert.Equal(t, 97000.50, *ticker.Ask)
		assert.Equal(t, 97000.00, *ticker.Last)
	})

	t.Run("unknown symbol is rejected locally", func(t *testing.T) {
		_, err := exchange.FetchTicker(context.Background(), "XBT/USD")
		assert.Error(t, err, "only the unaliased name is canonical")
	})
}

func TestKrakenExchangeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":["EService:Unavailable"],"result":{}}`))
	}))
	defer srv.Close()

	exchange := CreateClient(zap.NewNop())
	exchange.apiBaseUrl = srv.URL

	_, err := exchange.LoadMarkets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EService:Unavailable")
}
