package huobi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHuobiExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/common/symbols":
			w.Write([]byte(`{"status":"ok","data":[
				{"base-currency":"eth","quote-currency":"usdt","symbol":"ethusdt","state":"online"},
				{"base-currency":"btc","quote-currency":"usdt","symbol":"btcusdt","state":"offline"}]}`))
		case "/market/detail/merged":
			assert.Equal(t, "ethusdt", r.URL.Query().Get("symbol"))
			w.Write([]byte(`{"status":"ok","tick":{
				"close":3500.1,
				"bid":[3499.9,1.52],
				"ask":[3500.3,0.87]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	exchange := CreateClient(zap.NewNop())
	exchange.apiBaseUrl = srv.URL

	assert.Equal(t, "huobipro", exchange.GetName())

	markets, err := exchange.LoadMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH/USDT"}, markets, "lowercase currencies uppercase, offline symbols drop")

	t.Run("ticker reads price out of the price/size pairs", func(t *testing.T) {
		ticker, err := exchange.FetchTicker(context.Background(), "ETH/USDT")
		require.NoError(t, err)
		require.NotNil(t, ticker.Bid)
		require.NotNil(t, ticker.Ask)
		require.NotNil(t, ticker.Last)
		assert.Equal(t, 3499.9, *ticker.Bid)
		assert.Equal(t, 3500.3, *ticker.Ask)
		assert.Equal(t, 3500.1, *ticker.Last)
	})
}

func TestHuobiExchangeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","err-msg":"invalid symbol"}`))
	}))
	defer srv.Close()

	exchange := CreateClient(zap.NewNop())
	exchange.apiBaseUrl = srv.URL

	_, err := exchange.LoadMarkets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid symbol")
}
