package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/arbitrage"
	"crypto-arbitrage-dashboard/internal/config"
	"crypto-arbitrage-dashboard/internal/domain"
)

type stubHistory struct {
	records []domain.Opportunity
	err     error
}

func (s stubHistory) ReadAll() ([]domain.Opportunity, error) {
	return s.records, s.err
}

func newTestServer(t *testing.T, history HistoryReader) (*FiberServer, *config.Store) {
	t.Helper()

	store, err := config.Load(t.TempDir())
	require.NoError(t, err)

	srv := New(store, arbitrage.NewBoard(), arbitrage.NewAlertMemory(), history, NewHub(zap.NewNop()), zap.NewNop())
	srv.RegisterFiberRoutes()
	return srv, store
}

func getJSON(t *testing.T, srv *FiberServer, path string, out any) int {
	t.Helper()

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func putJSON(t *testing.T, srv *FiberServer, path, body string, out any) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, stubHistory{})

	var body map[string]any
	status := getJSON(t, srv, "/api/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["cycles"])
	assert.Nil(t, body["last_cycle"], "no cycle has completed yet")
	assert.Equal(t, []any{"ETH"}, body["assets"])
}

func TestBoardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, stubHistory{})
	srv.board.Update(arbitrage.AssetBoard{
		Asset: "ETH",
		Rows: []domain.EffectiveQuote{{
			Quote:         domain.Quote{Exchange: "binance", Symbol: "ETH/USDT", Bid: 3500, Ask: 3501},
			FeePercent:    0.1,
			EffectiveBuy:  3504.501,
			EffectiveSell: 3496.5,
		}},
		Statuses:  []string{"kraken: no data"},
		UpdatedAt: time.Now(),
	})
	srv.board.CycleDone(time.Now())

	t.Run("full board", func(t *testing.T) {
		var boards []arbitrage.AssetBoard
		status := getJSON(t, srv, "/api/board", &boards)

		assert.Equal(t, http.StatusOK, status)
		require.Len(t, boards, 1)
		assert.Equal(t, "ETH", boards[0].Asset)
		require.Len(t, boards[0].Rows, 1)
		assert.Equal(t, "binance", boards[0].Rows[0].Exchange)
	})

	t.Run("asset lookup is case insensitive", func(t *testing.T) {
		var board arbitrage.AssetBoard
		status := getJSON(t, srv, "/api/board/eth", &board)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ETH", board.Asset)
		assert.Equal(t, []string{"kraken: no data"}, board.Statuses)
	})

	t.Run("unknown asset is 404", func(t *testing.T) {
		status := getJSON(t, srv, "/api/board/DOGE", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	records := make([]domain.Opportunity, 5)
	for i := range records {
		records[i] = domain.Opportunity{
			Asset:          "ETH",
			BuyExchange:    "binance",
			SellExchange:   "kraken",
			ProfitAbsolute: float64(i + 1),
		}
	}
	srv, _ := newTestServer(t, stubHistory{records: records})

	t.Run("default limit returns everything", func(t *testing.T) {
		var body struct {
			Count   int                  `json:"count"`
			Records []domain.Opportunity `json:"records"`
		}
		status := getJSON(t, srv, "/api/history", &body)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 5, body.Count)
		require.Len(t, body.Records, 5)
	})

	t.Run("limit keeps the newest records", func(t *testing.T) {
		var body struct {
			Count   int                  `json:"count"`
			Records []domain.Opportunity `json:"records"`
		}
		status := getJSON(t, srv, "/api/history?limit=2", &body)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Records, 2)
		assert.Equal(t, float64(4), body.Records[0].ProfitAbsolute)
		assert.Equal(t, float64(5), body.Records[1].ProfitAbsolute)
	})
}

func TestHistoryEndpointUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, stubHistory{err: errors.New("disk gone")})

	status := getJSON(t, srv, "/api/history", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestSettingsEndpoints(t *testing.T) {
	srv, store := newTestServer(t, stubHistory{})

	t.Run("get exposes durations in seconds without credentials", func(t *testing.T) {
		var body map[string]any
		status := getJSON(t, srv, "/api/settings", &body)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(60), body["poll_interval_seconds"])
		assert.Equal(t, float64(10), body["request_timeout_seconds"])
		assert.NotContains(t, body, "notify")
	})

	t.Run("partial update applies on the store", func(t *testing.T) {
		var body map[string]any
		status := putJSON(t, srv, "/api/settings",
			`{"profit_threshold_percent":2.5,"assets":[" eth ","sol"]}`, &body)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2.5, body["profit_threshold_percent"])

		cfg := store.Current()
		assert.Equal(t, 2.5, cfg.ProfitThresholdPercent)
		assert.Equal(t, []string{"ETH", "SOL"}, cfg.Assets)
		assert.Equal(t, time.Minute, cfg.PollInterval, "untouched fields keep their value")
	})

	t.Run("exchange toggle applies on the store", func(t *testing.T) {
		status := putJSON(t, srv, "/api/settings",
			`{"exchanges":{"binance":{"enabled":false}}}`, nil)

		assert.Equal(t, http.StatusOK, status)
		assert.NotContains(t, store.Current().EnabledExchanges(), "binance")
	})

	t.Run("invalid update is rejected and keeps previous settings", func(t *testing.T) {
		status := putJSON(t, srv, "/api/settings", `{"poll_interval_seconds":1}`, nil)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, time.Minute, store.Current().PollInterval)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		status := putJSON(t, srv, "/api/settings", `{"assets":`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	srv, _ := newTestServer(t, stubHistory{})

	status := getJSON(t, srv, "/ws", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
