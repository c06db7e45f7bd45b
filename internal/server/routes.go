package server

import (
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"crypto-arbitrage-dashboard/internal/config"
)

func (s *FiberServer) RegisterFiberRoutes() {
	api := s.App.Group("/api")
	api.Get("/health", s.healthHandler)
	api.Get("/board", s.boardHandler)
	api.Get("/board/:asset", s.assetBoardHandler)
	api.Get("/history", s.historyHandler)
	api.Get("/settings", s.getSettingsHandler)
	api.Put("/settings", s.updateSettingsHandler)

	s.App.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.App.Get("/ws", websocket.New(s.hub.Serve))
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	cfg := s.settings.Current()
	cycles, lastCycle := s.board.Stats()

	var last any
	if !lastCycle.IsZero() {
		last = lastCycle.UTC().Format(time.RFC3339)
	}

	return c.JSON(fiber.Map{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"cycles":         cycles,
		"last_cycle":     last,
		"alerts_fired":   s.memory.Len(),
		"assets":         cfg.Assets,
		"exchanges":      cfg.EnabledExchanges(),
	})
}

func (s *FiberServer) boardHandler(c *fiber.Ctx) error {
	return c.JSON(s.board.All())
}

func (s *FiberServer) assetBoardHandler(c *fiber.Ctx) error {
	asset := strings.ToUpper(c.Params("asset"))
	board, ok := s.board.Get(asset)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no board for asset " + asset,
		})
	}
	return c.JSON(board)
}

func (s *FiberServer) historyHandler(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	records, err := s.history.ReadAll()
	if err != nil {
		s.log.Error("Failed to read alert history: " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "history unavailable",
		})
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	return c.JSON(fiber.Map{
		"count":   len(records),
		"records": records,
	})
}

// settingsResponse is the operator-facing view of the runtime settings.
// Durations are exposed in seconds; credentials never appear.
type settingsResponse struct {
	Assets                 []string                         `json:"assets"`
	QuotePreferences       []string                         `json:"quote_preferences"`
	PollIntervalSeconds    float64                          `json:"poll_interval_seconds"`
	RequestTimeoutSeconds  float64                          `json:"request_timeout_seconds"`
	ProfitThresholdPercent float64                          `json:"profit_threshold_percent"`
	TransferFee            float64                          `json:"transfer_fee"`
	DefaultTakerFeePercent float64                          `json:"default_taker_fee_percent"`
	Exchanges              map[string]config.ExchangeConfig `json:"exchanges"`
}

func settingsView(cfg config.Config) settingsResponse {
	return settingsResponse{
		Assets:                 cfg.Assets,
		QuotePreferences:       cfg.QuotePreferences,
		PollIntervalSeconds:    cfg.PollInterval.Seconds(),
		RequestTimeoutSeconds:  cfg.RequestTimeout.Seconds(),
		ProfitThresholdPercent: cfg.ProfitThresholdPercent,
		TransferFee:            cfg.TransferFee,
		DefaultTakerFeePercent: cfg.DefaultTakerFeePercent,
		Exchanges:              cfg.Exchanges,
	}
}

func (s *FiberServer) getSettingsHandler(c *fiber.Ctx) error {
	return c.JSON(settingsView(s.settings.Current()))
}

// settingsUpdate carries a partial update; absent fields keep their value.
type settingsUpdate struct {
	Assets                 *[]string                 `json:"assets"`
	QuotePreferences       *[]string                 `json:"quote_preferences"`
	PollIntervalSeconds    *float64                  `json:"poll_interval_seconds"`
	ProfitThresholdPercent *float64                  `json:"profit_threshold_percent"`
	TransferFee            *float64                  `json:"transfer_fee"`
	DefaultTakerFeePercent *float64                  `json:"default_taker_fee_percent"`
	Exchanges              map[string]exchangeUpdate `json:"exchanges"`
}

type exchangeUpdate struct {
	Enabled         *bool    `json:"enabled"`
	TakerFeePercent *float64 `json:"taker_fee_percent"`
}

func (s *FiberServer) updateSettingsHandler(c *fiber.Ctx) error {
	var update settingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid settings payload: " + err.Error(),
		})
	}

	next, err := s.settings.Apply(func(cfg *config.Config) {
		if update.Assets != nil {
			assets := make([]string, 0, len(*update.Assets))
			for _, asset := range *update.Assets {
				if trimmed := strings.ToUpper(strings.TrimSpace(asset)); trimmed != "" {
					assets = append(assets, trimmed)
				}
			}
			cfg.Assets = assets
		}
		if update.QuotePreferences != nil {
			cfg.QuotePreferences = *update.QuotePreferences
		}
		if update.PollIntervalSeconds != nil {
			cfg.PollInterval = time.Duration(*update.PollIntervalSeconds * float64(time.Second))
		}
		if update.ProfitThresholdPercent != nil {
			cfg.ProfitThresholdPercent = *update.ProfitThresholdPercent
		}
		if update.TransferFee != nil {
			cfg.TransferFee = *update.TransferFee
		}
		if update.DefaultTakerFeePercent != nil {
			cfg.DefaultTakerFeePercent = *update.DefaultTakerFeePercent
		}
		for id, ex := range update.Exchanges {
			current := cfg.Exchanges[id]
			if ex.Enabled != nil {
				current.Enabled = *ex.Enabled
			}
			if ex.TakerFeePercent != nil {
				current.TakerFeePercent = *ex.TakerFeePercent
			}
			cfg.Exchanges[id] = current
		}
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.log.Info("Settings updated via API")
	return c.JSON(settingsView(next))
}
