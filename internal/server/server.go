package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/arbitrage"
	"crypto-arbitrage-dashboard/internal/config"
	"crypto-arbitrage-dashboard/internal/domain"
)

// HistoryReader serves the history endpoint.
type HistoryReader interface {
	ReadAll() ([]domain.Opportunity, error)
}

type FiberServer struct {
	*fiber.App

	settings *config.Store
	board    *arbitrage.Board
	memory   *arbitrage.AlertMemory
	history  HistoryReader
	hub      *Hub
	log      *zap.Logger
	started  time.Time
}

func New(settings *config.Store, board *arbitrage.Board, memory *arbitrage.AlertMemory, history HistoryReader, hub *Hub, log *zap.Logger) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "crypto-arbitrage-dashboard",
			AppName:      "crypto-arbitrage-dashboard",
		}),

		settings: settings,
		board:    board,
		memory:   memory,
		history:  history,
		hub:      hub,
		log:      log,
		started:  time.Now(),
	}

	return server
}
