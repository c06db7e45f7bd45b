package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/arbitrage"
)

func TestHubWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())

	assert.Zero(t, hub.Clients())

	assert.NotPanics(t, func() {
		hub.PublishCycle([]arbitrage.AssetBoard{{Asset: "ETH", UpdatedAt: time.Now()}})
	})
}
