package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/domain"
)

type fakeSender struct {
	name  string
	err   error
	calls int
	last  string
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) Send(_ context.Context, _ domain.AlertRecord, message string) error {
	s.calls++
	s.last = message
	return s.err
}

func TestFanout(t *testing.T) {
	rec := domain.AlertRecord{Opportunity: domain.Opportunity{Asset: "ETH"}}

	t.Run("delivers to every sender", func(t *testing.T) {
		first := &fakeSender{name: "first"}
		second := &fakeSender{name: "second"}
		fanout := NewFanout(zap.NewNop(), first, second)

		err := fanout.Alert(context.Background(), rec, "hello")
		require.NoError(t, err)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
		assert.Equal(t, "hello", second.last)
	})

	t.Run("one failing channel does not stop the rest", func(t *testing.T) {
		failing := &fakeSender{name: "telegram", err: errors.New("429")}
		healthy := &fakeSender{name: "discord"}
		fanout := NewFanout(zap.NewNop(), failing, healthy)

		err := fanout.Alert(context.Background(), rec, "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram")
		assert.Equal(t, 1, healthy.calls, "delivery continued past the failure")
	})

	t.Run("no senders is a quiet no-op", func(t *testing.T) {
		fanout := NewFanout(zap.NewNop())
		assert.NoError(t, fanout.Alert(context.Background(), rec, "hello"))
		assert.Zero(t, fanout.Len())
	})
}
