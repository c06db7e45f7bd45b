// Package notify delivers fired alerts to operator-facing channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/domain"
)

// Sender delivers one alert over a single channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, rec domain.AlertRecord, message string) error
}

// Fanout sends every alert to all configured senders. One channel failing
// never stops delivery to the others.
type Fanout struct {
	senders []Sender
	log     *zap.Logger
}

func NewFanout(log *zap.Logger, senders ...Sender) *Fanout {
	return &Fanout{senders: senders, log: log}
}

// Alert attempts delivery on every sender and joins the failures.
func (f *Fanout) Alert(ctx context.Context, rec domain.AlertRecord, message string) error {
	var errs []error
	for _, s := range f.senders {
		if err := s.Send(ctx, rec, message); err != nil {
			f.log.Warn("Failed to send alert via " + s.Name() + ": " + err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Len reports how many senders are wired.
func (f *Fanout) Len() int {
	return len(f.senders)
}
