package arbitrage

import (
	"fmt"
	"sync"

	"crypto-arbitrage-dashboard/internal/domain"
)

// AlertMemory suppresses repeat alerts for materially unchanged conditions.
// Keys never expire within a process run: a persistent opportunity alerts at
// most once per distinct integer-truncated price pair, and again only when
// prices drift across a whole-unit boundary. Deliberately coarse, not a time
// window.
//
// State is constructed once at startup and threaded through cycles
// explicitly rather than living in a package global, so single cycles can be
// tested without process-wide side effects.
type AlertMemory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewAlertMemory() *AlertMemory {
	return &AlertMemory{seen: make(map[string]struct{})}
}

// DedupKey fingerprints an opportunity by asset, route and integer-truncated
// effective prices.
func DedupKey(o domain.Opportunity) string {
	return fmt.Sprintf("%s_%s_%s_%d_%d",
		o.Asset, o.BuyExchange, o.SellExchange, int64(o.BuyPrice), int64(o.SellPrice))
}

// ShouldAlert reports whether the opportunity clears the profit threshold
// and has not been alerted before under the same key.
func (m *AlertMemory) ShouldAlert(o domain.Opportunity, thresholdPercent float64) bool {
	if o.ProfitPercent <= thresholdPercent {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, fired := m.seen[DedupKey(o)]
	return !fired
}

// MarkAlerted records the alert unconditionally. It is called as soon as the
// decision to alert is made: even if delivery or the history append fails
// afterwards, a lost record is preferable to a duplicate future alert.
func (m *AlertMemory) MarkAlerted(o domain.Opportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[DedupKey(o)] = struct{}{}
}

// Len returns the number of distinct alerts fired so far.
func (m *AlertMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
