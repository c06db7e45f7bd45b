package arbitrage

import (
	"sort"
	"sync"
	"time"

	"crypto-arbitrage-dashboard/internal/domain"
)

// AssetBoard is one asset's dashboard table for the most recent cycle: the
// fee-adjusted quote per exchange (cheapest buy first), the per-exchange
// exclusion notes, and the best opportunity if one exists.
type AssetBoard struct {
	Asset       string                  `json:"asset"`
	Rows        []domain.EffectiveQuote `json:"rows"`
	Statuses    []string                `json:"statuses,omitempty"`
	Opportunity *domain.Opportunity     `json:"opportunity,omitempty"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Board is the shared snapshot the dashboard server reads from. The polling
// loop is the only writer; readers get copies.
type Board struct {
	mu        sync.RWMutex
	assets    map[string]AssetBoard
	cycles    uint64
	lastCycle time.Time
}

func NewBoard() *Board {
	return &Board{assets: make(map[string]AssetBoard)}
}

// Update replaces one asset's table.
func (b *Board) Update(ab AssetBoard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assets[ab.Asset] = ab
}

// CycleDone records that a full cycle finished at the given time.
func (b *Board) CycleDone(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cycles++
	b.lastCycle = at
}

// Get returns one asset's latest table.
func (b *Board) Get(asset string) (AssetBoard, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ab, ok := b.assets[asset]
	return ab, ok
}

// All returns every asset's latest table, sorted by asset for stable output.
func (b *Board) All() []AssetBoard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]AssetBoard, 0, len(b.assets))
	for _, ab := range b.assets {
		out = append(out, ab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}

// Stats returns the number of completed cycles and when the last finished.
func (b *Board) Stats() (uint64, time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cycles, b.lastCycle
}
