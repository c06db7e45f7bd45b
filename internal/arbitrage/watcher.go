package arbitrage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/config"
	"crypto-arbitrage-dashboard/internal/domain"
)

// Settings yields the configuration snapshot a cycle runs with. Settings are
// re-read at the start of every cycle, so operator changes apply on the next
// cycle without a restart.
type Settings interface {
	Current() config.Config
}

// Ledger persists alert records. Append failures are surfaced as warnings
// and never block the cycle.
type Ledger interface {
	Append(rec domain.AlertRecord) error
}

// Notifier delivers a formatted alert. Delivery failures are surfaced as
// warnings and never block the history append or the next cycle.
type Notifier interface {
	Alert(ctx context.Context, rec domain.AlertRecord, message string) error
}

// CyclePublisher receives every completed cycle, e.g. to push it to
// connected dashboard clients.
type CyclePublisher interface {
	PublishCycle(boards []AssetBoard)
}

// WatcherOptions wires a Watcher. Notifier and Publisher are optional.
type WatcherOptions struct {
	Settings  Settings
	Exchanges map[string]domain.Exchanger
	Memory    *AlertMemory
	Ledger    Ledger
	Notifier  Notifier
	Board     *Board
	Publisher CyclePublisher
	Log       *zap.Logger
	CycleLog  *zap.Logger
}

// Watcher re-evaluates all monitored assets on a fixed schedule. At most one
// cycle is in flight at a time; a cycle that outlasts the interval causes
// the next tick to be skipped rather than overlapped.
type Watcher struct {
	settings  Settings
	exchanges map[string]domain.Exchanger
	memory    *AlertMemory
	ledger    Ledger
	notifier  Notifier
	board     *Board
	publisher CyclePublisher
	log       *zap.Logger
	cycleLog  *zap.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	inFlight atomic.Bool
}

func NewWatcher(opts WatcherOptions) *Watcher {
	return &Watcher{
		settings:  opts.Settings,
		exchanges: opts.Exchanges,
		memory:    opts.Memory,
		ledger:    opts.Ledger,
		notifier:  opts.Notifier,
		board:     opts.Board,
		publisher: opts.Publisher,
		log:       opts.Log,
		cycleLog:  opts.CycleLog,
	}
}

// Start launches the polling loop: an immediate first cycle, then one per
// interval until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx)
}

// Stop cancels the loop and waits for any in-flight cycle to finish.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	interval := w.settings.Current().PollInterval
	w.log.Info("Start watching " + strings.Join(w.settings.Current().Assets, ", ") + " every " + interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stop watching")
			return
		case <-ticker.C:
			w.RunCycle(ctx)
			if next := w.settings.Current().PollInterval; next != interval {
				w.log.Info("Polling interval changed from " + interval.String() + " to " + next.String())
				interval = next
				ticker.Reset(next)
			}
		}
	}
}

// RunCycle evaluates every monitored asset once. Exported so a single cycle
// can be driven in isolation.
func (w *Watcher) RunCycle(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.log.Warn("Previous cycle still running, skipping this tick")
		return
	}
	defer w.inFlight.Store(false)

	cfg := w.settings.Current()

	exchanges := w.availableExchanges(cfg)
	if len(exchanges) == 0 || len(cfg.Assets) == 0 {
		w.log.Error("Cycle not run: no exchanges or no assets configured")
		return
	}

	fees := FeeSchedule{
		DefaultTakerPercent: cfg.DefaultTakerFeePercent,
		TakerPercent:        takerOverrides(cfg),
		TransferFee:         cfg.TransferFee,
	}

	boards := make([]AssetBoard, 0, len(cfg.Assets))
	for _, asset := range cfg.Assets {
		ab := w.evaluateAsset(ctx, asset, exchanges, cfg, fees)
		w.board.Update(ab)
		boards = append(boards, ab)
	}
	w.board.CycleDone(time.Now().UTC())

	if jsonBytes, err := json.Marshal(boards); err != nil {
		w.log.Error("Failed to marshal cycle output: " + err.Error())
	} else {
		w.cycleLog.Info(string(jsonBytes))
	}

	if w.publisher != nil {
		w.publisher.PublishCycle(boards)
	}
}

// availableExchanges intersects the enabled exchange ids with the clients
// actually wired in, preserving the stable enabled order.
func (w *Watcher) availableExchanges(cfg config.Config) []string {
	ids := make([]string, 0, len(w.exchanges))
	for _, id := range cfg.EnabledExchanges() {
		if _, ok := w.exchanges[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func takerOverrides(cfg config.Config) map[string]float64 {
	out := make(map[string]float64, len(cfg.Exchanges))
	for id, ex := range cfg.Exchanges {
		if ex.TakerFeePercent > 0 {
			out[id] = ex.TakerFeePercent
		}
	}
	return out
}

type fetchResult struct {
	quote  domain.Quote
	status string
	ok     bool
}

func (w *Watcher) evaluateAsset(ctx context.Context, asset string, exchanges []string, cfg config.Config, fees FeeSchedule) AssetBoard {
	results := make([]fetchResult, len(exchanges))

	var wg sync.WaitGroup
	for i, id := range exchanges {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = w.fetchQuote(ctx, id, asset, cfg)
		}(i, id)
	}
	wg.Wait()

	quotes := make([]domain.Quote, 0, len(results))
	statuses := make([]string, 0)
	for _, res := range results {
		if res.ok {
			quotes = append(quotes, res.quote)
		} else {
			statuses = append(statuses, res.status)
		}
	}

	rows := EffectiveQuotes(quotes, fees)
	opp, found := Compute(asset, rows, fees.TransferFee, time.Now())

	var oppPtr *domain.Opportunity
	if found {
		oppPtr = &opp
		w.maybeAlert(ctx, opp, cfg, fees)
	} else if len(quotes) < 2 {
		w.log.Info("Not enough data for " + asset + ": " + strconv.Itoa(len(quotes)) + " usable quote(s)")
	}

	SortByEffectiveBuy(rows)

	return AssetBoard{
		Asset:       asset,
		Rows:        rows,
		Statuses:    statuses,
		Opportunity: oppPtr,
		UpdatedAt:   time.Now().UTC(),
	}
}

// fetchQuote resolves and fetches one exchange's quote for an asset, bounded
// by the per-request timeout so a stalled exchange cannot hold up the cycle.
// Every failure mode degrades to an exclusion note for the board.
func (w *Watcher) fetchQuote(ctx context.Context, exchangeID, asset string, cfg config.Config) fetchResult {
	ex := w.exchanges[exchangeID]

	cctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	markets, err := ex.LoadMarkets(cctx)
	if err != nil {
		w.log.Warn("Failed to load markets for " + exchangeID + ": " + err.Error())
		return fetchResult{status: exchangeID + ": no data"}
	}

	symbol, ok := ResolveSymbol(asset, markets, cfg.QuotePreferences)
	if !ok {
		return fetchResult{status: exchangeID + ": not listed"}
	}

	ticker, err := ex.FetchTicker(cctx, symbol)
	if err != nil {
		w.log.Warn("Failed to fetch " + symbol + " ticker from " + exchangeID + ": " + err.Error())
		return fetchResult{status: exchangeID + ": no data"}
	}

	quote, ok := Normalize(exchangeID, symbol, ticker)
	if !ok {
		return fetchResult{status: exchangeID + ": no bid/ask"}
	}
	return fetchResult{quote: quote, ok: true}
}

// maybeAlert runs the dedup gate and, when it fires, marks the key before
// attempting delivery and persistence. Either side effect may fail without
// affecting the other; a lost history row is accepted over a repeat alert.
func (w *Watcher) maybeAlert(ctx context.Context, opp domain.Opportunity, cfg config.Config, fees FeeSchedule) {
	if !w.memory.ShouldAlert(opp, cfg.ProfitThresholdPercent) {
		return
	}
	w.memory.MarkAlerted(opp)

	message, record := Format(opp, fees)
	w.log.Info("Arbitrage alert for " + opp.Asset + ": buy " + opp.BuyExchange + ", sell " + opp.SellExchange)

	if w.notifier != nil {
		if err := w.notifier.Alert(ctx, record, message); err != nil {
			w.log.Warn("Alert delivery failed for " + opp.Asset + ": " + err.Error())
		}
	}
	if w.ledger != nil {
		if err := w.ledger.Append(record); err != nil {
			w.log.Warn("History append failed for " + opp.Asset + ": " + err.Error())
		}
	}
}
