// Package history persists fired alerts to an append-only CSV file so runs
// can be compared and charted outside the dashboard.
package history

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"crypto-arbitrage-dashboard/internal/domain"
)

var header = []string{
	"timestamp",
	"asset",
	"buy_exchange",
	"buy_price",
	"sell_exchange",
	"sell_price",
	"profit_absolute",
	"profit_percent",
}

// CSVLedger appends one row per alert. The header is written once, when the
// file is created or found empty. Appends reopen the file each time so an
// externally rotated or deleted file heals on the next alert.
type CSVLedger struct {
	mu   sync.Mutex
	path string
}

func NewCSVLedger(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

// Append writes the record as a single CSV row.
func (l *CSVLedger) Append(rec domain.AlertRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row(rec.Opportunity)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ReadAll returns every parseable row in file order. A missing file is an
// empty history, not an error, and malformed rows are skipped so one bad
// line cannot take the history endpoint down.
func (l *CSVLedger) ReadAll() ([]domain.Opportunity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []domain.Opportunity
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if opp, ok := parseRow(fields); ok {
			out = append(out, opp)
		}
	}
	return out, nil
}

func row(o domain.Opportunity) []string {
	return []string{
		o.Timestamp.UTC().Format(time.RFC3339Nano),
		o.Asset,
		o.BuyExchange,
		formatPrice(o.BuyPrice),
		o.SellExchange,
		formatPrice(o.SellPrice),
		formatPrice(o.ProfitAbsolute),
		formatPrice(o.ProfitPercent),
	}
}

func parseRow(fields []string) (domain.Opportunity, bool) {
	if len(fields) != len(header) || fields[0] == header[0] {
		return domain.Opportunity{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return domain.Opportunity{}, false
	}
	buyPrice, err1 := strconv.ParseFloat(fields[3], 64)
	sellPrice, err2 := strconv.ParseFloat(fields[5], 64)
	profitAbs, err3 := strconv.ParseFloat(fields[6], 64)
	profitPct, err4 := strconv.ParseFloat(fields[7], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return domain.Opportunity{}, false
	}
	return domain.Opportunity{
		Asset:          fields[1],
		BuyExchange:    fields[2],
		BuyPrice:       buyPrice,
		SellExchange:   fields[4],
		SellPrice:      sellPrice,
		ProfitAbsolute: profitAbs,
		ProfitPercent:  profitPct,
		Timestamp:      ts,
	}, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
