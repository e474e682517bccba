// Package store persists the in-memory trade collections as flat CSV files:
// one combined live file with a trade_type discriminator column and one
// history file. Saves are whole-file overwrites; loads degrade to empty
// collections on any problem rather than failing the caller.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/normalize"
)

const (
	liveFileName    = "live_trades.csv"
	historyFileName = "trade_history.csv"
)

// liveColumns is the fixed layout of the combined live file.
var liveColumns = []string{
	"trade_type", "trade_id", "trade_date", "book", "strategy", "side",
	"index", "bbg_ticker", "payoff_type", "strike", "notional_mm", "contracts",
	"expiry", "index1", "cond1", "strike1", "index2", "cond2", "strike2",
	"logic", "cost_bp", "cost_usd", "mars_id", "notes", "source",
	"delta", "gamma", "theta", "vega", "market_value", "mark", "mtd_pnl", "inception_pnl",
}

// historyColumns appends the close fields to the live layout.
var historyColumns = append(append([]string{}, liveColumns...),
	"status", "unwind_date", "unwind_price", "unwind_value", "pnl_usd", "unwind_notes",
)

type CSVStore struct {
	DataDir string
	Logger  *zap.Logger
}

func New(dataDir string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{DataDir: dataDir, Logger: logger}
}

func (s *CSVStore) LivePath() string    { return filepath.Join(s.DataDir, liveFileName) }
func (s *CSVStore) HistoryPath() string { return filepath.Join(s.DataDir, historyFileName) }

// SaveLive writes both live sub-collections as one file. An empty blotter
// still produces a header-only file so a stale file never survives a save.
func (s *CSVStore) SaveLive(vanilla, exotic []models.Trade) error {
	if err := s.ensureDataDir(); err != nil {
		return err
	}
	records := make([][]string, 0, len(vanilla)+len(exotic))
	for _, t := range vanilla {
		t.TradeType = models.TradeTypeVanilla
		records = append(records, encodeTrade(t))
	}
	for _, t := range exotic {
		t.TradeType = models.TradeTypeExotic
		records = append(records, encodeTrade(t))
	}
	if err := writeFile(s.LivePath(), liveColumns, records); err != nil {
		return fmt.Errorf("save live trades: %w", err)
	}
	s.Logger.Info("saved live trades",
		zap.Int("vanilla", len(vanilla)),
		zap.Int("exotic", len(exotic)),
		zap.String("path", s.LivePath()),
	)
	return nil
}

// SaveHistory writes the history collection, header-only when empty.
func (s *CSVStore) SaveHistory(history []models.ClosedTrade) error {
	if err := s.ensureDataDir(); err != nil {
		return err
	}
	records := make([][]string, 0, len(history))
	for _, t := range history {
		records = append(records, encodeClosed(t))
	}
	if err := writeFile(s.HistoryPath(), historyColumns, records); err != nil {
		return fmt.Errorf("save trade history: %w", err)
	}
	s.Logger.Info("saved trade history", zap.Int("count", len(history)))
	return nil
}

// LoadLive restores the two live sub-collections, splitting the combined
// file on the trade_type discriminator. A missing file means no data yet; a
// malformed file degrades to empty collections with a warning.
func (s *CSVStore) LoadLive() (vanilla, exotic []models.Trade) {
	header, records, ok := s.readFile(s.LivePath())
	if !ok {
		return nil, nil
	}
	cols := columnIndex(header)
	for _, rec := range records {
		t := decodeTrade(cols, rec)
		if t.TradeType == models.TradeTypeExotic {
			exotic = append(exotic, t)
		} else {
			vanilla = append(vanilla, t)
		}
	}
	return vanilla, exotic
}

// LoadHistory restores the history collection with the same degrade rules.
func (s *CSVStore) LoadHistory() []models.ClosedTrade {
	header, records, ok := s.readFile(s.HistoryPath())
	if !ok {
		return nil
	}
	cols := columnIndex(header)
	history := make([]models.ClosedTrade, 0, len(records))
	for _, rec := range records {
		history = append(history, decodeClosed(cols, rec))
	}
	return history
}

func (s *CSVStore) ensureDataDir() error {
	if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// readFile returns header and data rows, or ok=false when the file is
// absent or unreadable. Unreadable is logged, absent is not an event.
func (s *CSVStore) readFile(path string) ([]string, [][]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.Logger.Warn("could not open data file", zap.String("path", path), zap.Error(err))
		}
		return nil, nil, false
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		s.Logger.Warn("malformed data file, starting empty", zap.String("path", path), zap.Error(err))
		return nil, nil, false
	}
	if len(records) == 0 {
		return nil, nil, false
	}
	return records[0], records[1:], true
}

func writeFile(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeTrade(t models.Trade) []string {
	return []string{
		t.TradeType,
		t.TradeID,
		fmtDate(t.TradeDate),
		t.Book,
		t.Strategy,
		t.Side,
		t.Index,
		t.BBGTicker,
		t.PayoffType,
		fmtDecimalPtr(t.Strike),
		fmtDecimalPtr(t.NotionalMM),
		fmtDecimalPtr(t.Contracts),
		fmtDate(t.Expiry),
		t.Index1,
		t.Cond1,
		fmtDecimalPtr(t.Strike1),
		t.Index2,
		t.Cond2,
		fmtDecimalPtr(t.Strike2),
		t.Logic,
		fmtDecimalPtr(t.CostBP),
		fmtDecimalPtr(t.CostUSD),
		t.MarsID,
		t.Notes,
		t.Source,
		t.Delta.String(),
		t.Gamma.String(),
		t.Theta.String(),
		t.Vega.String(),
		t.MarketValue.String(),
		t.Mark.String(),
		t.MTDPnL.String(),
		t.InceptionPnL.String(),
	}
}

func encodeClosed(t models.ClosedTrade) []string {
	rec := encodeTrade(t.Trade)
	return append(rec,
		t.Status,
		fmtDate(t.UnwindDate),
		t.UnwindPrice.String(),
		fmtDecimalPtr(t.UnwindValue),
		t.PnLUSD.String(),
		t.UnwindNotes,
	)
}

func decodeTrade(cols map[string]int, rec []string) models.Trade {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return models.Trade{
		TradeType:    get("trade_type"),
		TradeID:      get("trade_id"),
		TradeDate:    parseDate(get("trade_date")),
		Book:         get("book"),
		Strategy:     get("strategy"),
		Side:         get("side"),
		Index:        get("index"),
		BBGTicker:    get("bbg_ticker"),
		PayoffType:   get("payoff_type"),
		Strike:       parseDecimalPtr(get("strike")),
		NotionalMM:   parseDecimalPtr(get("notional_mm")),
		Contracts:    parseDecimalPtr(get("contracts")),
		Expiry:       parseDate(get("expiry")),
		Index1:       get("index1"),
		Cond1:        get("cond1"),
		Strike1:      parseDecimalPtr(get("strike1")),
		Index2:       get("index2"),
		Cond2:        get("cond2"),
		Strike2:      parseDecimalPtr(get("strike2")),
		Logic:        get("logic"),
		CostBP:       parseDecimalPtr(get("cost_bp")),
		CostUSD:      parseDecimalPtr(get("cost_usd")),
		MarsID:       get("mars_id"),
		Notes:        get("notes"),
		Source:       get("source"),
		Delta:        parseDecimal(get("delta")),
		Gamma:        parseDecimal(get("gamma")),
		Theta:        parseDecimal(get("theta")),
		Vega:         parseDecimal(get("vega")),
		MarketValue:  parseDecimal(get("market_value")),
		Mark:         parseDecimal(get("mark")),
		MTDPnL:       parseDecimal(get("mtd_pnl")),
		InceptionPnL: parseDecimal(get("inception_pnl")),
	}
}

func decodeClosed(cols map[string]int, rec []string) models.ClosedTrade {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return models.ClosedTrade{
		Trade:       decodeTrade(cols, rec),
		Status:      get("status"),
		UnwindDate:  parseDate(get("unwind_date")),
		UnwindPrice: parseDecimal(get("unwind_price")),
		UnwindValue: parseDecimalPtr(get("unwind_value")),
		PnLUSD:      parseDecimal(get("pnl_usd")),
		UnwindNotes: get("unwind_notes"),
	}
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	return cols
}

func fmtDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(normalize.DateLayout)
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	d, ok := normalize.ParseDate(value)
	if !ok {
		return nil
	}
	return &d
}

func fmtDecimalPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseDecimalPtr(value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
