package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/session"
	"hedgeblotter/internal/store"
)

// Blotter implements the trade lifecycle: create, edit (full replacement),
// delete, and the two closing actions that move a record into history.
// Every mutation flushes the session's collections to the flat files.
type Blotter struct {
	Store  *store.CSVStore
	Logger *zap.Logger
}

// AddVanilla appends a manual vanilla trade. Validation is soft: problems
// come back as warnings and never block the submission.
func (b *Blotter) AddVanilla(st *session.State, t models.Trade) []string {
	t.TradeType = models.TradeTypeVanilla
	if t.Source == "" {
		t.Source = models.SourceManual
	}
	warnings := vanillaWarnings(t)

	st.Lock()
	st.Vanilla = append(st.Vanilla, t)
	st.Unlock()

	b.save(st)
	b.Logger.Info("added vanilla trade", zap.String("trade_id", t.TradeID))
	return warnings
}

// AddExotic appends a manual dual-digital trade.
func (b *Blotter) AddExotic(st *session.State, t models.Trade) []string {
	t.TradeType = models.TradeTypeExotic
	t.PayoffType = models.PayoffDualDigital
	if t.Source == "" {
		t.Source = models.SourceManual
	}
	warnings := exoticWarnings(t)

	st.Lock()
	st.Exotic = append(st.Exotic, t)
	st.Unlock()

	b.save(st)
	b.Logger.Info("added exotic trade", zap.String("trade_id", t.TradeID))
	return warnings
}

// Edit replaces the record at index wholesale.
func (b *Blotter) Edit(st *session.State, tradeType string, index int, t models.Trade) error {
	st.Lock()
	live, err := b.collection(st, tradeType)
	if err == nil {
		if index < 0 || index >= len(*live) {
			err = fmt.Errorf("no %s trade at index %d", tradeType, index)
		} else {
			t.TradeType = tradeType
			if tradeType == models.TradeTypeExotic {
				t.PayoffType = models.PayoffDualDigital
			}
			if t.Source == "" {
				t.Source = models.SourceManual
			}
			(*live)[index] = t
		}
	}
	st.Unlock()
	if err != nil {
		return err
	}

	b.save(st)
	b.Logger.Info("edited trade", zap.String("trade_id", t.TradeID), zap.String("trade_type", tradeType))
	return nil
}

// Delete removes a live record without a history entry.
func (b *Blotter) Delete(st *session.State, tradeType string, index int) (models.Trade, error) {
	st.Lock()
	var removed models.Trade
	live, err := b.collection(st, tradeType)
	if err == nil {
		if index < 0 || index >= len(*live) {
			err = fmt.Errorf("no %s trade at index %d", tradeType, index)
		} else {
			removed = (*live)[index]
			*live = append((*live)[:index], (*live)[index+1:]...)
		}
	}
	st.Unlock()
	if err != nil {
		return models.Trade{}, err
	}

	b.save(st)
	b.Logger.Info("deleted trade", zap.String("trade_id", removed.TradeID))
	return removed, nil
}

// Unwind closes a trade at a price. The unwind value is price times
// contracts when contracts are populated, otherwise price times notional;
// P&L nets the original cost.
func (b *Blotter) Unwind(st *session.State, tradeType string, index int, date time.Time, price decimal.Decimal, notes string) (models.ClosedTrade, error) {
	st.Lock()
	var closed models.ClosedTrade
	live, err := b.collection(st, tradeType)
	if err == nil {
		if index < 0 || index >= len(*live) {
			err = fmt.Errorf("no %s trade at index %d", tradeType, index)
		} else {
			t := (*live)[index]
			size := decimal.Zero
			if t.Contracts != nil {
				size = *t.Contracts
			} else if t.NotionalMM != nil {
				size = *t.NotionalMM
			}
			unwindValue := price.Mul(size)
			cost := decimal.Zero
			if t.CostUSD != nil {
				cost = *t.CostUSD
			}
			closed = models.ClosedTrade{
				Trade:       t,
				Status:      models.StatusUnwound,
				UnwindDate:  &date,
				UnwindPrice: price,
				UnwindValue: &unwindValue,
				PnLUSD:      unwindValue.Sub(cost),
				UnwindNotes: notes,
			}
			*live = append((*live)[:index], (*live)[index+1:]...)
			st.History = append(st.History, closed)
		}
	}
	st.Unlock()
	if err != nil {
		return models.ClosedTrade{}, err
	}

	b.save(st)
	b.Logger.Info("unwound trade",
		zap.String("trade_id", closed.TradeID),
		zap.String("pnl_usd", closed.PnLUSD.String()),
	)
	return closed, nil
}

// Expire closes a trade as worthless: unwind price zero, P&L minus cost.
func (b *Blotter) Expire(st *session.State, tradeType string, index int) (models.ClosedTrade, error) {
	st.Lock()
	var closed models.ClosedTrade
	live, err := b.collection(st, tradeType)
	if err == nil {
		if index < 0 || index >= len(*live) {
			err = fmt.Errorf("no %s trade at index %d", tradeType, index)
		} else {
			t := (*live)[index]
			now := time.Now().UTC().Truncate(24 * time.Hour)
			pnl := decimal.Zero
			if t.CostUSD != nil {
				pnl = t.CostUSD.Neg()
			}
			closed = models.ClosedTrade{
				Trade:       t,
				Status:      models.StatusExpired,
				UnwindDate:  &now,
				UnwindPrice: decimal.Zero,
				PnLUSD:      pnl,
			}
			*live = append((*live)[:index], (*live)[index+1:]...)
			st.History = append(st.History, closed)
		}
	}
	st.Unlock()
	if err != nil {
		return models.ClosedTrade{}, err
	}

	b.save(st)
	b.Logger.Info("expired trade", zap.String("trade_id", closed.TradeID))
	return closed, nil
}

// Save flushes the session's collections to the flat files on demand.
func (b *Blotter) Save(st *session.State) error {
	st.Lock()
	vanilla := append([]models.Trade{}, st.Vanilla...)
	exotic := append([]models.Trade{}, st.Exotic...)
	history := append([]models.ClosedTrade{}, st.History...)
	st.Unlock()

	if err := b.Store.SaveLive(vanilla, exotic); err != nil {
		return err
	}
	return b.Store.SaveHistory(history)
}

// save is the post-mutation flush. Persistence failures degrade to a
// warning; the in-memory state stays authoritative for the session.
func (b *Blotter) save(st *session.State) {
	if err := b.Save(st); err != nil {
		b.Logger.Warn("could not save data", zap.Error(err))
	}
}

func (b *Blotter) collection(st *session.State, tradeType string) (*[]models.Trade, error) {
	switch tradeType {
	case models.TradeTypeVanilla:
		return &st.Vanilla, nil
	case models.TradeTypeExotic:
		return &st.Exotic, nil
	default:
		return nil, fmt.Errorf("unknown trade type %q", tradeType)
	}
}

func vanillaWarnings(t models.Trade) []string {
	var warnings []string
	if t.TradeID == "" {
		warnings = append(warnings, "Trade ID is recommended")
	}
	if t.Index == "" {
		warnings = append(warnings, "Index/Ticker is recommended")
	}
	if t.BBGTicker == "" {
		warnings = append(warnings, "Bloomberg Ticker is recommended")
	}
	if t.Strike == nil || t.Strike.IsZero() {
		warnings = append(warnings, "Strike should be non-zero")
	}
	if t.PayoffType == models.PayoffCallSpread || t.PayoffType == models.PayoffPutSpread {
		if t.Strike2 == nil || t.Strike2.IsZero() {
			warnings = append(warnings, "Short Strike should be non-zero for spreads")
		}
	}
	notionalMissing := t.NotionalMM == nil || !t.NotionalMM.IsPositive()
	contractsMissing := t.Contracts == nil || !t.Contracts.IsPositive()
	if notionalMissing && contractsMissing {
		warnings = append(warnings, "Either Notional or Contracts should be > 0")
	}
	return warnings
}

func exoticWarnings(t models.Trade) []string {
	var warnings []string
	if t.TradeID == "" {
		warnings = append(warnings, "Trade ID is recommended")
	}
	if t.TradeDate == nil {
		warnings = append(warnings, "Trade Date is recommended")
	}
	if t.NotionalMM == nil || t.NotionalMM.IsZero() {
		warnings = append(warnings, "Notional (mm) is recommended")
	}
	if t.Index1 == "" {
		warnings = append(warnings, "Index 1 is recommended")
	}
	if t.Strike1 == nil || t.Strike1.IsZero() {
		warnings = append(warnings, "Strike 1 is recommended")
	}
	if t.Index2 == "" {
		warnings = append(warnings, "Index 2 is recommended")
	}
	if t.Strike2 == nil || t.Strike2.IsZero() {
		warnings = append(warnings, "Strike 2 is recommended")
	}
	return warnings
}
