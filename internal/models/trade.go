package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade types (the discriminator persisted in the combined live file).
const (
	TradeTypeVanilla = "vanilla"
	TradeTypeExotic  = "exotic"
)

// Trade sources.
const (
	SourceMARS   = "MARS"
	SourceManual = "Manual"
)

// Payoff types for vanilla trades. Exotics are always PayoffDualDigital.
const (
	PayoffCall        = "Call"
	PayoffPut         = "Put"
	PayoffCallSpread  = "Call Spread"
	PayoffPutSpread   = "Put Spread"
	PayoffVanilla     = "Vanilla"
	PayoffDualDigital = "Dual Digital"
	PayoffUnknown     = "Unknown"
)

// Trade is the union record for both trade families. Vanilla trades use
// Index/BBGTicker/Strike; exotics use the Index1/Cond1/Strike1 and
// Index2/Cond2/Strike2 barrier pairs combined by Logic. Optional fields are
// pointers so an absent value survives the CSV round trip as an empty cell.
type Trade struct {
	TradeID   string     `json:"trade_id"`
	TradeDate *time.Time `json:"trade_date"`
	Expiry    *time.Time `json:"expiry"`
	Book      string     `json:"book"`
	Strategy  string     `json:"strategy"`
	Side      string     `json:"side"`

	// Vanilla fields.
	Index      string           `json:"index,omitempty"`
	BBGTicker  string           `json:"bbg_ticker,omitempty"`
	PayoffType string           `json:"payoff_type"`
	Strike     *decimal.Decimal `json:"strike,omitempty"`
	NotionalMM *decimal.Decimal `json:"notional_mm,omitempty"`
	Contracts  *decimal.Decimal `json:"contracts,omitempty"`

	// Exotic fields. Strike2 doubles as the short-leg strike for vanilla
	// spreads, matching the combined live-file layout.
	Index1  string           `json:"index1,omitempty"`
	Cond1   string           `json:"cond1,omitempty"`
	Strike1 *decimal.Decimal `json:"strike1,omitempty"`
	Index2  string           `json:"index2,omitempty"`
	Cond2   string           `json:"cond2,omitempty"`
	Strike2 *decimal.Decimal `json:"strike2,omitempty"`
	Logic   string           `json:"logic,omitempty"`

	CostBP  *decimal.Decimal `json:"cost_bp,omitempty"`
	CostUSD *decimal.Decimal `json:"cost_usd,omitempty"`
	MarsID  string           `json:"mars_id,omitempty"`
	Notes   string           `json:"notes,omitempty"`
	Source  string           `json:"source"`

	TradeType string `json:"trade_type"`

	// Externally supplied market fields. Never computed here; zero when the
	// upstream feed has nothing for the trade.
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	Vega         decimal.Decimal `json:"vega"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Mark         decimal.Decimal `json:"mark"`
	MTDPnL       decimal.Decimal `json:"mtd_pnl"`
	InceptionPnL decimal.Decimal `json:"inception_pnl"`
}

// Underlying returns the ticker used for charting. Vanilla trades prefer the
// Bloomberg ticker over the index label.
func (t Trade) Underlying() string {
	if t.TradeType == TradeTypeExotic || t.PayoffType == PayoffDualDigital {
		return t.Index1
	}
	if t.BBGTicker != "" {
		return t.BBGTicker
	}
	return t.Index
}
