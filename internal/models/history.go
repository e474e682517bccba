package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Close statuses.
const (
	StatusUnwound = "Unwound"
	StatusExpired = "Expired Worthless"
)

// ClosedTrade is a live trade that was unwound or expired, plus the close
// details recorded at that point. History records are append-only.
type ClosedTrade struct {
	Trade

	Status      string           `json:"status"`
	UnwindDate  *time.Time       `json:"unwind_date"`
	UnwindPrice decimal.Decimal  `json:"unwind_price"`
	UnwindValue *decimal.Decimal `json:"unwind_value,omitempty"`
	PnLUSD      decimal.Decimal  `json:"pnl_usd"`
	UnwindNotes string           `json:"unwind_notes,omitempty"`
}
