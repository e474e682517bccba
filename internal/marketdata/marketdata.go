// Package marketdata is the boundary to the Bloomberg gateway. The core
// treats it as a black box that may be unavailable: every degradation path
// yields empty data plus a warning at the call site, never a fault.
package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FieldLastPrice is the default field requested for charting.
const FieldLastPrice = "PX_LAST"

// PricePoint is one observation in a charted time series.
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
}

// Client is the single external market-data capability the blotter
// consumes. Implementations must return empty data rather than failing when
// the vendor side is down or the ticker is unknown.
type Client interface {
	// HistoricalPrices returns a daily time series for the ticker over
	// [start, end].
	HistoricalPrices(ctx context.Context, ticker string, fields []string, start, end time.Time) ([]PricePoint, error)
	// CurrentPrice returns the latest price, or nil when unavailable.
	CurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error)
}
