package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StubClient is selected when no gateway is configured. It returns empty
// data and never errors, so every charting feature degrades to "no data
// available" instead of breaking the page.
type StubClient struct{}

var _ Client = StubClient{}

func (StubClient) HistoricalPrices(ctx context.Context, ticker string, fields []string, start, end time.Time) ([]PricePoint, error) {
	return nil, nil
}

func (StubClient) CurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	return nil, nil
}
