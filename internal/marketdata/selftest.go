package marketdata

import (
	"context"
	"fmt"
	"io"
	"time"
)

const selftestTicker = "SPY US Equity"

// Selftest exercises the configured client end to end: one year of daily
// history for SPY plus a current-price lookup. It prints progress to out
// and reports overall pass/fail; the caller maps that to an exit code.
func Selftest(ctx context.Context, c Client, out io.Writer) bool {
	fmt.Fprintln(out, "market-data connectivity test")
	fmt.Fprintln(out, "ticker:", selftestTicker)

	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	points, err := c.HistoricalPrices(ctx, selftestTicker, []string{FieldLastPrice}, start, end)
	if err != nil {
		fmt.Fprintln(out, "FAIL: history request:", err)
		return false
	}
	if len(points) == 0 {
		fmt.Fprintln(out, "FAIL: no history rows returned (gateway down or no permissions)")
		return false
	}
	fmt.Fprintf(out, "ok: %d history rows, latest price %s\n",
		len(points), points[len(points)-1].Price.String())

	price, err := c.CurrentPrice(ctx, selftestTicker)
	if err != nil {
		fmt.Fprintln(out, "FAIL: current price request:", err)
		return false
	}
	if price == nil {
		fmt.Fprintln(out, "FAIL: no current price returned")
		return false
	}
	fmt.Fprintf(out, "ok: current price %s\n", price.String())
	fmt.Fprintln(out, "PASS")
	return true
}
