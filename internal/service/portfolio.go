package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/session"
)

// PortfolioRow is one line of the combined position view. Vanilla and
// exotic trades share the shape; fields that do not apply stay empty.
type PortfolioRow struct {
	TradeID      string          `json:"trade_id"`
	TradeType    string          `json:"trade_type"`
	Side         string          `json:"side"`
	Underlying   string          `json:"underlying"`
	Strike       string          `json:"strike"`
	Expiry       string          `json:"expiry"`
	NotionalMM   string          `json:"notional_mm"`
	Contracts    string          `json:"contracts"`
	CostUSD      decimal.Decimal `json:"cost_usd"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	Vega         decimal.Decimal `json:"vega"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Mark         decimal.Decimal `json:"mark"`
	MTDPnL       decimal.Decimal `json:"mtd_pnl"`
	InceptionPnL decimal.Decimal `json:"inception_pnl"`
	Book         string          `json:"book"`
}

// PortfolioTotals sums the additive columns across all rows.
type PortfolioTotals struct {
	CostUSD      decimal.Decimal `json:"cost_usd"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	Vega         decimal.Decimal `json:"vega"`
	MarketValue  decimal.Decimal `json:"market_value"`
	MTDPnL       decimal.Decimal `json:"mtd_pnl"`
	InceptionPnL decimal.Decimal `json:"inception_pnl"`
}

// Portfolio holds the combined view plus its totals row.
type Portfolio struct {
	Rows   []PortfolioRow  `json:"rows"`
	Totals PortfolioTotals `json:"totals"`
}

// Portfolio renders the combined live view across both collections.
func (b *Blotter) Portfolio(st *session.State) Portfolio {
	st.Lock()
	vanilla := append([]models.Trade{}, st.Vanilla...)
	exotic := append([]models.Trade{}, st.Exotic...)
	st.Unlock()

	p := Portfolio{Rows: make([]PortfolioRow, 0, len(vanilla)+len(exotic))}
	for _, t := range vanilla {
		p.add(portfolioRow(t))
	}
	for _, t := range exotic {
		p.add(portfolioRow(t))
	}
	return p
}

func (p *Portfolio) add(row PortfolioRow) {
	p.Rows = append(p.Rows, row)
	p.Totals.CostUSD = p.Totals.CostUSD.Add(row.CostUSD)
	p.Totals.Delta = p.Totals.Delta.Add(row.Delta)
	p.Totals.Gamma = p.Totals.Gamma.Add(row.Gamma)
	p.Totals.Theta = p.Totals.Theta.Add(row.Theta)
	p.Totals.Vega = p.Totals.Vega.Add(row.Vega)
	p.Totals.MarketValue = p.Totals.MarketValue.Add(row.MarketValue)
	p.Totals.MTDPnL = p.Totals.MTDPnL.Add(row.MTDPnL)
	p.Totals.InceptionPnL = p.Totals.InceptionPnL.Add(row.InceptionPnL)
}

func portfolioRow(t models.Trade) PortfolioRow {
	row := PortfolioRow{
		TradeID:      t.TradeID,
		TradeType:    t.TradeType,
		Side:         t.Side,
		Underlying:   t.Underlying(),
		Delta:        t.Delta,
		Gamma:        t.Gamma,
		Theta:        t.Theta,
		Vega:         t.Vega,
		MarketValue:  t.MarketValue,
		Mark:         t.Mark,
		MTDPnL:       t.MTDPnL,
		InceptionPnL: t.InceptionPnL,
		Book:         t.Book,
	}
	if t.CostUSD != nil {
		row.CostUSD = *t.CostUSD
	}
	if t.Expiry != nil {
		row.Expiry = t.Expiry.Format("2006-01-02")
	}
	if t.NotionalMM != nil {
		row.NotionalMM = t.NotionalMM.String()
	}
	if t.TradeType == models.TradeTypeExotic {
		row.Underlying = fmt.Sprintf("%s vs %s", t.Index1, t.Index2)
		if t.Strike1 != nil && t.Strike2 != nil {
			row.Strike = fmt.Sprintf("%s / %s", t.Strike1.String(), t.Strike2.String())
		}
		return row
	}
	if t.Strike != nil {
		row.Strike = t.Strike.String()
		if t.Strike2 != nil && !t.Strike2.IsZero() {
			row.Strike = fmt.Sprintf("%s / %s", t.Strike.String(), t.Strike2.String())
		}
	}
	if t.Contracts != nil {
		row.Contracts = t.Contracts.String()
	}
	return row
}

// PnLBucket is a grouped P&L subtotal, sorted by amount descending.
type PnLBucket struct {
	Key    string          `json:"key"`
	PnLUSD decimal.Decimal `json:"pnl_usd"`
}

// CumulativePoint is one step of the running P&L series, in close order.
type CumulativePoint struct {
	TradeNumber   int             `json:"trade_number"`
	TradeID       string          `json:"trade_id"`
	PnLUSD        decimal.Decimal `json:"pnl_usd"`
	CumulativeUSD decimal.Decimal `json:"cumulative_usd"`
}

// HistorySummary aggregates the closed book.
type HistorySummary struct {
	TotalTrades   int               `json:"total_trades"`
	Unwound       int               `json:"unwound"`
	Expired       int               `json:"expired"`
	TotalPnLUSD   decimal.Decimal   `json:"total_pnl_usd"`
	PnLByBook     []PnLBucket       `json:"pnl_by_book"`
	PnLByStrategy []PnLBucket       `json:"pnl_by_strategy"`
	Cumulative    []CumulativePoint `json:"cumulative"`
}

// HistorySummary computes closed-trade statistics for the history page.
func (b *Blotter) HistorySummary(st *session.State) HistorySummary {
	st.Lock()
	history := append([]models.ClosedTrade{}, st.History...)
	st.Unlock()

	summary := HistorySummary{TotalTrades: len(history)}
	byBook := map[string]decimal.Decimal{}
	byStrategy := map[string]decimal.Decimal{}
	running := decimal.Zero
	for i, ct := range history {
		switch ct.Status {
		case models.StatusUnwound:
			summary.Unwound++
		case models.StatusExpired:
			summary.Expired++
		}
		summary.TotalPnLUSD = summary.TotalPnLUSD.Add(ct.PnLUSD)
		byBook[bucketKey(ct.Book)] = byBook[bucketKey(ct.Book)].Add(ct.PnLUSD)
		byStrategy[bucketKey(ct.Strategy)] = byStrategy[bucketKey(ct.Strategy)].Add(ct.PnLUSD)
		running = running.Add(ct.PnLUSD)
		summary.Cumulative = append(summary.Cumulative, CumulativePoint{
			TradeNumber:   i + 1,
			TradeID:       ct.TradeID,
			PnLUSD:        ct.PnLUSD,
			CumulativeUSD: running,
		})
	}
	summary.PnLByBook = sortBuckets(byBook)
	summary.PnLByStrategy = sortBuckets(byStrategy)
	return summary
}

func bucketKey(key string) string {
	if key == "" {
		return "(unassigned)"
	}
	return key
}

func sortBuckets(m map[string]decimal.Decimal) []PnLBucket {
	buckets := make([]PnLBucket, 0, len(m))
	for k, v := range m {
		buckets = append(buckets, PnLBucket{Key: k, PnLUSD: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].PnLUSD.Equal(buckets[j].PnLUSD) {
			return buckets[i].Key < buckets[j].Key
		}
		return buckets[i].PnLUSD.GreaterThan(buckets[j].PnLUSD)
	})
	return buckets
}
