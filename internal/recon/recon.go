// Package recon classifies two trade collections against each other using
// trade_id as the sole join key. It reports relationships only; neither
// input collection is altered.
package recon

import (
	"hedgeblotter/internal/models"
)

// Result partitions the two inputs by trade id. Matched holds the full rows
// from BOTH sides whose id appears on both (MARS rows first, then manual) --
// no field-by-field diff is attempted. OnlyMARS and OnlyManual hold the rows
// whose id appears on one side only. Rows without a trade id never appear in
// any partition.
type Result struct {
	Matched    []models.Trade `json:"matched"`
	OnlyMARS   []models.Trade `json:"only_mars"`
	OnlyManual []models.Trade `json:"only_manual"`
}

// Run reconciles the MARS-sourced collection against the manual collection.
// Duplicate ids within one side collapse to a single set member, but every
// row carrying a matched id is included in the matched output.
func Run(mars, manual []models.Trade) Result {
	marsIDs := idSet(mars)
	manualIDs := idSet(manual)

	var res Result
	for _, t := range mars {
		if t.TradeID == "" {
			continue
		}
		if manualIDs[t.TradeID] {
			res.Matched = append(res.Matched, t)
		} else {
			res.OnlyMARS = append(res.OnlyMARS, t)
		}
	}
	for _, t := range manual {
		if t.TradeID == "" {
			continue
		}
		if marsIDs[t.TradeID] {
			res.Matched = append(res.Matched, t)
		} else {
			res.OnlyManual = append(res.OnlyManual, t)
		}
	}
	return res
}

// MatchedIDs returns the distinct matched ids, for summary counts.
func (r Result) MatchedIDs() map[string]bool {
	ids := map[string]bool{}
	for _, t := range r.Matched {
		ids[t.TradeID] = true
	}
	return ids
}

func idSet(trades []models.Trade) map[string]bool {
	ids := map[string]bool{}
	for _, t := range trades {
		if t.TradeID != "" {
			ids[t.TradeID] = true
		}
	}
	return ids
}
