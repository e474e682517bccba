package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/tabular"
)

// DateLayout is the serialized form of calendar-date cells.
const DateLayout = "2006-01-02"

// Accepted textual date forms, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"20060102",
}

// Substrings of the underlying ticker that mark a trade as vanilla when the
// upload carries no explicit payoff type.
var vanillaTickerHints = []string{"SPY", "CDX"}

// Row maps canonical column name to its normalized cell value. The empty
// string is the missing-value marker.
type Row map[string]string

// Dataset is a normalized upload: exactly the canonical column set for its
// schema, one row per input row, in input order.
type Dataset struct {
	Schema  Schema
	Columns []string
	Rows    []Row
}

// Result carries the dataset plus the mapping diagnostics surfaced to the
// user after an import.
type Result struct {
	Dataset         *Dataset
	Mapping         map[string]string // canonical column -> matched source header
	DetectedVanilla int               // rows classified via the ticker heuristic
}

// Normalize maps an arbitrary upload onto the canonical column set for the
// schema. Canonical fields with no matching alias are filled with the
// missing marker for every row; source columns outside the alias table are
// dropped. Cell values are coerced (dates to DateLayout, numerics through
// decimal) with unparseable values degrading to missing.
func Normalize(schema Schema, t *tabular.Table) Result {
	res := Result{
		Dataset: &Dataset{Schema: schema, Columns: Columns(schema)},
		Mapping: map[string]string{},
	}
	if t == nil {
		return res
	}

	fields := Fields(schema)
	positions := make(map[string]int, len(fields))
	for _, f := range fields {
		positions[f.Name] = -1
		for _, alias := range f.Aliases {
			if col := t.Column(alias); col >= 0 {
				positions[f.Name] = col
				res.Mapping[f.Name] = strings.TrimSpace(t.Header[col])
				break
			}
		}
	}

	for _, raw := range t.Rows {
		row := Row{}
		for _, f := range fields {
			value := ""
			if pos := positions[f.Name]; pos >= 0 && pos < len(raw) {
				value = strings.TrimSpace(raw[pos])
			}
			row[f.Name] = coerce(f.Name, value)
		}
		switch schema {
		case SchemaExotic:
			row["payoff_type"] = models.PayoffDualDigital
			row["source"] = models.SourceManual
		default:
			row["source"] = models.SourceMARS
			if row["payoff_type"] == "" {
				if hasVanillaTicker(row) {
					row["payoff_type"] = models.PayoffVanilla
					res.DetectedVanilla++
				} else {
					row["payoff_type"] = models.PayoffUnknown
				}
			}
		}
		res.Dataset.Rows = append(res.Dataset.Rows, row)
	}
	return res
}

// Trades converts a normalized dataset into union trade records.
func (d *Dataset) Trades() []models.Trade {
	trades := make([]models.Trade, 0, len(d.Rows))
	for _, row := range d.Rows {
		t := models.Trade{
			TradeID:    row["trade_id"],
			TradeDate:  parseDatePtr(row["trade_date"]),
			Expiry:     parseDatePtr(row["expiry"]),
			Book:       row["book"],
			Strategy:   row["strategy"],
			Side:       row["side"],
			PayoffType: row["payoff_type"],
			CostBP:     parseDecimalPtr(row["cost_bp"]),
			CostUSD:    parseDecimalPtr(row["cost_usd"]),
			NotionalMM: parseDecimalPtr(row["notional_mm"]),
			Source:     row["source"],
		}
		if d.Schema == SchemaExotic {
			t.TradeType = models.TradeTypeExotic
			t.Index1 = row["index1"]
			t.Cond1 = row["cond1"]
			t.Strike1 = parseDecimalPtr(row["strike1"])
			t.Index2 = row["index2"]
			t.Cond2 = row["cond2"]
			t.Strike2 = parseDecimalPtr(row["strike2"])
			t.Logic = row["logic"]
		} else {
			t.TradeType = models.TradeTypeVanilla
			t.Index = row["index"]
			t.BBGTicker = row["bbg_ticker"]
			t.Strike = parseDecimalPtr(row["strike"])
		}
		trades = append(trades, t)
	}
	return trades
}

func coerce(field, value string) string {
	if value == "" {
		return ""
	}
	switch {
	case dateFields[field]:
		d, ok := ParseDate(value)
		if !ok {
			return ""
		}
		return d.Format(DateLayout)
	case numericFields[field]:
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
		if err != nil {
			return ""
		}
		return d.String()
	default:
		return value
	}
}

func hasVanillaTicker(row Row) bool {
	for _, field := range []string{"index", "bbg_ticker"} {
		ticker := strings.ToUpper(row[field])
		if ticker == "" {
			continue
		}
		for _, hint := range vanillaTickerHints {
			if strings.Contains(ticker, hint) {
				return true
			}
		}
	}
	return false
}

// ParseDate parses a textual calendar date, trying the accepted layouts in
// order and truncating any time-of-day component.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseDatePtr(value string) *time.Time {
	if value == "" {
		return nil
	}
	d, ok := ParseDate(value)
	if !ok {
		return nil
	}
	return &d
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
