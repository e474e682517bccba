package normalize

// Schema selects which canonical column set an upload is normalized into.
type Schema string

const (
	SchemaVanilla Schema = "vanilla"
	SchemaExotic  Schema = "exotic"
)

// Field binds a canonical column to the ordered list of accepted source
// headers. The first alias present in the upload wins; headers are matched
// case-insensitively with whitespace trimmed.
type Field struct {
	Name    string
	Aliases []string
}

// The two alias tables. Order matters within each alias list: for example a
// bare "ticker" column maps to index before bbg_ticker falls back to it.
var (
	vanillaFields = []Field{
		{"trade_date", []string{"trade_date", "date", "trade date"}},
		{"trade_id", []string{"trade_id", "tradeid", "id", "trade id"}},
		{"book", []string{"book", "portfolio"}},
		{"strategy", []string{"strategy", "strat"}},
		{"side", []string{"side", "direction"}},
		{"index", []string{"index", "underlying", "ticker"}},
		{"bbg_ticker", []string{"bbg_ticker", "bloomberg_ticker", "bbg ticker", "ticker"}},
		{"notional_mm", []string{"notional_mm", "notional_mm_or_contracts", "notional", "size"}},
		{"expiry", []string{"expiry", "expiration", "maturity"}},
		{"payoff_type", []string{"payoff_type", "payoff", "product_type"}},
		{"strike", []string{"strike", "strike_price"}},
		{"cost_bp", []string{"cost_bp_or_pt", "cost_bp", "premium_bp"}},
		{"cost_usd", []string{"cost_usd", "cost", "premium_usd"}},
	}

	exoticFields = []Field{
		{"trade_date", []string{"trade_date", "date", "trade date"}},
		{"trade_id", []string{"trade_id", "tradeid", "id", "trade id"}},
		{"book", []string{"book", "portfolio"}},
		{"strategy", []string{"strategy", "strat"}},
		{"side", []string{"side", "direction"}},
		{"notional_mm", []string{"notional_mm", "notional", "size"}},
		{"expiry", []string{"expiry", "expiration", "maturity"}},
		{"index1", []string{"index1", "underlying1", "ticker1"}},
		{"cond1", []string{"cond1", "condition1", "barrier_type1"}},
		{"strike1", []string{"strike1", "strike_1", "barrier1"}},
		{"index2", []string{"index2", "underlying2", "ticker2"}},
		{"cond2", []string{"cond2", "condition2", "barrier_type2"}},
		{"strike2", []string{"strike2", "strike_2", "barrier2"}},
		{"logic", []string{"logic", "and_or", "operator"}},
		{"cost_bp", []string{"cost_bp", "premium_bp", "cost"}},
		{"cost_usd", []string{"cost_usd", "premium_usd", "cost_dollars"}},
	}

	dateFields = map[string]bool{
		"trade_date": true,
		"expiry":     true,
	}

	numericFields = map[string]bool{
		"notional_mm": true,
		"strike":      true,
		"strike1":     true,
		"strike2":     true,
		"cost_bp":     true,
		"cost_usd":    true,
	}
)

// Fields returns the canonical field table for a schema.
func Fields(schema Schema) []Field {
	if schema == SchemaExotic {
		return exoticFields
	}
	return vanillaFields
}

// Columns returns the canonical output column set for a schema, including
// the stamped source and payoff_type columns.
func Columns(schema Schema) []string {
	fields := Fields(schema)
	cols := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		cols = append(cols, f.Name)
	}
	if schema == SchemaExotic {
		// Exotics have no payoff alias; the column is stamped.
		cols = append(cols, "payoff_type")
	}
	cols = append(cols, "source")
	return cols
}
