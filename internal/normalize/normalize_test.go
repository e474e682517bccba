package normalize

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hedgeblotter/internal/tabular"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func tableFromCSV(t *testing.T, csv string) *tabular.Table {
	t.Helper()
	tbl, err := tabular.Read(strings.NewReader(csv), "test.csv")
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	return tbl
}

func TestNormalizeAliasMapping(t *testing.T) {
	tbl := tableFromCSV(t, strings.Join([]string{
		"Trade Date,TradeID,Portfolio,Direction,Underlying,Expiration,Strike_Price,Cost",
		"2025-03-14,V-001,MacroBook,Long,SPX Index,2025-09-19,5600,125000",
	}, "\n"))

	res := Normalize(SchemaVanilla, tbl)
	if len(res.Dataset.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Dataset.Rows))
	}
	row := res.Dataset.Rows[0]

	cases := []struct {
		field, want string
	}{
		{"trade_date", "2025-03-14"},
		{"trade_id", "V-001"},
		{"book", "MacroBook"},
		{"side", "Long"},
		{"index", "SPX Index"},
		{"expiry", "2025-09-19"},
		{"strike", "5600"},
		{"cost_usd", "125000"},
	}
	for _, c := range cases {
		if row[c.field] != c.want {
			t.Fatalf("field %s: expected %q, got %q", c.field, c.want, row[c.field])
		}
	}
	if res.Mapping["trade_id"] != "TradeID" {
		t.Fatalf("expected mapping trade_id -> TradeID, got %q", res.Mapping["trade_id"])
	}
}

func TestNormalizeFillsMissingColumns(t *testing.T) {
	tbl := tableFromCSV(t, "trade_id\nV-001")

	res := Normalize(SchemaVanilla, tbl)
	row := res.Dataset.Rows[0]
	for _, field := range []string{"trade_date", "book", "strategy", "strike", "notional_mm"} {
		if row[field] != "" {
			t.Fatalf("field %s: expected missing marker, got %q", field, row[field])
		}
	}
	// Unknown source columns are dropped, not carried through.
	if len(res.Dataset.Columns) != len(Columns(SchemaVanilla)) {
		t.Fatalf("unexpected column count %d", len(res.Dataset.Columns))
	}
}

func TestNormalizeFirstAliasWins(t *testing.T) {
	// Both "index" and "ticker" present: index takes the index column,
	// bbg_ticker falls back to ticker.
	tbl := tableFromCSV(t, "trade_id,index,ticker\nV-001,SPX Index,SPY US Equity")

	res := Normalize(SchemaVanilla, tbl)
	row := res.Dataset.Rows[0]
	if row["index"] != "SPX Index" {
		t.Fatalf("index: got %q", row["index"])
	}
	if row["bbg_ticker"] != "SPY US Equity" {
		t.Fatalf("bbg_ticker: got %q", row["bbg_ticker"])
	}
}

func TestNormalizeVanillaTickerHeuristic(t *testing.T) {
	tbl := tableFromCSV(t, strings.Join([]string{
		"trade_id,ticker",
		"V-001,SPY US Equity",
		"V-002,CDX HY CDSI S43",
		"V-003,SPX Index",
	}, "\n"))

	res := Normalize(SchemaVanilla, tbl)
	if res.DetectedVanilla != 2 {
		t.Fatalf("expected 2 detected vanilla rows, got %d", res.DetectedVanilla)
	}
	if got := res.Dataset.Rows[0]["payoff_type"]; got != "Vanilla" {
		t.Fatalf("SPY row payoff: got %q", got)
	}
	if got := res.Dataset.Rows[1]["payoff_type"]; got != "Vanilla" {
		t.Fatalf("CDX row payoff: got %q", got)
	}
	if got := res.Dataset.Rows[2]["payoff_type"]; got != "Unknown" {
		t.Fatalf("SPX row payoff: got %q", got)
	}
	for _, row := range res.Dataset.Rows {
		if row["source"] != "MARS" {
			t.Fatalf("expected stamped source MARS, got %q", row["source"])
		}
	}
}

func TestNormalizeExoticStamps(t *testing.T) {
	tbl := tableFromCSV(t, strings.Join([]string{
		"trade_id,index1,cond1,strike1,index2,cond2,strike2,logic,notional_mm",
		"E-001,SPX,>=,6000,VIX,<=,20,AND,10",
	}, "\n"))

	res := Normalize(SchemaExotic, tbl)
	row := res.Dataset.Rows[0]
	if row["payoff_type"] != "Dual Digital" {
		t.Fatalf("payoff: got %q", row["payoff_type"])
	}
	if row["source"] != "Manual" {
		t.Fatalf("source: got %q", row["source"])
	}
	if row["strike2"] != "20" {
		t.Fatalf("strike2: got %q", row["strike2"])
	}
}

func TestNormalizeCoercion(t *testing.T) {
	tbl := tableFromCSV(t, strings.Join([]string{
		"trade_id,trade_date,notional_mm,strike",
		"V-001,03/14/2025,\"1,250\",not-a-number",
		"V-002,garbage,50,5600.25",
	}, "\n"))

	res := Normalize(SchemaVanilla, tbl)
	r0, r1 := res.Dataset.Rows[0], res.Dataset.Rows[1]
	if r0["trade_date"] != "2025-03-14" {
		t.Fatalf("US-style date: got %q", r0["trade_date"])
	}
	if r0["notional_mm"] != "1250" {
		t.Fatalf("comma numeric: got %q", r0["notional_mm"])
	}
	if r0["strike"] != "" {
		t.Fatalf("bad numeric should degrade to missing, got %q", r0["strike"])
	}
	if r1["trade_date"] != "" {
		t.Fatalf("bad date should degrade to missing, got %q", r1["trade_date"])
	}
	if r1["strike"] != "5600.25" {
		t.Fatalf("decimal strike: got %q", r1["strike"])
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	tbl := tableFromCSV(t, "trade_id,book")
	res := Normalize(SchemaVanilla, tbl)
	if len(res.Dataset.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Dataset.Rows))
	}
	if res.Mapping["trade_id"] != "trade_id" {
		t.Fatalf("header mapping should still resolve, got %q", res.Mapping["trade_id"])
	}
}

func TestTradesConversion(t *testing.T) {
	tbl := tableFromCSV(t, strings.Join([]string{
		"trade_id,trade_date,strike,notional_mm,ticker",
		"V-001,2025-03-14,5600,50,SPY US Equity",
	}, "\n"))

	trades := Normalize(SchemaVanilla, tbl).Dataset.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.TradeID != "V-001" || tr.TradeType != "vanilla" {
		t.Fatalf("unexpected identity: %+v", tr)
	}
	if tr.TradeDate == nil || tr.TradeDate.Format(DateLayout) != "2025-03-14" {
		t.Fatalf("trade date not parsed: %v", tr.TradeDate)
	}
	if tr.Strike == nil || !tr.Strike.Equal(decimalFromString(t, "5600")) {
		t.Fatalf("strike not parsed: %v", tr.Strike)
	}
	if tr.Source != "MARS" {
		t.Fatalf("source: got %q", tr.Source)
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-14", "2025-03-14", true},
		{"2025-03-14 09:30:00", "2025-03-14", true},
		{"03/14/2025", "2025-03-14", true},
		{"3/4/2025", "2025-03-04", true},
		{"14-Mar-2025", "2025-03-14", true},
		{"20250314", "2025-03-14", true},
		{"  2025-03-14  ", "2025-03-14", true},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.in)
		if ok != c.ok {
			t.Fatalf("ParseDate(%q): ok=%v, expected %v", c.in, ok, c.ok)
		}
		if ok && got.Format(DateLayout) != c.want {
			t.Fatalf("ParseDate(%q): got %s, expected %s", c.in, got.Format(DateLayout), c.want)
		}
	}
}
