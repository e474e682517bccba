package service

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/normalize"
	"hedgeblotter/internal/session"
	"hedgeblotter/internal/store"
)

func newTestImporter(t *testing.T) (*Importer, *session.State) {
	t.Helper()
	b := &Blotter{Store: store.New(t.TempDir(), nil), Logger: zap.NewNop()}
	return &Importer{Blotter: b, Logger: zap.NewNop()}, &session.State{}
}

func TestImportStagesVanillaRows(t *testing.T) {
	im, st := newTestImporter(t)

	csv := strings.Join([]string{
		"TradeID,Ticker,Strike_Price,Notional",
		"T1,SPY US Equity,450,50",
		"T2,SPX Index,5600,25",
	}, "\n")
	preview, err := im.Import(st, normalize.SchemaVanilla, strings.NewReader(csv), "mars.csv")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if preview.RowCount != 2 {
		t.Fatalf("row count: %d", preview.RowCount)
	}
	if preview.DetectedVanilla != 1 {
		t.Fatalf("detected vanilla: %d", preview.DetectedVanilla)
	}
	if len(st.MARSImport) != 2 {
		t.Fatalf("staged rows: %d", len(st.MARSImport))
	}
	if st.MARSImport[0].Source != models.SourceMARS {
		t.Fatalf("staged source: %q", st.MARSImport[0].Source)
	}
	// Staged rows are not live yet.
	if len(st.Vanilla) != 0 {
		t.Fatalf("import must not touch the live blotter")
	}
}

func TestImportEmptyFileIsNotAnError(t *testing.T) {
	im, st := newTestImporter(t)

	preview, err := im.Import(st, normalize.SchemaVanilla, strings.NewReader("trade_id\n"), "empty.csv")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if preview.RowCount != 0 {
		t.Fatalf("row count: %d", preview.RowCount)
	}
}

func TestCommitMovesStagedRows(t *testing.T) {
	im, st := newTestImporter(t)

	csv := "trade_id,ticker\nT1,SPY US Equity"
	if _, err := im.Import(st, normalize.SchemaVanilla, strings.NewReader(csv), "mars.csv"); err != nil {
		t.Fatalf("import: %v", err)
	}
	count, err := im.Commit(st, normalize.SchemaVanilla)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if count != 1 {
		t.Fatalf("committed: %d", count)
	}
	if len(st.Vanilla) != 1 || len(st.MARSImport) != 0 {
		t.Fatalf("commit should move rows: live=%d staged=%d", len(st.Vanilla), len(st.MARSImport))
	}
}

func TestReconSplitsBySource(t *testing.T) {
	im, st := newTestImporter(t)

	csv := "trade_id,ticker\nT1,SPY US Equity\nT2,SPY US Equity"
	if _, err := im.Import(st, normalize.SchemaVanilla, strings.NewReader(csv), "mars.csv"); err != nil {
		t.Fatalf("import: %v", err)
	}
	im.Blotter.AddVanilla(st, models.Trade{TradeID: "T2"})
	im.Blotter.AddExotic(st, models.Trade{TradeID: "T3"})

	res := im.Recon(st)
	matched := res.MatchedIDs()
	if len(matched) != 1 || !matched["T2"] {
		t.Fatalf("matched: %v", matched)
	}
	if len(res.OnlyMARS) != 1 || res.OnlyMARS[0].TradeID != "T1" {
		t.Fatalf("only_mars: %+v", res.OnlyMARS)
	}
	if len(res.OnlyManual) != 1 || res.OnlyManual[0].TradeID != "T3" {
		t.Fatalf("only_manual: %+v", res.OnlyManual)
	}
}
