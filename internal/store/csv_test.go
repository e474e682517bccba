package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeblotter/internal/models"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func sampleVanilla() models.Trade {
	return models.Trade{
		TradeID:    "V-001",
		TradeDate:  date("2025-03-14"),
		Book:       "Macro",
		Strategy:   "Hedge",
		Side:       "Long",
		Index:      "SPX Index",
		BBGTicker:  "SPY US Equity",
		PayoffType: models.PayoffCall,
		Strike:     dec("5600"),
		NotionalMM: dec("50"),
		Expiry:     date("2025-09-19"),
		CostBP:     dec("25"),
		CostUSD:    dec("125000"),
		Source:     models.SourceManual,
	}
}

func sampleExotic() models.Trade {
	return models.Trade{
		TradeID:    "E-001",
		TradeDate:  date("2025-04-01"),
		Book:       "Macro",
		Side:       "Long",
		PayoffType: models.PayoffDualDigital,
		NotionalMM: dec("10"),
		Expiry:     date("2025-12-19"),
		Index1:     "SPX",
		Cond1:      ">=",
		Strike1:    dec("6000"),
		Index2:     "VIX",
		Cond2:      "<=",
		Strike2:    dec("20"),
		Logic:      "AND",
		CostUSD:    dec("80000"),
		Source:     models.SourceManual,
	}
}

func TestSaveLoadLiveRoundTrip(t *testing.T) {
	s := New(t.TempDir(), nil)

	require.NoError(t, s.SaveLive([]models.Trade{sampleVanilla()}, []models.Trade{sampleExotic()}))

	vanilla, exotic := s.LoadLive()
	require.Len(t, vanilla, 1)
	require.Len(t, exotic, 1)

	v := vanilla[0]
	assert.Equal(t, "V-001", v.TradeID)
	assert.Equal(t, models.TradeTypeVanilla, v.TradeType)
	assert.Equal(t, "SPY US Equity", v.BBGTicker)
	require.NotNil(t, v.Strike)
	assert.True(t, v.Strike.Equal(decimal.RequireFromString("5600")))
	require.NotNil(t, v.TradeDate)
	assert.Equal(t, "2025-03-14", v.TradeDate.Format("2006-01-02"))
	assert.Nil(t, v.Contracts)

	e := exotic[0]
	assert.Equal(t, models.TradeTypeExotic, e.TradeType)
	assert.Equal(t, "SPX", e.Index1)
	assert.Equal(t, "AND", e.Logic)
	require.NotNil(t, e.Strike2)
	assert.True(t, e.Strike2.Equal(decimal.RequireFromString("20")))
}

func TestSaveLoadHistoryRoundTrip(t *testing.T) {
	s := New(t.TempDir(), nil)

	closed := models.ClosedTrade{
		Trade:       sampleVanilla(),
		Status:      models.StatusUnwound,
		UnwindDate:  date("2025-06-02"),
		UnwindPrice: decimal.RequireFromString("3200"),
		UnwindValue: dec("160000"),
		PnLUSD:      decimal.RequireFromString("35000"),
		UnwindNotes: "took profit",
	}
	closed.TradeType = models.TradeTypeVanilla
	require.NoError(t, s.SaveHistory([]models.ClosedTrade{closed}))

	history := s.LoadHistory()
	require.Len(t, history, 1)
	got := history[0]
	assert.Equal(t, models.StatusUnwound, got.Status)
	assert.True(t, got.UnwindPrice.Equal(decimal.RequireFromString("3200")))
	require.NotNil(t, got.UnwindValue)
	assert.True(t, got.PnLUSD.Equal(decimal.RequireFromString("35000")))
	assert.Equal(t, "took profit", got.UnwindNotes)
	assert.Equal(t, "V-001", got.TradeID)
}

func TestSaveEmptyProducesHeaderOnlyFile(t *testing.T) {
	s := New(t.TempDir(), nil)

	require.NoError(t, s.SaveLive(nil, nil))
	assert.FileExists(t, s.LivePath())

	vanilla, exotic := s.LoadLive()
	assert.Empty(t, vanilla)
	assert.Empty(t, exotic)
}

func TestLoadMissingFilesDegradesToEmpty(t *testing.T) {
	s := New(t.TempDir(), nil)

	vanilla, exotic := s.LoadLive()
	assert.Nil(t, vanilla)
	assert.Nil(t, exotic)
	assert.Nil(t, s.LoadHistory())
}

func TestLoadMalformedFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)
	bad := "trade_id,\"unterminated\ngarbage"
	require.NoError(t, os.WriteFile(s.LivePath(), []byte(bad), 0o644))

	vanilla, exotic := s.LoadLive()
	assert.Nil(t, vanilla)
	assert.Nil(t, exotic)
}

func TestBackupCopiesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)
	require.NoError(t, s.SaveLive([]models.Trade{sampleVanilla()}, nil))

	created, err := s.Backup()
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Contains(t, created[0], filepath.Join(dir, "backups"))
	assert.FileExists(t, created[0])
}

func TestBackupSkipsMissingFiles(t *testing.T) {
	s := New(t.TempDir(), nil)
	created, err := s.Backup()
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSummary(t *testing.T) {
	s := New(t.TempDir(), nil)
	require.NoError(t, s.SaveLive([]models.Trade{sampleVanilla()}, []models.Trade{sampleExotic()}))

	sum := s.Summary()
	assert.Equal(t, 1, sum.LiveVanillaTrades)
	assert.Equal(t, 1, sum.LiveExoticTrades)
	assert.Equal(t, 2, sum.TotalLiveTrades)
	assert.Equal(t, 0, sum.TradeHistoryCount)
	assert.True(t, sum.LiveFileExists)
	assert.False(t, sum.HistoryFileExists)
}
