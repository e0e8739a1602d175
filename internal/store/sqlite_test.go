package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSQLiteStore(log, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func bar(date string, close float64) market.Bar {
	d, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	return market.Bar{
		Date:   d,
		Open:   decimal.NewFromFloat(close),
		High:   decimal.NewFromFloat(close + 1),
		Low:    decimal.NewFromFloat(close - 1),
		Close:  decimal.NewFromFloat(close),
		Volume: decimal.NewFromInt(1000),
	}
}

func TestSQLiteStore_BarsAcrossMonthShards(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bars := []market.Bar{
		bar("2024-01-30", 10),
		bar("2024-01-31", 11),
		bar("2024-02-01", 12),
		bar("2024-02-02", 13),
	}
	require.NoError(t, s.PutBars(ctx, "600000", "1d", bars))

	got, err := s.GetBars(ctx, "600000", "1d")
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i := range bars {
		assert.Equal(t, bars[i].Date, got[i].Date)
		assert.True(t, bars[i].Close.Equal(got[i].Close), "bar %d close", i)
	}
}

func TestSQLiteStore_PutBarsIsUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBars(ctx, "600000", "1d", []market.Bar{bar("2024-03-01", 10)}))
	require.NoError(t, s.PutBars(ctx, "600000", "1d", []market.Bar{bar("2024-03-01", 99)}))

	got, err := s.GetBars(ctx, "600000", "1d")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(99).Equal(got[0].Close))
}

func TestSQLiteStore_BarsArePerSymbolAndPeriod(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBars(ctx, "600000", "1d", []market.Bar{bar("2024-03-01", 10)}))
	require.NoError(t, s.PutBars(ctx, "000001", "1d", []market.Bar{bar("2024-03-01", 20)}))

	got, err := s.GetBars(ctx, "600000", "1d")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.GetBars(ctx, "600000", "1w")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_Symbols(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	err := s.PutSymbols(ctx, []market.Symbol{
		{Code: "600000", Name: "Pufa Bank"},
		{Code: "000001", Name: "Pingan Bank"},
	})
	require.NoError(t, err)

	got, err := s.ListSymbols(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "000001", got[0].Code, "symbols come back ordered by code")
	assert.Equal(t, "Pufa Bank", got[1].Name)
}

func TestSQLiteStore_SaveIntervalsReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d1, _ := time.ParseInLocation("2006-01-02", "2024-01-02", time.UTC)
	d2, _ := time.ParseInLocation("2006-01-02", "2024-01-06", time.UTC)

	rows := []IntervalRow{
		{Code: "600000", Name: "Pufa Bank", Type: "golden_to_death", FromDate: d1, ToDate: d2, Days: 4, PriceChangePct: 2.5},
		{Code: "000001", Name: "Pingan Bank", Type: "death_to_golden", FromDate: d1, ToDate: d2, Days: 4, PriceChangePct: -1.25},
	}

	require.NoError(t, s.SaveIntervals(ctx, rows))
	require.NoError(t, s.SaveIntervals(ctx, rows), "second save replaces, not appends")

	got, err := s.ListIntervals(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "000001", got[0].Code, "rows are stored sorted by code then date")
	assert.Equal(t, "600000", got[1].Code)
	assert.Equal(t, 4, got[1].Days)
	assert.Equal(t, d1, got[1].FromDate)
	assert.InDelta(t, 2.5, got[1].PriceChangePct, 1e-9)
}
