package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/quantscope/macdscan/internal/analysis"
	"github.com/quantscope/macdscan/internal/indicator"
	"github.com/quantscope/macdscan/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResult() *analysis.Result {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	iv := analysis.Interval{
		Symbol:         "600000",
		From:           indicator.CrossEvent{Symbol: "600000", Date: d1, Type: indicator.CrossGolden},
		To:             indicator.CrossEvent{Symbol: "600000", Date: d2, Type: indicator.CrossDeath},
		Type:           analysis.GoldenToDeath,
		Days:           4,
		PriceChangePct: 2.5,
	}

	res := &analysis.Result{
		Symbols: []analysis.SymbolResult{
			{Symbol: market.Symbol{Code: "600000", Name: "Pufa Bank"}, Intervals: []analysis.Interval{iv}},
		},
		Intervals: []analysis.Interval{iv},
		Failures:  map[string]error{"000001": errors.New("insufficient history")},
	}
	res.GoldenToDeath = analysis.Aggregate(res.Intervals, analysis.GoldenToDeath)
	res.DeathToGolden = analysis.Aggregate(res.Intervals, analysis.DeathToGolden)

	return res
}

func TestSummaryBuilder_Write(t *testing.T) {
	b := NewSummaryBuilder(testLogger())
	b.Submit(testResult())

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.EqualValues(t, 1, got["symbol_count"])
	assert.EqualValues(t, 1, got["interval_count"])

	g2d, ok := got["golden_to_death"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, g2d["count"])
	assert.EqualValues(t, 4, g2d["mean_days"])
	assert.Equal(t, "600000", g2d["symbol_with_max_mean"])

	failures, ok := got["failures"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "insufficient history", failures["000001"])
}

func TestSummaryBuilder_ZeroCountOmitsNumericFields(t *testing.T) {
	b := NewSummaryBuilder(testLogger())
	b.Submit(testResult())

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	d2g, ok := got["death_to_golden"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, d2g["count"])
	assert.NotContains(t, d2g, "mean_days")
	assert.NotContains(t, d2g, "stdev_days")
	assert.NotContains(t, d2g, "symbol_with_max_mean")
}

func TestIntervalRows(t *testing.T) {
	rows := IntervalRows(testResult())

	require.Len(t, rows, 1)
	assert.Equal(t, "600000", rows[0].Code)
	assert.Equal(t, "Pufa Bank", rows[0].Name)
	assert.Equal(t, "golden_to_death", rows[0].Type)
	assert.Equal(t, 4, rows[0].Days)
}

func TestWriteIntervalCSV(t *testing.T) {
	rows := IntervalRows(testResult())

	var buf bytes.Buffer
	require.NoError(t, WriteIntervalCSV(&buf, rows))

	want := "code,name,interval_type,from_date,to_date,days,price_change_pct\n" +
		"600000,Pufa Bank,golden_to_death,2024-01-02,2024-01-06,4,2.5000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteIntervalCSV_StableAcrossRuns(t *testing.T) {
	rows := IntervalRows(testResult())

	var first, second bytes.Buffer
	require.NoError(t, WriteIntervalCSV(&first, rows))
	require.NoError(t, WriteIntervalCSV(&second, rows))

	assert.Equal(t, first.String(), second.String())
}
