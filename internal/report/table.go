package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/quantscope/macdscan/internal/analysis"
	"github.com/quantscope/macdscan/internal/market"
	"github.com/quantscope/macdscan/internal/store"
)

// IntervalRows flattens a batch result into the tabular shape consumed by
// storage and reporting: one row per interval, ordered by symbol code then
// start date so identical input renders identically.
func IntervalRows(res *analysis.Result) []store.IntervalRow {
	names := make(map[string]string, len(res.Symbols))
	for _, sr := range res.Symbols {
		names[sr.Symbol.Code] = sr.Symbol.Name
	}

	rows := make([]store.IntervalRow, 0, len(res.Intervals))
	for _, iv := range res.Intervals {
		rows = append(rows, store.IntervalRow{
			Code:           iv.Symbol,
			Name:           names[iv.Symbol],
			Type:           iv.Type.String(),
			FromDate:       iv.From.Date,
			ToDate:         iv.To.Date,
			Days:           iv.Days,
			PriceChangePct: iv.PriceChangePct,
		})
	}

	return rows
}

// WriteIntervalCSV renders interval rows as csv with a header.
func WriteIntervalCSV(w io.Writer, rows []store.IntervalRow) error {
	cw := csv.NewWriter(w)

	header := []string{"code", "name", "interval_type", "from_date", "to_date", "days", "price_change_pct"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range rows {
		rec := []string{
			r.Code,
			r.Name,
			r.Type,
			market.Day(r.FromDate).Format("2006-01-02"),
			market.Day(r.ToDate).Format("2006-01-02"),
			strconv.Itoa(r.Days),
			strconv.FormatFloat(r.PriceChangePct, 'f', 4, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
