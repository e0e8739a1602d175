package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single daily candle. Bars for one symbol are ordered ascending
// by date with unique dates; the ingestion side guarantees immutability.
type Bar struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// HasClose reports whether the bar carries a usable close price.
func (b Bar) HasClose() bool {
	return b.Close.IsPositive()
}

type Symbol struct {
	Code string
	Name string
}

// Day truncates t to day granularity in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateSeries checks that bars are sorted ascending by date with no
// duplicates. Crossover detection is order sensitive, so a broken series is
// rejected rather than reordered.
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Date, bars[i].Date
		if cur.Equal(prev) {
			return &OrderingError{Index: i, Date: cur, Duplicate: true}
		}
		if cur.Before(prev) {
			return &OrderingError{Index: i, Date: cur}
		}
	}
	return nil
}
