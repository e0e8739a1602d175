package indicator

import (
	"time"

	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func dailyBars(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Date:   day(i),
			Open:   decimal.NewFromFloat(c),
			High:   decimal.NewFromFloat(c),
			Low:    decimal.NewFromFloat(c),
			Close:  decimal.NewFromFloat(c),
			Volume: decimal.NewFromInt(1000),
		}
	}
	return bars
}

func histPoints(hists ...float64) []MACDPoint {
	pts := make([]MACDPoint, len(hists))
	for i, h := range hists {
		pts[i] = MACDPoint{
			Date:  day(i),
			Close: decimal.NewFromInt(10),
			Hist:  h,
		}
	}
	return pts
}
