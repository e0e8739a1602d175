package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantscope/macdscan/internal/indicator"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

type IntervalType int

const (
	GoldenToDeath IntervalType = iota
	DeathToGolden
)

func (t IntervalType) String() string {
	switch t {
	case GoldenToDeath:
		return "golden_to_death"
	case DeathToGolden:
		return "death_to_golden"
	default:
		return fmt.Sprintf("interval_%d", int(t))
	}
}

// Interval is the span between two consecutive crossover events of one
// symbol. Days counts calendar days between the event dates; with daily bars
// dated at midnight UTC the division below is exact.
type Interval struct {
	Symbol         string
	From           indicator.CrossEvent
	To             indicator.CrossEvent
	Type           IntervalType
	Days           int
	PriceChangePct float64
}

// PairEvents folds adjacent crossover events into intervals. The interval
// type is fully determined by the leading event since the detector only ever
// alternates golden and death. A trailing unmatched event yields nothing.
func PairEvents(events []indicator.CrossEvent) []Interval {
	if len(events) < 2 {
		return nil
	}

	intervals := make([]Interval, 0, len(events)-1)
	for i := 0; i+1 < len(events); i++ {
		from, to := events[i], events[i+1]

		iv := Interval{
			Symbol: from.Symbol,
			From:   from,
			To:     to,
			Days:   int(to.Date.Sub(from.Date) / (24 * time.Hour)),
		}
		if from.Type == indicator.CrossGolden {
			iv.Type = GoldenToDeath
		} else {
			iv.Type = DeathToGolden
		}
		if from.Price.IsPositive() {
			change := to.Price.Sub(from.Price).Div(from.Price).Mul(decimal.NewFromInt(100))
			iv.PriceChangePct = change.InexactFloat64()
		}

		intervals = append(intervals, iv)
	}

	return intervals
}

// Stats summarizes all intervals of one type across the symbol universe.
// A zero Count is a valid outcome; the numeric fields carry no meaning then.
type Stats struct {
	Type               IntervalType
	Count              int
	MeanDays           float64
	MedianDays         float64
	MinDays            int
	MaxDays            int
	StdevDays          float64
	MeanPriceChangePct float64

	// Symbols with the highest and lowest mean interval length, ties broken
	// by ascending symbol code.
	SymbolWithMaxMean string
	SymbolWithMinMean string
}

// Aggregate computes descriptive statistics over the intervals of the given
// type. The standard deviation is the population one (ddof=0): the interval
// set is described, not sampled from.
func Aggregate(intervals []Interval, typ IntervalType) Stats {
	s := Stats{Type: typ}

	var days []float64
	perSymbol := map[string][]float64{}
	for _, iv := range intervals {
		if iv.Type != typ {
			continue
		}

		d := float64(iv.Days)
		days = append(days, d)
		perSymbol[iv.Symbol] = append(perSymbol[iv.Symbol], d)
		s.MeanPriceChangePct += iv.PriceChangePct

		if s.Count == 0 || iv.Days < s.MinDays {
			s.MinDays = iv.Days
		}
		if s.Count == 0 || iv.Days > s.MaxDays {
			s.MaxDays = iv.Days
		}
		s.Count++
	}

	if s.Count == 0 {
		return s
	}

	s.MeanDays = stat.Mean(days, nil)
	s.MedianDays = median(days)
	s.StdevDays = stat.PopStdDev(days, nil)
	s.MeanPriceChangePct /= float64(s.Count)

	codes := make([]string, 0, len(perSymbol))
	for code := range perSymbol {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var maxMean, minMean float64
	for _, code := range codes {
		m := stat.Mean(perSymbol[code], nil)
		if s.SymbolWithMaxMean == "" || m > maxMean {
			s.SymbolWithMaxMean = code
			maxMean = m
		}
		if s.SymbolWithMinMean == "" || m < minMean {
			s.SymbolWithMinMean = code
			minMean = m
		}
	}

	return s
}

// median averages the two middle values on even counts, unlike the empirical
// quantile estimators in gonum/stat.
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
