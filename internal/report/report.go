package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/quantscope/macdscan/internal/analysis"
)

// SummaryBuilder accumulates a batch result into a JSON summary document.
type SummaryBuilder struct {
	log     *slog.Logger
	summary Summary
	mu      sync.Mutex
}

type Summary struct {
	SymbolCount   int               `json:"symbol_count"`
	IntervalCount int               `json:"interval_count"`
	Failures      map[string]string `json:"failures,omitempty"`
	GoldenToDeath *StatsBlock       `json:"golden_to_death,omitempty"`
	DeathToGolden *StatsBlock       `json:"death_to_golden,omitempty"`
}

// StatsBlock mirrors analysis.Stats for serialization. A zero-count block
// carries only the count; the numeric fields are omitted since they have no
// meaning without samples.
type StatsBlock struct {
	Count              int      `json:"count"`
	MeanDays           *float64 `json:"mean_days,omitempty"`
	MedianDays         *float64 `json:"median_days,omitempty"`
	MinDays            *int     `json:"min_days,omitempty"`
	MaxDays            *int     `json:"max_days,omitempty"`
	StdevDays          *float64 `json:"stdev_days,omitempty"`
	MeanPriceChangePct *float64 `json:"mean_price_change_pct,omitempty"`
	SymbolWithMaxMean  string   `json:"symbol_with_max_mean,omitempty"`
	SymbolWithMinMean  string   `json:"symbol_with_min_mean,omitempty"`
}

func newStatsBlock(s analysis.Stats) *StatsBlock {
	b := &StatsBlock{Count: s.Count}
	if s.Count == 0 {
		return b
	}

	b.MeanDays = &s.MeanDays
	b.MedianDays = &s.MedianDays
	b.MinDays = &s.MinDays
	b.MaxDays = &s.MaxDays
	b.StdevDays = &s.StdevDays
	b.MeanPriceChangePct = &s.MeanPriceChangePct
	b.SymbolWithMaxMean = s.SymbolWithMaxMean
	b.SymbolWithMinMean = s.SymbolWithMinMean
	return b
}

func NewSummaryBuilder(log *slog.Logger) *SummaryBuilder {
	return &SummaryBuilder{log: log}
}

func (b *SummaryBuilder) Submit(res *analysis.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.summary.SymbolCount = len(res.Symbols)
	b.summary.IntervalCount = len(res.Intervals)
	b.summary.GoldenToDeath = newStatsBlock(res.GoldenToDeath)
	b.summary.DeathToGolden = newStatsBlock(res.DeathToGolden)

	if len(res.Failures) > 0 {
		b.summary.Failures = make(map[string]string, len(res.Failures))
		for code, err := range res.Failures {
			b.summary.Failures[code] = err.Error()
		}
	}

	b.log.Info("batch summarized",
		slog.Int("symbols", b.summary.SymbolCount),
		slog.Int("intervals", b.summary.IntervalCount),
		slog.Int("failures", len(res.Failures)))
}

func (b *SummaryBuilder) Write(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(b.summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}

func (b *SummaryBuilder) WriteToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	return b.Write(f)
}
