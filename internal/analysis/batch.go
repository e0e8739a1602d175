package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/indicator"
	"github.com/quantscope/macdscan/internal/market"
	"golang.org/x/sync/errgroup"
)

type barSource interface {
	GetBars(ctx context.Context, code, period string) ([]market.Bar, error)
	ListSymbols(ctx context.Context) ([]market.Symbol, error)
}

// SymbolResult holds the full pipeline output for one symbol.
type SymbolResult struct {
	Symbol    market.Symbol
	Events    []indicator.CrossEvent
	Intervals []Interval
}

// Result is the reduced output of a batch run. Failures maps symbol codes to
// the reason their pipeline was rejected; one bad symbol never aborts the
// batch.
type Result struct {
	Symbols       []SymbolResult
	Intervals     []Interval
	Failures      map[string]error
	GoldenToDeath Stats
	DeathToGolden Stats
}

// BatchRunner fans the per-symbol MACD pipeline out across a bounded worker
// pool and reduces the intervals into summary statistics. Symbol pipelines
// share no state, so the only synchronization is around result collection
// and the final join before aggregation.
type BatchRunner struct {
	log  *slog.Logger
	cfg  config.Config
	bars barSource
}

func NewBatchRunner(log *slog.Logger, cfg config.Config, bars barSource) *BatchRunner {
	return &BatchRunner{
		log:  log,
		cfg:  cfg,
		bars: bars,
	}
}

func (r *BatchRunner) Run(ctx context.Context) (*Result, error) {
	symbols, err := r.bars.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}

	if max := r.cfg.Analysis.MaxSymbols; max > 0 && len(symbols) > max {
		symbols = symbols[:max]
	}

	res := &Result{Failures: map[string]error{}}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Analysis.Workers)

	for _, sym := range symbols {
		sym := sym // per-iteration copy; required while go.mod targets go < 1.22
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			sr, err := r.runSymbol(ctx, sym)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Symbols dropped by cancellation are not data failures;
				// they belong in neither Symbols nor Failures.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				r.log.Warn("symbol rejected", "symbol", sym.Code, "error", err)
				res.Failures[sym.Code] = err
				return nil
			}

			res.Symbols = append(res.Symbols, sr)
			res.Intervals = append(res.Intervals, sr.Intervals...)
			return nil
		})
	}

	// All workers are done before the reduction reads anything.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.Symbols, func(i, j int) bool {
		return res.Symbols[i].Symbol.Code < res.Symbols[j].Symbol.Code
	})
	sort.Slice(res.Intervals, func(i, j int) bool {
		a, b := res.Intervals[i], res.Intervals[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.From.Date.Before(b.From.Date)
	})

	res.GoldenToDeath = Aggregate(res.Intervals, GoldenToDeath)
	res.DeathToGolden = Aggregate(res.Intervals, DeathToGolden)

	return res, nil
}

func (r *BatchRunner) runSymbol(ctx context.Context, sym market.Symbol) (SymbolResult, error) {
	bars, err := r.bars.GetBars(ctx, sym.Code, r.cfg.Store.Period)
	if err != nil {
		return SymbolResult{}, err
	}

	points, err := indicator.ComputeMACD(bars, r.cfg.MACD)
	if err != nil {
		return SymbolResult{}, err
	}

	events := indicator.DetectCrosses(sym.Code, points, r.cfg.MACD.Warmup)

	return SymbolResult{
		Symbol:    sym,
		Events:    events,
		Intervals: PairEvents(events),
	}, nil
}
