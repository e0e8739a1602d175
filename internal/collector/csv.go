package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/store"
)

// CSVCollector loads bar history for each symbol from csv files. It exists
// for offline runs and backfills, so any time is trading time.
type CSVCollector struct {
	log    *slog.Logger
	cfg    config.CSV
	sink   barSink
	period string
}

func NewCSVCollector(log *slog.Logger, cfg config.CSV, sink barSink, period string) *CSVCollector {
	return &CSVCollector{
		log:    log,
		cfg:    cfg,
		sink:   sink,
		period: period,
	}
}

func (c *CSVCollector) IsTradingTime(time.Time) bool {
	return true
}

func (c *CSVCollector) CollectData(ctx context.Context) error {
	for code, path := range c.cfg.Data {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bars, err := store.LoadBars(path)
		if err != nil {
			return fmt.Errorf("load bars for %s: %w", code, err)
		}

		if err := c.sink.PutBars(ctx, code, c.period, bars); err != nil {
			return fmt.Errorf("store bars for %s: %w", code, err)
		}

		c.log.Info("loaded bars", "symbol", code, "path", path, "count", len(bars))
	}

	return nil
}
