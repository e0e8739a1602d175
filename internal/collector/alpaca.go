package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"
)

type barSink interface {
	PutBars(ctx context.Context, code, period string, bars []market.Bar) error
}

// AlpacaCollector pulls daily bars for a fixed symbol universe from the
// Alpaca market data API into the bar store.
type AlpacaCollector struct {
	log      *slog.Logger
	client   *marketdata.Client
	sink     barSink
	symbols  []market.Symbol
	period   string
	lookback time.Duration
	loc      *time.Location
}

func NewAlpacaCollector(log *slog.Logger, cfg config.Alpaca, sink barSink, symbols []market.Symbol, period string, lookbackDays int) (*AlpacaCollector, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load exchange timezone: %w", err)
	}

	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.ApiKey,
		APISecret: cfg.Secret,
		BaseURL:   cfg.BaseUrl,
	})

	return &AlpacaCollector{
		log:      log,
		client:   client,
		sink:     sink,
		symbols:  symbols,
		period:   period,
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		loc:      loc,
	}, nil
}

// IsTradingTime reports whether t falls inside regular US equity hours.
func (c *AlpacaCollector) IsTradingTime(t time.Time) bool {
	t = t.In(c.loc)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	open := time.Date(t.Year(), t.Month(), t.Day(), 9, 30, 0, 0, c.loc)
	close := time.Date(t.Year(), t.Month(), t.Day(), 16, 0, 0, 0, c.loc)
	return !t.Before(open) && !t.After(close)
}

func (c *AlpacaCollector) CollectData(ctx context.Context) error {
	end := time.Now()
	start := end.Add(-c.lookback)

	for _, sym := range c.symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := c.client.GetBars(sym.Code, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		if err != nil {
			return fmt.Errorf("fetch bars for %s: %w", sym.Code, err)
		}

		bars := make([]market.Bar, 0, len(raw))
		for _, b := range raw {
			bars = append(bars, market.Bar{
				Date:   market.Day(b.Timestamp.UTC()),
				Open:   decimal.NewFromFloat(b.Open),
				High:   decimal.NewFromFloat(b.High),
				Low:    decimal.NewFromFloat(b.Low),
				Close:  decimal.NewFromFloat(b.Close),
				Volume: decimal.NewFromInt(int64(b.Volume)),
			})
		}

		if err := c.sink.PutBars(ctx, sym.Code, c.period, bars); err != nil {
			return fmt.Errorf("store bars for %s: %w", sym.Code, err)
		}

		c.log.Info("collected bars", "symbol", sym.Code, "count", len(bars))
	}

	return nil
}
