package indicator

import (
	"fmt"
	"time"

	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"
)

// MACDPoint is one MACD sample: DIF (fast minus slow EMA), DEA (EMA of DIF)
// and the histogram (DIF minus DEA) whose sign drives crossover detection.
// Close is carried through from the source bar so crossover events can be
// priced without a second pass over the series.
type MACDPoint struct {
	Date  time.Time
	Close decimal.Decimal
	DIF   float64
	DEA   float64
	Hist  float64
}

// MACDEngine feeds closing prices through three EMAs and yields one MACDPoint
// per bar. State is not resettable in place: construct a fresh engine per run
// so reruns can never contaminate each other.
type MACDEngine struct {
	emaFast   *EMA
	emaSlow   *EMA
	emaSignal *EMA
}

func NewMACDEngine(cfg config.MACD) *MACDEngine {
	return &MACDEngine{
		emaFast:   NewEMA(cfg.Fast),
		emaSlow:   NewEMA(cfg.Slow),
		emaSignal: NewEMA(cfg.Signal),
	}
}

func (e *MACDEngine) Feed(bar market.Bar) MACDPoint {
	close, _ := bar.Close.Float64()
	dif := e.emaFast.Update(close) - e.emaSlow.Update(close)
	dea := e.emaSignal.Update(dif)

	return MACDPoint{
		Date:  bar.Date,
		Close: bar.Close,
		DIF:   dif,
		DEA:   dea,
		Hist:  dif - dea,
	}
}

// ComputeMACD runs a whole bar series through a fresh engine. Bars must be
// sorted ascending by unique date. A series shorter than the slow period has
// no meaningful slow EMA and fails with market.ErrInsufficientHistory.
//
// A bar without a usable close aborts the series in strict mode; in
// permissive mode the single bar is dropped.
func ComputeMACD(bars []market.Bar, cfg config.MACD) ([]MACDPoint, error) {
	if len(bars) < cfg.Slow {
		return nil, fmt.Errorf("%w: have %d bars, need %d", market.ErrInsufficientHistory, len(bars), cfg.Slow)
	}

	if err := market.ValidateSeries(bars); err != nil {
		return nil, err
	}

	engine := NewMACDEngine(cfg)
	points := make([]MACDPoint, 0, len(bars))
	for _, b := range bars {
		if !b.HasClose() {
			if cfg.Strict() {
				return nil, &market.MissingFieldError{Date: b.Date, Field: "close"}
			}
			continue
		}

		points = append(points, engine.Feed(b))
	}

	return points, nil
}
