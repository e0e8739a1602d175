package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CrossType int

const (
	CrossGolden CrossType = iota
	CrossDeath
)

func (t CrossType) String() string {
	switch t {
	case CrossGolden:
		return "golden"
	case CrossDeath:
		return "death"
	default:
		return fmt.Sprintf("cross_%d", int(t))
	}
}

// CrossEvent marks a histogram sign flip for one symbol. Events for a symbol
// always alternate golden/death, which follows from the two-state sign
// machine emitting them.
type CrossEvent struct {
	Symbol string
	Date   time.Time
	Type   CrossType
	Price  decimal.Decimal
}

type histSign int

const (
	// signUnknown: no point observed since warmup completed.
	signUnknown histSign = iota
	// signFlat: every post-warmup histogram so far was exactly zero. The
	// next nonzero sign is a genuine crossing out of the zero line.
	signFlat
	signPositive
	signNegative
)

// CrossDetector tracks the MACD histogram sign and emits an event on every
// flip. A histogram of exactly zero continues the prior sign, so an exact
// zero crossing is counted once, on the bar that leaves zero. Nothing is
// emitted until warmup points have been consumed, since early EMA output is
// biased toward its seed.
type CrossDetector struct {
	symbol   string
	warmup   int
	consumed int
	sign     histSign
}

func NewCrossDetector(symbol string, warmup int) *CrossDetector {
	return &CrossDetector{symbol: symbol, warmup: warmup}
}

// Observe consumes one MACD point and returns the crossover event it
// triggers, if any.
func (d *CrossDetector) Observe(p MACDPoint) (CrossEvent, bool) {
	d.consumed++
	if d.consumed <= d.warmup {
		return CrossEvent{}, false
	}

	next := d.sign
	switch {
	case p.Hist > 0:
		next = signPositive
	case p.Hist < 0:
		next = signNegative
	case d.sign == signUnknown:
		next = signFlat
	}

	prev := d.sign
	d.sign = next

	// Only a flip between established states is a crossing. The first
	// nonzero sign after warmup sets the baseline silently unless the
	// histogram sat exactly on zero before, which counts as both ≤0 and
	// ≥0 and so crosses in either direction.
	if next == prev || prev == signUnknown {
		return CrossEvent{}, false
	}

	e := CrossEvent{
		Symbol: d.symbol,
		Date:   p.Date,
		Price:  p.Close,
	}
	if next == signPositive {
		e.Type = CrossGolden
	} else {
		e.Type = CrossDeath
	}

	return e, true
}

// DetectCrosses runs a full point series through a fresh detector.
func DetectCrosses(symbol string, points []MACDPoint, warmup int) []CrossEvent {
	d := NewCrossDetector(symbol, warmup)

	var events []CrossEvent
	for _, p := range points {
		if e, ok := d.Observe(p); ok {
			events = append(events, e)
		}
	}

	return events
}
