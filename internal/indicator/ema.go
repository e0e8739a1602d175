package indicator

// EMA is an incremental exponential moving average with the standard MACD
// seeding convention: the first sample becomes the initial value, every later
// sample is blended in with alpha = 2/(period+1).
//
// The first period outputs are biased toward the seed; callers gate on a
// warmup count before trusting anything derived from them.
type EMA struct {
	alpha  float64
	value  float64
	seeded bool
}

func NewEMA(period int) *EMA {
	return &EMA{alpha: 2.0 / (float64(period) + 1)}
}

// Update folds price into the average and returns the new value. The caller
// screens NaN input; Update never fails.
//
// The recurrence is written in incremental form, value += alpha*(price-value),
// which keeps a constant input series exactly constant. The flat form can
// drift by an ulp per step, and downstream sign detection on the MACD
// histogram would amplify that drift into phantom crossings.
func (e *EMA) Update(price float64) float64 {
	if !e.seeded {
		e.value = price
		e.seeded = true
		return e.value
	}

	e.value += e.alpha * (price - e.value)
	return e.value
}

func (e *EMA) Value() float64 {
	return e.value
}

func (e *EMA) Seeded() bool {
	return e.seeded
}
