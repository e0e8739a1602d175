package indicator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCrosses_BasicFlips(t *testing.T) {
	tbl := []struct {
		name   string
		hists  []float64
		warmup int
		types  []CrossType
	}{
		{
			name:  "negative to positive",
			hists: []float64{-1, -0.5, 0.5, 1},
			types: []CrossType{CrossGolden},
		},
		{
			name:  "positive to negative",
			hists: []float64{1, 0.5, -0.5},
			types: []CrossType{CrossDeath},
		},
		{
			name:  "full cycle",
			hists: []float64{-1, 1, -1, 1},
			types: []CrossType{CrossGolden, CrossDeath, CrossGolden},
		},
		{
			name:  "zero run continues prior sign",
			hists: []float64{-1, 0, 0, -1, 0, 1},
			types: []CrossType{CrossGolden},
		},
		{
			name:  "zero does not double count a crossing",
			hists: []float64{-1, 0, 1, 0, -1},
			types: []CrossType{CrossGolden, CrossDeath},
		},
		{
			name:  "flat start then positive",
			hists: []float64{0, 0, 0, 1},
			types: []CrossType{CrossGolden},
		},
		{
			name:  "flat start then negative",
			hists: []float64{0, 0, -1},
			types: []CrossType{CrossDeath},
		},
		{
			name:  "first sign sets baseline silently",
			hists: []float64{-1, -1, -1},
			types: nil,
		},
		{
			name:   "warmup suppresses early flips",
			hists:  []float64{-1, 1, -1, 1},
			warmup: 3,
			types:  nil,
		},
		{
			name:   "flip right after warmup needs a baseline",
			hists:  []float64{-1, -1, 1, -1},
			warmup: 2,
			types:  []CrossType{CrossDeath},
		},
	}

	for _, c := range tbl {
		t.Run(c.name, func(t *testing.T) {
			events := DetectCrosses("TEST", histPoints(c.hists...), c.warmup)

			require.Len(t, events, len(c.types))
			for i, typ := range c.types {
				assert.Equal(t, typ, events[i].Type)
				assert.Equal(t, "TEST", events[i].Symbol)
			}
		})
	}
}

func TestDetectCrosses_EventCarriesBarDateAndPrice(t *testing.T) {
	points := histPoints(-1, -1, 2)
	events := DetectCrosses("TEST", points, 0)

	require.Len(t, events, 1)
	assert.Equal(t, points[2].Date, events[0].Date)
	assert.True(t, points[2].Close.Equal(events[0].Price))
}

func TestDetectCrosses_AlternationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		hists := make([]float64, 300)
		for i := range hists {
			// Injected zero runs exercise the tie-break policy.
			switch rng.Intn(3) {
			case 0:
				hists[i] = 0
			case 1:
				hists[i] = rng.Float64() + 0.01
			default:
				hists[i] = -rng.Float64() - 0.01
			}
		}

		warmup := rng.Intn(50)
		events := DetectCrosses("TEST", histPoints(hists...), warmup)

		for i := 1; i < len(events); i++ {
			require.NotEqual(t, events[i-1].Type, events[i].Type,
				"run %d: consecutive %s events", run, events[i].Type)
			require.True(t, events[i-1].Date.Before(events[i].Date))
		}
	}
}

func TestDetectCrosses_ConstantThenRamp(t *testing.T) {
	// 40 flat bars keep the histogram exactly on zero through warmup; the
	// ramp pushes the fast ema ahead of the slow one for a single golden
	// cross and nothing reverses it.
	closes := make([]float64, 0, 50)
	for i := 0; i < 40; i++ {
		closes = append(closes, 10)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 10+float64(i))
	}

	cfg := macdConfig(12, 26, 9)
	points, err := ComputeMACD(dailyBars(closes...), cfg)
	require.NoError(t, err)

	events := DetectCrosses("TEST", points, cfg.Warmup)

	require.Len(t, events, 1)
	assert.Equal(t, CrossGolden, events[0].Type)
	assert.False(t, events[0].Date.Before(day(40)), "cross must fall inside the ramp")
}
