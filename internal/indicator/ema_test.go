package indicator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_SeedsWithFirstSample(t *testing.T) {
	for _, period := range []int{1, 2, 9, 12, 26} {
		t.Run(fmt.Sprintf("period_%d", period), func(t *testing.T) {
			e := NewEMA(period)
			require.False(t, e.Seeded())

			got := e.Update(42.5)
			assert.Equal(t, 42.5, got)
			assert.True(t, e.Seeded())
		})
	}
}

func TestEMA_ValueIsConvexCombination(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, period := range []int{1, 2, 5, 12, 26} {
		e := NewEMA(period)
		prev := e.Update(rng.Float64() * 100)

		for i := 0; i < 500; i++ {
			price := rng.Float64() * 100
			got := e.Update(price)

			lo, hi := min(prev, price), max(prev, price)
			require.GreaterOrEqual(t, got, lo, "period %d step %d", period, i)
			require.LessOrEqual(t, got, hi, "period %d step %d", period, i)
			prev = got
		}
	}
}

func TestEMA_ConstantInputStaysExact(t *testing.T) {
	e := NewEMA(26)
	for i := 0; i < 200; i++ {
		got := e.Update(10)
		require.Equal(t, 10.0, got, "step %d", i)
	}
}

func TestEMA_PeriodOneTracksInput(t *testing.T) {
	e := NewEMA(1)
	e.Update(5)
	assert.Equal(t, 7.0, e.Update(7))
	assert.Equal(t, 3.0, e.Update(3))
}
