package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateMeanAndSampleStd(t *testing.T) {
	// [5,6,7] with one warmup run leaves [6,7].
	stats := Aggregate([]float64{6.0, 7.0})
	assert.InDelta(t, 6.5, stats.Mean, 1e-9)
	assert.InDelta(t, 0.7071, stats.Std, 1e-3)
}

func TestAggregateThreeValues(t *testing.T) {
	stats := Aggregate([]float64{5.0, 6.0, 7.0})
	assert.InDelta(t, 6.0, stats.Mean, 1e-9)
	assert.InDelta(t, 1.0, stats.Std, 1e-9)
}

func TestAggregateSingleValueHasZeroStd(t *testing.T) {
	stats := Aggregate([]float64{4.2})
	assert.InDelta(t, 4.2, stats.Mean, 1e-9)
	assert.Equal(t, 0.0, stats.Std)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	assert.Equal(t, 0.0, stats.Mean)
	assert.Equal(t, 0.0, stats.Std)
}
