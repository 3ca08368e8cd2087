package bench

import "math"

// Stats holds the mean and sample standard deviation of one timing
// field across valid runs.
type Stats struct {
	Mean float64
	Std  float64
}

// Aggregate computes mean and sample (n-1) standard deviation. With
// fewer than two samples the deviation is 0.0, not an error.
func Aggregate(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if len(values) < 2 {
		return Stats{Mean: mean, Std: 0.0}
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return Stats{
		Mean: mean,
		Std:  math.Sqrt(sq / float64(len(values)-1)),
	}
}
