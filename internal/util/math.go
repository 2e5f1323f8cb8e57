package util

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Coerce returns the given value, limited to the range [min, max]
func Coerce[T constraints.Integer | constraints.Float](value, min, max T) T {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	if len(values) <= 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// UpdateSimpleMovingAvg calculates the new moving average, based on an existing average and buffer size
func UpdateSimpleMovingAvg(oldAvg float64, n int, newValue float64) float64 {
	return oldAvg + (1/float64(n))*(newValue-oldAvg)
}

// DutyToFraction maps a duty value in [0..255] to [0..1]
func DutyToFraction(duty int) float64 {
	return float64(Coerce(duty, 0, 255)) / 255.0
}

// FractionToDuty maps a fraction in [0..1] to the nearest duty value in [0..255]
func FractionToDuty(fraction float64) int {
	return int(math.Round(Coerce(fraction, 0, 1) * 255))
}
