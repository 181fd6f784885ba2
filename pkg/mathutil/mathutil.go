// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp bounds val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Sum adds up a slice of float64 values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// SumInt adds up a slice of int64 values.
func SumInt(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
