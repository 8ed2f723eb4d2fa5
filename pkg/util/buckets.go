package util

import (
	"math"
	"strconv"
)

// DecimalExponentialBuckets generates histogram bucket boundaries for
// Prometheus, spanning powersOf10 powers of ten starting at
// 10^lowestPowerOf10. Every power of ten is subdivided into
// stepsInBetween+1 exponentially growing steps.
//
// Boundaries are rounded to five significant digits and parsed back,
// so that every power of ten is represented exactly and metric labels
// remain short.
func DecimalExponentialBuckets(lowestPowerOf10, powersOf10, stepsInBetween int) []float64 {
	steps := stepsInBetween + 1
	significands := make([]string, 0, steps)
	for i := 0; i < steps; i++ {
		significand := math.Pow(10.0, float64(i)/float64(steps))
		significands = append(significands, strconv.FormatFloat(math.Floor(significand*1e4)/1e4, 'f', -1, 64))
	}

	buckets := make([]float64, 0, powersOf10*steps+1)
	for exponent := lowestPowerOf10; exponent < lowestPowerOf10+powersOf10; exponent++ {
		for _, significand := range significands {
			buckets = append(buckets, mustParseBoundary(significand, exponent))
		}
	}
	return append(buckets, mustParseBoundary("1", lowestPowerOf10+powersOf10))
}

func mustParseBoundary(significand string, exponent int) float64 {
	v, err := strconv.ParseFloat(significand+"e"+strconv.Itoa(exponent), 64)
	if err != nil {
		panic("Failed to compute bucket boundary: " + err.Error())
	}
	return v
}
