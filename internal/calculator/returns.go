package calculator

import "math"

// PercentChange returns (v[i]-v[i-1])/v[i-1] for every i >= 1.
// The first element is NaN. NaN inputs propagate and a zero
// predecessor yields ±Inf (or NaN for 0/0).
func PercentChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev := values[i-1]
		out[i] = (values[i] - prev) / prev
	}
	return out
}

// Defined reports whether v is a usable sample.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DefinedValues drops NaN and ±Inf samples, keeping order.
func DefinedValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if Defined(v) {
			out = append(out, v)
		}
	}
	return out
}
