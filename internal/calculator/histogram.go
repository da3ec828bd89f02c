package calculator

import (
	"errors"
	"math"

	"MarketDashboard/internal/model"
)

// Histogram buckets the defined values into `bins` equal-width bins spanning
// the observed min and max. Values equal to the max land in the last bin.
// When every value is identical the range widens to [v-0.5, v+0.5].
// Returns no bins when there is nothing to bucket.
func Histogram(values []float64, bins int) ([]model.HistogramBin, error) {
	if bins <= 0 {
		return nil, errors.New("bins must be positive")
	}
	samples := DefinedValues(values)
	if len(samples) == 0 {
		return []model.HistogramBin{}, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range samples {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out, nil
}
