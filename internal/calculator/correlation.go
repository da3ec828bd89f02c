package calculator

import (
	"math"

	"MarketDashboard/internal/model"
)

// Pearson computes the correlation coefficient of x and y over the positions
// where both samples are defined. Returns NaN with fewer than two pairs or
// when either side has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var sumX, sumY float64
	count := 0
	for i := 0; i < n; i++ {
		if !Defined(x[i]) || !Defined(y[i]) {
			continue
		}
		sumX += x[i]
		sumY += y[i]
		count++
	}
	if count < 2 {
		return math.NaN()
	}
	meanX := sumX / float64(count)
	meanY := sumY / float64(count)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		if !Defined(x[i]) || !Defined(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(varX*varY)
	// Clamp rounding drift so the diagonal is exactly 1.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// CorrelationMatrix builds the pairwise Pearson matrix over the given fields.
func CorrelationMatrix(series *model.DerivedSeries, fields []model.Field) model.CorrelationMatrix {
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		cols[i] = series.Column(f)
	}

	m := model.CorrelationMatrix{
		Labels: append([]model.Field(nil), fields...),
		Values: make([][]float64, len(fields)),
	}
	for i := range fields {
		m.Values[i] = make([]float64, len(fields))
	}
	for i := range fields {
		for j := i; j < len(fields); j++ {
			r := Pearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}
