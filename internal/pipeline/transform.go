// Package pipeline turns a raw OHLCV frame into the derived series and the
// four chart-ready views shown on the dashboard.
package pipeline

import (
	"errors"
	"math"
	"strings"

	"MarketDashboard/internal/calculator"
	"MarketDashboard/internal/model"

	"github.com/rs/zerolog/log"
)

// ErrNoData marks an empty source result. Callers render placeholders.
var ErrNoData = errors.New("no data available")

// canonical maps a normalized column name to its field.
var canonical = map[string]model.Field{
	"open":     model.FieldOpen,
	"high":     model.FieldHigh,
	"low":      model.FieldLow,
	"close":    model.FieldClose,
	"adjclose": model.FieldAdjClose,
	"volume":   model.FieldVolume,
}

// normalizeName lowercases s and drops spaces, '_' and '-'.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Flatten reduces every composite column label to its first component and
// maps it onto the canonical fields. Unknown columns are ignored; when two
// columns flatten to the same field the first one wins.
func Flatten(raw *model.Frame) map[model.Field][]float64 {
	out := make(map[model.Field][]float64, len(model.RawFields))
	for _, col := range raw.Columns {
		field, ok := canonical[normalizeName(col.Label.First())]
		if !ok {
			continue
		}
		if _, dup := out[field]; dup {
			log.Warn().
				Str("field", string(field)).
				Str("label", col.Label.String()).
				Msg("duplicate column after flattening, keeping the first")
			continue
		}
		out[field] = col.Values
	}
	return out
}

// Transform flattens the raw frame and appends the daily return column.
// Returns ErrNoData when raw has no rows.
func Transform(raw *model.Frame) (*model.DerivedSeries, error) {
	if raw.Empty() {
		return nil, ErrNoData
	}
	n := raw.Len()
	cols := Flatten(raw)

	get := func(f model.Field, i int) float64 {
		vals, ok := cols[f]
		if !ok || i >= len(vals) {
			return math.NaN()
		}
		return vals[i]
	}

	adj := make([]float64, n)
	for i := range adj {
		adj[i] = get(model.FieldAdjClose, i)
	}
	returns := calculator.PercentChange(adj)

	series := &model.DerivedSeries{Rows: make([]model.Row, n)}
	for i := 0; i < n; i++ {
		series.Rows[i] = model.Row{
			Time:        raw.Index[i],
			Open:        get(model.FieldOpen, i),
			High:        get(model.FieldHigh, i),
			Low:         get(model.FieldLow, i),
			Close:       get(model.FieldClose, i),
			AdjClose:    adj[i],
			Volume:      get(model.FieldVolume, i),
			DailyReturn: returns[i],
		}
	}
	return series, nil
}
