package model

import (
	"math"
	"time"
)

// Field is a canonical single-level column name.
type Field string

const (
	FieldOpen        Field = "Open"
	FieldHigh        Field = "High"
	FieldLow         Field = "Low"
	FieldClose       Field = "Close"
	FieldAdjClose    Field = "Adj Close"
	FieldVolume      Field = "Volume"
	FieldDailyReturn Field = "Daily Return"
)

// RawFields are the columns a data source is expected to deliver.
var RawFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume}

// NumericFields are the columns of the correlation matrix, in display order.
var NumericFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume, FieldDailyReturn}

// Row is one derived bar. Undefined values are NaN.
type Row struct {
	Time        time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	AdjClose    float64
	Volume      float64
	DailyReturn float64
}

// Value returns the named field of the row.
func (r Row) Value(f Field) float64 {
	switch f {
	case FieldOpen:
		return r.Open
	case FieldHigh:
		return r.High
	case FieldLow:
		return r.Low
	case FieldClose:
		return r.Close
	case FieldAdjClose:
		return r.AdjClose
	case FieldVolume:
		return r.Volume
	case FieldDailyReturn:
		return r.DailyReturn
	}
	return math.NaN()
}

// DerivedSeries is the flattened raw series plus the daily return column.
type DerivedSeries struct {
	Rows []Row
}

// Len returns the number of rows.
func (d *DerivedSeries) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Column extracts one field across all rows.
func (d *DerivedSeries) Column(f Field) []float64 {
	out := make([]float64, d.Len())
	for i, r := range d.Rows {
		out[i] = r.Value(f)
	}
	return out
}

// CorrelationMatrix is a square symmetric matrix of Pearson coefficients.
type CorrelationMatrix struct {
	Labels []Field
	Values [][]float64
}

// HistogramBin is one equal-width bucket. Upper is exclusive except for the last bin.
type HistogramBin struct {
	Lower float64
	Upper float64
	Count int
}
