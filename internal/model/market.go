package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in journal rows.
const DateLayout = "2006-01-02"

// Query identifies one dashboard request.
type Query struct {
	Ticker string    `json:"ticker"`
	Start  time.Time `json:"-"`
	End    time.Time `json:"-"`
}

// Inverted reports whether the range runs backwards.
func (q Query) Inverted() bool {
	return q.Start.After(q.End)
}

// StartDate returns the start as YYYY-MM-DD.
func (q Query) StartDate() string { return q.Start.Format(DateLayout) }

// EndDate returns the end as YYYY-MM-DD.
func (q Query) EndDate() string { return q.End.Format(DateLayout) }

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// ColumnLabel is a possibly composite column name, e.g. ("Adj Close", "AAPL").
type ColumnLabel []string

// First returns the leading label component.
func (l ColumnLabel) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

func (l ColumnLabel) String() string {
	return "(" + strings.Join(l, ", ") + ")"
}

// Column is one labeled value column of a Frame.
type Column struct {
	Label  ColumnLabel
	Values []float64
}

// Frame is the raw time-indexed table returned by a data source.
// Every column has exactly len(Index) values.
type Frame struct {
	Index   []time.Time
	Columns []Column
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Index)
}

// Empty reports whether the frame holds no rows.
func (f *Frame) Empty() bool { return f.Len() == 0 }

// FrameFromBars builds a frame whose columns are labeled (field, ticker),
// the shape a multi-symbol download produces even for a single symbol.
func FrameFromBars(ticker string, bars []OHLCV) *Frame {
	n := len(bars)
	f := &Frame{Index: make([]time.Time, n)}
	cols := map[Field][]float64{}
	for _, name := range RawFields {
		cols[name] = make([]float64, n)
	}
	for i, b := range bars {
		f.Index[i] = b.Time
		cols[FieldOpen][i] = b.Open
		cols[FieldHigh][i] = b.High
		cols[FieldLow][i] = b.Low
		cols[FieldClose][i] = b.Close
		cols[FieldAdjClose][i] = b.AdjClose
		cols[FieldVolume][i] = b.Volume
	}
	for _, name := range RawFields {
		f.Columns = append(f.Columns, Column{
			Label:  ColumnLabel{string(name), ticker},
			Values: cols[name],
		})
	}
	return f
}
