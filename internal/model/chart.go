package model

import (
	"math"
	"time"

	"github.com/guregu/null/v5"
)

// NoDataTitle labels every chart of a placeholder set.
const NoDataTitle = "No data available"

// Point is a single (date, value) sample of a time-series view.
type Point struct {
	Date  string     `json:"date"`
	Value null.Float `json:"value"`
}

// SeriesView is a date-indexed line or bar view.
type SeriesView struct {
	Title  string  `json:"title"`
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// HistogramView is the bucketed return distribution.
type HistogramView struct {
	Title string         `json:"title"`
	Label string         `json:"label"`
	Bins  []HistogramBin `json:"bins"`
}

// HeatmapView is the annotated correlation matrix.
type HeatmapView struct {
	Title  string         `json:"title"`
	Labels []string       `json:"labels"`
	Cells  [][]null.Float `json:"cells"`
}

// ChartSet holds the four chart-ready projections of one query.
type ChartSet struct {
	Ticker      string        `json:"ticker"`
	Empty       bool          `json:"empty"`
	Price       SeriesView    `json:"price"`
	Volume      SeriesView    `json:"volume"`
	Returns     HistogramView `json:"returns"`
	Correlation HeatmapView   `json:"correlation"`
}

// Float wraps v for JSON output; NaN and ±Inf become null.
func Float(v float64) null.Float {
	return null.NewFloat(v, !math.IsNaN(v) && !math.IsInf(v, 0))
}

// NewPoint builds a series sample for day t.
func NewPoint(t time.Time, v float64) Point {
	return Point{Date: t.Format(DateLayout), Value: Float(v)}
}
