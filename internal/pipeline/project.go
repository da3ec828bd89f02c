package pipeline

import (
	"fmt"

	"MarketDashboard/internal/calculator"
	"MarketDashboard/internal/model"

	"github.com/guregu/null/v5"
	"github.com/rs/zerolog/log"
)

// HistogramBins is the number of equal-width return buckets.
const HistogramBins = 50

const (
	volumeTitle  = "Volume Traded"
	returnsTitle = "Return Distribution"
	heatmapTitle = "Feature Correlation Heatmap"
)

// Placeholder returns the chart set rendered when a query yields no data.
func Placeholder(ticker string) *model.ChartSet {
	return &model.ChartSet{
		Ticker:      ticker,
		Empty:       true,
		Price:       model.SeriesView{Title: model.NoDataTitle, Points: []model.Point{}},
		Volume:      model.SeriesView{Title: model.NoDataTitle, Points: []model.Point{}},
		Returns:     model.HistogramView{Title: model.NoDataTitle, Bins: []model.HistogramBin{}},
		Correlation: model.HeatmapView{Title: model.NoDataTitle, Labels: []string{}, Cells: [][]null.Float{}},
	}
}

// Project builds the four chart views. A nil series is the empty marker and
// yields Placeholder. Short series produce degenerate but well-formed views.
func Project(derived *model.DerivedSeries, ticker string) *model.ChartSet {
	if derived == nil || derived.Len() == 0 {
		return Placeholder(ticker)
	}

	set := &model.ChartSet{
		Ticker: ticker,
		Price: model.SeriesView{
			Title:  fmt.Sprintf("%s Closing Price", ticker),
			Label:  string(model.FieldAdjClose),
			Points: make([]model.Point, derived.Len()),
		},
		Volume: model.SeriesView{
			Title:  volumeTitle,
			Label:  string(model.FieldVolume),
			Points: make([]model.Point, derived.Len()),
		},
	}
	for i, r := range derived.Rows {
		set.Price.Points[i] = model.NewPoint(r.Time, r.AdjClose)
		set.Volume.Points[i] = model.NewPoint(r.Time, r.Volume)
	}

	bins, err := calculator.Histogram(derived.Column(model.FieldDailyReturn), HistogramBins)
	if err != nil {
		log.Warn().Err(err).Msg("return histogram failed, rendering empty distribution")
		bins = []model.HistogramBin{}
	}
	set.Returns = model.HistogramView{
		Title: returnsTitle,
		Label: string(model.FieldDailyReturn),
		Bins:  bins,
	}

	corr := calculator.CorrelationMatrix(derived, model.NumericFields)
	set.Correlation = model.HeatmapView{
		Title:  heatmapTitle,
		Labels: make([]string, len(corr.Labels)),
		Cells:  make([][]null.Float, len(corr.Values)),
	}
	for i, f := range corr.Labels {
		set.Correlation.Labels[i] = string(f)
	}
	for i, row := range corr.Values {
		set.Correlation.Cells[i] = make([]null.Float, len(row))
		for j, v := range row {
			set.Correlation.Cells[i][j] = model.Float(v)
		}
	}
	return set
}
