package pipeline

import (
	"math"
	"testing"
	"time"

	"MarketDashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func barsWithAdj(adj ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(adj))
	for i, a := range adj {
		bars[i] = model.OHLCV{
			Time:     day(i),
			Open:     a * 0.99,
			High:     a * 1.02,
			Low:      a * 0.97,
			Close:    a * 1.01,
			AdjClose: a,
			Volume:   float64(1000 + 37*i*i),
		}
	}
	return bars
}

func TestTransform_ScenarioA(t *testing.T) {
	raw := model.FrameFromBars("AAPL", barsWithAdj(100, 110, 99))
	got, err := Transform(raw)
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	assert.True(t, math.IsNaN(got.Rows[0].DailyReturn))
	assert.InDelta(t, 0.10, got.Rows[1].DailyReturn, 1e-12)
	assert.InDelta(t, -0.10, got.Rows[2].DailyReturn, 1e-12)
}

func TestTransform_LengthAndReturns(t *testing.T) {
	adj := []float64{50, 51.5, 49.25, 49.25, 60, 58.1, 70.3}
	raw := model.FrameFromBars("MSFT", barsWithAdj(adj...))
	got, err := Transform(raw)
	require.NoError(t, err)
	require.Equal(t, raw.Len(), got.Len())
	assert.True(t, math.IsNaN(got.Rows[0].DailyReturn))

	for i := 1; i < len(adj); i++ {
		want := (adj[i] - adj[i-1]) / adj[i-1]
		assert.InDelta(t, want, got.Rows[i].DailyReturn, 1e-12, "row %d", i)
		assert.Equal(t, day(i), got.Rows[i].Time)
	}
}

func TestTransform_Empty(t *testing.T) {
	_, err := Transform(&model.Frame{})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Transform(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTransform_FlattensCompositeLabels(t *testing.T) {
	raw := &model.Frame{
		Index: []time.Time{day(0), day(1)},
		Columns: []model.Column{
			{Label: model.ColumnLabel{"AdjClose", "TICKER"}, Values: []float64{10, 12}},
			{Label: model.ColumnLabel{"volume", "TICKER"}, Values: []float64{5, 6}},
			{Label: model.ColumnLabel{"Dividends", "TICKER"}, Values: []float64{0, 0}},
		},
	}
	got, err := Transform(raw)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Rows[1].AdjClose)
	assert.Equal(t, 6.0, got.Rows[1].Volume)
	assert.InDelta(t, 0.2, got.Rows[1].DailyReturn, 1e-12)
	assert.True(t, math.IsNaN(got.Rows[1].Open), "missing columns are undefined")
}

func TestFlatten_NameVariants(t *testing.T) {
	for _, name := range []string{"Adj Close", "adj_close", "ADJ-CLOSE", " AdjClose "} {
		raw := &model.Frame{
			Index:   []time.Time{day(0)},
			Columns: []model.Column{{Label: model.ColumnLabel{name}, Values: []float64{1}}},
		}
		cols := Flatten(raw)
		assert.Contains(t, cols, model.FieldAdjClose, name)
	}
}

func TestFlatten_DuplicateKeepsFirst(t *testing.T) {
	raw := &model.Frame{
		Index: []time.Time{day(0)},
		Columns: []model.Column{
			{Label: model.ColumnLabel{"Close", "AAA"}, Values: []float64{1}},
			{Label: model.ColumnLabel{"Close", "BBB"}, Values: []float64{2}},
		},
	}
	cols := Flatten(raw)
	assert.Equal(t, []float64{1}, cols[model.FieldClose])
}

func TestProject_FullSeries(t *testing.T) {
	raw := model.FrameFromBars("AAPL", barsWithAdj(100, 101, 99, 102, 104, 103, 108, 107))
	derived, err := Transform(raw)
	require.NoError(t, err)

	set := Project(derived, "AAPL")
	assert.False(t, set.Empty)
	assert.Equal(t, "AAPL Closing Price", set.Price.Title)
	assert.Equal(t, "Volume Traded", set.Volume.Title)
	assert.Equal(t, "Return Distribution", set.Returns.Title)
	assert.Equal(t, "Feature Correlation Heatmap", set.Correlation.Title)

	require.Len(t, set.Price.Points, 8)
	assert.Equal(t, "2024-01-02", set.Price.Points[0].Date)
	assert.Equal(t, 100.0, set.Price.Points[0].Value.Float64)
	require.Len(t, set.Volume.Points, 8)

	require.Len(t, set.Returns.Bins, HistogramBins)
	total := 0
	for _, b := range set.Returns.Bins {
		total += b.Count
	}
	assert.Equal(t, 7, total, "first undefined return is excluded")

	require.Len(t, set.Correlation.Labels, 7)
	assert.Equal(t, "Daily Return", set.Correlation.Labels[6])
	for i := range set.Correlation.Cells {
		assert.True(t, set.Correlation.Cells[i][i].Valid)
		assert.Equal(t, 1.0, set.Correlation.Cells[i][i].Float64)
	}
}

func TestProject_Placeholder(t *testing.T) {
	set := Project(nil, "NOPE")
	assert.True(t, set.Empty)
	for _, title := range []string{set.Price.Title, set.Volume.Title, set.Returns.Title, set.Correlation.Title} {
		assert.Equal(t, model.NoDataTitle, title)
	}
	assert.Empty(t, set.Price.Points)
	assert.Empty(t, set.Returns.Bins)
	assert.Empty(t, set.Correlation.Cells)
}

func TestProject_SingleRow(t *testing.T) {
	derived, err := Transform(model.FrameFromBars("BTC-USD", barsWithAdj(42000)))
	require.NoError(t, err)
	require.Equal(t, 1, derived.Len())
	assert.True(t, math.IsNaN(derived.Rows[0].DailyReturn))

	set := Project(derived, "BTC-USD")
	assert.False(t, set.Empty)
	assert.Len(t, set.Price.Points, 1)
	assert.Empty(t, set.Returns.Bins)
	require.Len(t, set.Correlation.Cells, 7)
	for _, row := range set.Correlation.Cells {
		require.Len(t, row, 7)
		for _, c := range row {
			assert.False(t, c.Valid, "one row cannot be correlated")
		}
	}
}

func TestProject_NaNValuesBecomeNull(t *testing.T) {
	bars := barsWithAdj(10, 11, 12)
	bars[1].AdjClose = math.NaN()
	derived, err := Transform(model.FrameFromBars("X", bars))
	require.NoError(t, err)

	set := Project(derived, "X")
	assert.False(t, set.Price.Points[1].Value.Valid)
	assert.Empty(t, set.Returns.Bins, "every return touches the NaN price")
}
