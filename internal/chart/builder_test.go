package chart

import (
	"math"
	"testing"
	"time"

	"MarketDashboard/internal/model"
	"MarketDashboard/internal/pipeline"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet(t *testing.T) *model.ChartSet {
	t.Helper()
	bars := make([]model.OHLCV, 0, 10)
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i, p := range []float64{10, 10.4, 10.1, 10.9, 11.3, 11.0, 11.8, 12.4, 12.1, 12.9} {
		bars = append(bars, model.OHLCV{
			Time: start.AddDate(0, 0, i), Open: p - 0.1, High: p + 0.3, Low: p - 0.4,
			Close: p, AdjClose: p, Volume: float64(500 + 13*i*i),
		})
	}
	derived, err := pipeline.Transform(model.FrameFromBars("ETH-USD", bars))
	require.NoError(t, err)
	return pipeline.Project(derived, "ETH-USD")
}

func TestBuild_Figures(t *testing.T) {
	figs := NewBuilder().Build(sampleSet(t))

	assert.Equal(t, "ETH-USD Closing Price", figs.Price.Layout.Title.Text)
	require.Len(t, figs.Price.Data, 1)
	assert.Equal(t, "scatter", figs.Price.Data[0].Type)
	assert.Equal(t, "lines", figs.Price.Data[0].Mode)

	assert.Equal(t, "bar", figs.Volume.Data[0].Type)
	assert.Equal(t, "Volume Traded", figs.Volume.Layout.Title.Text)

	ret := figs.Returns.Data[0]
	assert.Equal(t, "bar", ret.Type)
	assert.Len(t, ret.Width, pipeline.HistogramBins)
	require.NotNil(t, figs.Returns.Layout.BarGap)
	assert.Equal(t, 0.0, *figs.Returns.Layout.BarGap)

	heat := figs.Heatmap.Data[0]
	assert.Equal(t, "heatmap", heat.Type)
	assert.Equal(t, "Portland", heat.Colorscale)
	assert.Equal(t, "%{z:.2f}", heat.TextTemplate)

	for _, f := range []model.Figure{figs.Price, figs.Volume, figs.Returns, figs.Heatmap} {
		assert.Equal(t, DarkTheme.Background, f.Layout.PaperBGColor)
		assert.Equal(t, DarkTheme.Foreground, f.Layout.Font.Color)
	}
}

func TestBuild_Placeholder(t *testing.T) {
	figs := NewBuilder().Build(pipeline.Placeholder("NOPE"))
	for _, f := range []model.Figure{figs.Price, figs.Volume, figs.Returns, figs.Heatmap} {
		assert.Equal(t, model.NoDataTitle, f.Layout.Title.Text)
		require.Len(t, f.Data, 1)
	}
}

func TestBuild_EncodesUndefinedAsNull(t *testing.T) {
	set := sampleSet(t)
	set.Price.Points[2].Value = model.Float(math.NaN())
	set.Correlation.Cells[0][1] = model.Float(math.Inf(1))

	figs := NewBuilder().Build(set)
	data, err := json.Marshal(figs)
	require.NoError(t, err)

	var decoded struct {
		Price struct {
			Data []struct {
				Y []*float64 `json:"y"`
			} `json:"data"`
		} `json:"price"`
		Heatmap struct {
			Data []struct {
				Z [][]*float64 `json:"z"`
			} `json:"data"`
		} `json:"heatmap"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Price.Data[0].Y[2])
	assert.NotNil(t, decoded.Price.Data[0].Y[1])
	assert.Nil(t, decoded.Heatmap.Data[0].Z[0][1])
}
