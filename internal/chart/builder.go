// Package chart renders chart-ready views as Plotly figure documents.
package chart

import (
	"MarketDashboard/internal/model"

	"github.com/guregu/null/v5"
)

// Theme is the fixed visual style applied to every figure.
type Theme struct {
	Template   string
	Background string
	Foreground string
	Grid       string
	Accent     string
	Bars       string
	Colorscale string
}

// DarkTheme mirrors Plotly's plotly_dark template.
var DarkTheme = Theme{
	Template:   "plotly_dark",
	Background: "#111111",
	Foreground: "#f2f5fa",
	Grid:       "#283442",
	Accent:     "#636efa",
	Bars:       "#00cc96",
	Colorscale: "Portland",
}

// Builder turns chart sets into figures.
type Builder struct {
	Theme Theme
}

// NewBuilder creates a Builder with the dark theme.
func NewBuilder() *Builder {
	return &Builder{Theme: DarkTheme}
}

// Build renders all four figures. Placeholder sets render as empty, titled figures.
func (b *Builder) Build(set *model.ChartSet) model.Figures {
	if set == nil || set.Empty {
		empty := b.placeholder()
		return model.Figures{Price: empty, Volume: empty, Returns: empty, Heatmap: empty}
	}
	return model.Figures{
		Price:   b.priceFigure(set.Price),
		Volume:  b.volumeFigure(set.Volume),
		Returns: b.returnsFigure(set.Returns),
		Heatmap: b.heatmapFigure(set.Correlation),
	}
}

func (b *Builder) layout(title, xTitle, yTitle string) model.Layout {
	return model.Layout{
		Title:        model.Title{Text: title},
		Template:     b.Theme.Template,
		PaperBGColor: b.Theme.Background,
		PlotBGColor:  b.Theme.Background,
		Font:         model.Font{Color: b.Theme.Foreground},
		XAxis:        model.Axis{Title: model.Title{Text: xTitle}, GridColor: b.Theme.Grid},
		YAxis:        model.Axis{Title: model.Title{Text: yTitle}, GridColor: b.Theme.Grid},
	}
}

func (b *Builder) placeholder() model.Figure {
	return model.Figure{
		Data:   []model.Trace{{Type: "scatter", Mode: "markers", X: []string{}, Y: []float64{}}},
		Layout: b.layout(model.NoDataTitle, "", ""),
	}
}

func seriesXY(v model.SeriesView) ([]string, []null.Float) {
	x := make([]string, len(v.Points))
	y := make([]null.Float, len(v.Points))
	for i, p := range v.Points {
		x[i] = p.Date
		y[i] = p.Value
	}
	return x, y
}

func (b *Builder) priceFigure(v model.SeriesView) model.Figure {
	x, y := seriesXY(v)
	return model.Figure{
		Data: []model.Trace{{
			Type: "scatter",
			Mode: "lines",
			Name: v.Label,
			X:    x,
			Y:    y,
			Line: &model.Line{Color: b.Theme.Accent, Width: 2},
		}},
		Layout: b.layout(v.Title, "Date", v.Label),
	}
}

func (b *Builder) volumeFigure(v model.SeriesView) model.Figure {
	x, y := seriesXY(v)
	return model.Figure{
		Data: []model.Trace{{
			Type:   "bar",
			Name:   v.Label,
			X:      x,
			Y:      y,
			Marker: &model.Marker{Color: b.Theme.Accent},
		}},
		Layout: b.layout(v.Title, "Date", v.Label),
	}
}

// returnsFigure draws the precomputed bins as touching bars centered on each bin.
func (b *Builder) returnsFigure(v model.HistogramView) model.Figure {
	centers := make([]float64, len(v.Bins))
	counts := make([]int, len(v.Bins))
	widths := make([]float64, len(v.Bins))
	for i, bin := range v.Bins {
		centers[i] = (bin.Lower + bin.Upper) / 2
		counts[i] = bin.Count
		widths[i] = bin.Upper - bin.Lower
	}
	gap := 0.0
	fig := model.Figure{
		Data: []model.Trace{{
			Type:   "bar",
			Name:   v.Label,
			X:      centers,
			Y:      counts,
			Width:  widths,
			Marker: &model.Marker{Color: b.Theme.Bars},
		}},
		Layout: b.layout(v.Title, v.Label, "count"),
	}
	fig.Layout.BarGap = &gap
	return fig
}

func (b *Builder) heatmapFigure(v model.HeatmapView) model.Figure {
	zmin, zmax := -1.0, 1.0
	fig := model.Figure{
		Data: []model.Trace{{
			Type:         "heatmap",
			X:            v.Labels,
			Y:            v.Labels,
			Z:            v.Cells,
			Colorscale:   b.Theme.Colorscale,
			Zmin:         &zmin,
			Zmax:         &zmax,
			TextTemplate: "%{z:.2f}",
		}},
		Layout: b.layout(v.Title, "", ""),
	}
	fig.Layout.YAxis.AutoRange = "reversed"
	return fig
}
