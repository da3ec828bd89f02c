package model

// Figure is a Plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the attributes the dashboard uses are modeled.
type Trace struct {
	Type         string    `json:"type"`
	Name         string    `json:"name,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	X            any       `json:"x,omitempty"`
	Y            any       `json:"y,omitempty"`
	Z            any       `json:"z,omitempty"`
	Width        []float64 `json:"width,omitempty"`
	Colorscale   string    `json:"colorscale,omitempty"`
	Zmin         *float64  `json:"zmin,omitempty"`
	Zmax         *float64  `json:"zmax,omitempty"`
	TextTemplate string    `json:"texttemplate,omitempty"`
	Marker       *Marker   `json:"marker,omitempty"`
	Line         *Line     `json:"line,omitempty"`
}

// Marker styles bar fills.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Line styles line traces.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Layout is the Plotly layout subset used by the dashboard theme.
type Layout struct {
	Title        Title    `json:"title"`
	Template     string   `json:"template,omitempty"`
	PaperBGColor string   `json:"paper_bgcolor"`
	PlotBGColor  string   `json:"plot_bgcolor"`
	Font         Font     `json:"font"`
	XAxis        Axis     `json:"xaxis"`
	YAxis        Axis     `json:"yaxis"`
	BarGap       *float64 `json:"bargap,omitempty"`
}

// Title is a layout or axis title.
type Title struct {
	Text string `json:"text"`
}

// Font is the global layout font.
type Font struct {
	Color string `json:"color"`
}

// Axis configures one axis.
type Axis struct {
	Title     Title  `json:"title"`
	GridColor string `json:"gridcolor,omitempty"`
	Type      string `json:"type,omitempty"`
	AutoRange string `json:"autorange,omitempty"`
}

// Figures is the full set republished on every input change.
type Figures struct {
	Price   Figure `json:"price"`
	Volume  Figure `json:"volume"`
	Returns Figure `json:"returns"`
	Heatmap Figure `json:"heatmap"`
}
