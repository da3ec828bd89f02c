// Package server is the reactive dashboard shell. It serves the page, accepts
// query changes over a websocket (or plain HTTP) and answers each change with
// a freshly built set of figures.
package server

import (
	"context"
	_ "embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"MarketDashboard/internal/collector"
	"MarketDashboard/internal/model"
	"MarketDashboard/internal/pipeline"
	"MarketDashboard/internal/recorder"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

//go:embed web/index.html
var indexHTML string

// Collector runs one dashboard invocation.
type Collector interface {
	Collect(ctx context.Context, q model.Query) (*collector.Result, error)
	Source() string
}

// FigureBuilder renders chart sets as figures.
type FigureBuilder interface {
	Build(set *model.ChartSet) model.Figures
}

// Defaults are the initial form values. Start is also the fallback for a
// blank start date; the ticker is never defaulted.
type Defaults struct {
	Title  string
	Ticker string
	Start  time.Time
}

// QueryInput is the raw form state sent by the page.
type QueryInput struct {
	Ticker string `json:"ticker" validate:"omitempty,max=32,printascii,excludesrune=/"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// QueryEcho reports the query actually executed after defaulting.
type QueryEcho struct {
	Ticker string `json:"ticker"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// DashboardResponse carries the four figures for one query.
type DashboardResponse struct {
	Type    string        `json:"type"`
	Query   QueryEcho     `json:"query"`
	Empty   bool          `json:"empty"`
	Figures model.Figures `json:"figures"`
}

// ErrorResponse reports a failed recomputation.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server wires the collector, figure builder and journal behind HTTP handlers.
type Server struct {
	collector Collector
	builder   FigureBuilder
	recorder  recorder.Recorder
	defaults  Defaults
	now       func() time.Time
	validate  *validator.Validate
	upgrader  websocket.Upgrader
	page      *template.Template
	mux       *http.ServeMux
}

// New creates a Server. A nil recorder disables the journal and a nil clock uses time.Now.
func New(col Collector, builder FigureBuilder, rec recorder.Recorder, defaults Defaults, clock func() time.Time) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if clock == nil {
		clock = time.Now
	}
	s := &Server{
		collector: col,
		builder:   builder,
		recorder:  rec,
		defaults:  defaults,
		now:       clock,
		validate:  validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
		page: template.Must(template.New("index").Parse(indexHTML)),
		mux:  http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// resolve normalizes the ticker and applies defaults to blank or unparseable
// dates. The second result is false when the ticker cannot name a symbol.
func (s *Server) resolve(in QueryInput) (model.Query, bool) {
	in.Ticker = strings.ToUpper(strings.TrimSpace(in.Ticker))
	valid := s.validate.Struct(in) == nil && !strings.ContainsRune(in.Ticker, ' ')
	if !valid {
		log.Warn().Str("ticker", in.Ticker).Msg("invalid ticker, rendering placeholders")
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	return model.Query{
		Ticker: in.Ticker,
		Start:  s.parseDate("start", in.Start, s.defaults.Start),
		End:    s.parseDate("end", in.End, today),
	}, valid
}

func (s *Server) parseDate(field, value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		log.Warn().Str("field", field).Str("value", value).Msg("unparseable date, using default")
		return fallback
	}
	return t
}

// run executes one recomputation: resolve, collect, journal, build.
func (s *Server) run(ctx context.Context, in QueryInput) (*DashboardResponse, error) {
	q, valid := s.resolve(in)

	started := s.now()
	var (
		res *collector.Result
		err error
	)
	if valid {
		res, err = s.collector.Collect(ctx, q)
	} else {
		res = &collector.Result{Query: q, Charts: pipeline.Placeholder(q.Ticker)}
	}
	evt := &recorder.QueryEvent{
		Timestamp: started,
		Ticker:    q.Ticker,
		StartDate: q.StartDate(),
		EndDate:   q.EndDate(),
		Duration:  s.now().Sub(started),
	}
	if err != nil {
		evt.Error = err.Error()
	} else {
		evt.Rows = res.Rows
		evt.Empty = res.Charts.Empty
	}
	if jerr := s.recorder.RecordQuery(evt); jerr != nil {
		log.Warn().Err(jerr).Msg("record query failed")
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("ticker", q.Ticker).Int("rows", res.Rows).
		Bool("empty", res.Charts.Empty).Dur("duration", evt.Duration).Msg("dashboard updated")

	return &DashboardResponse{
		Type:    "figures",
		Query:   QueryEcho{Ticker: q.Ticker, Start: q.StartDate(), End: q.EndDate()},
		Empty:   res.Charts.Empty,
		Figures: s.builder.Build(res.Charts),
	}, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title  string
		Ticker string
		Start  string
		End    string
	}{
		Title:  s.defaults.Title,
		Ticker: s.defaults.Ticker,
		Start:  s.defaults.Start.Format(model.DateLayout),
		End:    s.now().UTC().Format(model.DateLayout),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	resp, err := s.run(r.Context(), QueryInput{
		Ticker: qs.Get("ticker"),
		Start:  qs.Get("start"),
		End:    qs.Get("end"),
	})
	if err != nil {
		log.Error().Err(err).Msg("dashboard recomputation failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "source": s.collector.Source()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Type: "error", Message: msg})
}
