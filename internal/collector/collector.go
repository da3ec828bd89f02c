package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"MarketDashboard/internal/model"
	"MarketDashboard/internal/pipeline"

	"github.com/rs/zerolog/log"
)

// MockFetcher returns controllable fixed data for development and testing.
// It is safe for concurrent use once configured.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchHistory has run.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchHistory(_ context.Context, q model.Query) (*model.Frame, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return model.FrameFromBars(q.Ticker, m.Bars), nil
	}
	return model.FrameFromBars(q.Ticker, generateMockBars(m.Price, q.Start, q.End)), nil
}

// generateMockBars emits one weekday bar per day in [start, end).
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.02*math.Sin(float64(i)/5) + float64(i)*0.0005)
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p * 0.98,
			Volume:   1000000 + float64((i*7919)%250000),
		})
		i++
	}
	return bars
}

// Result is the outcome of one dashboard invocation.
type Result struct {
	Query  model.Query
	Rows   int
	Charts *model.ChartSet
}

// Collector orchestrates data fetching and chart projection.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Source names the underlying data source.
func (c *Collector) Source() string { return c.Fetcher.Name() }

// Collect fetches the query's history and projects it into chart views.
// Empty tickers, inverted ranges and empty source results produce the
// placeholder set; only fetch failures are returned as errors.
func (c *Collector) Collect(ctx context.Context, q model.Query) (*Result, error) {
	res := &Result{Query: q}
	if q.Ticker == "" || q.Inverted() {
		log.Debug().Str("ticker", q.Ticker).
			Str("start", q.StartDate()).Str("end", q.EndDate()).
			Msg("query cannot yield data, skipping fetch")
		res.Charts = pipeline.Placeholder(q.Ticker)
		return res, nil
	}

	raw, err := c.Fetcher.FetchHistory(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s history: %w", q.Ticker, err)
	}
	res.Rows = raw.Len()

	derived, err := pipeline.Transform(raw)
	if errors.Is(err, pipeline.ErrNoData) {
		log.Info().Str("ticker", q.Ticker).Str("source", c.Fetcher.Name()).Msg("no data returned")
		res.Charts = pipeline.Placeholder(q.Ticker)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	res.Charts = pipeline.Project(derived, q.Ticker)
	return res, nil
}
