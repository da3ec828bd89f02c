package collector

import (
	"context"
	"fmt"
	"time"

	"MarketDashboard/internal/model"

	polygon "github.com/polygon-io/client-go/rest"
	pmodels "github.com/polygon-io/client-go/rest/models"
)

// PolygonFetcher implements Fetcher using polygon.io daily aggregates.
// Unadjusted bars provide OHLCV; a second adjusted pass provides Adj Close.
type PolygonFetcher struct {
	Client *polygon.Client
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey, proxyURL string, timeout time.Duration) *PolygonFetcher {
	return &PolygonFetcher{
		Client: polygon.NewWithClient(apiKey, newHTTPClient(proxyURL, timeout)),
	}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) listDaily(ctx context.Context, q model.Query, adjusted bool) ([]pmodels.Agg, error) {
	params := &pmodels.ListAggsParams{
		Ticker:     q.Ticker,
		Timespan:   pmodels.Day,
		Multiplier: 1,
		From:       pmodels.Millis(q.Start),
		// End is exclusive on the dashboard; polygon's day range is inclusive.
		To: pmodels.Millis(q.End.Add(-time.Millisecond)),
	}
	lim := 50000
	asc := pmodels.Asc
	params.Limit = &lim
	params.Order = &asc
	params.Adjusted = &adjusted

	iter := f.Client.ListAggs(ctx, params)
	var aggs []pmodels.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs (adjusted=%v): %w", adjusted, err)
	}
	return aggs, nil
}

func (f *PolygonFetcher) FetchHistory(ctx context.Context, q model.Query) (*model.Frame, error) {
	raw, err := f.listDaily(ctx, q, false)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &model.Frame{}, nil
	}
	adjusted, err := f.listDaily(ctx, q, true)
	if err != nil {
		return nil, err
	}
	adjByDay := make(map[time.Time]float64, len(adjusted))
	for _, a := range adjusted {
		adjByDay[dayOf(time.Time(a.Timestamp))] = a.Close
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, a := range raw {
		d := dayOf(time.Time(a.Timestamp))
		adj, ok := adjByDay[d]
		if !ok {
			adj = a.Close
		}
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     a.Open,
			High:     a.High,
			Low:      a.Low,
			Close:    a.Close,
			AdjClose: adj,
			Volume:   a.Volume,
		})
	}
	return model.FrameFromBars(q.Ticker, dedupeDays(bars)), nil
}
