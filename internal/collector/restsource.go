package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"MarketDashboard/internal/model"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// RESTFetcher implements Fetcher against a JSON price service exposing
// POST {base}/stock_data.
type RESTFetcher struct {
	BaseURL  string
	APIKey   string
	Client   *http.Client
	validate *validator.Validate
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	return &RESTFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Client:   newHTTPClient(proxyURL, timeout),
		validate: validator.New(),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the price service. Prices may be
// JSON numbers, decimal strings or null.
type restBar struct {
	Date     string              `json:"date" validate:"required,datetime=2006-01-02"`
	Open     decimal.NullDecimal `json:"open"`
	High     decimal.NullDecimal `json:"high"`
	Low      decimal.NullDecimal `json:"low"`
	Close    decimal.NullDecimal `json:"close"`
	AdjClose decimal.NullDecimal `json:"adj_close"`
	Volume   decimal.NullDecimal `json:"volume"`
}

// floatOrNaN maps a null or missing price to NaN.
func floatOrNaN(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return math.NaN()
	}
	return d.Decimal.InexactFloat64()
}

type restRequest struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, q model.Query) (*model.Frame, error) {
	payload, err := json.Marshal(restRequest{
		Ticker:    q.Ticker,
		StartDate: q.StartDate(),
		EndDate:   q.EndDate(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL+"/stock_data", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &model.Frame{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows []restBar
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if err := f.validate.Struct(r); err != nil {
			return nil, fmt.Errorf("invalid bar at index %d: %w", i, err)
		}
		t, err := time.Parse(model.DateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
		}
		adj := r.AdjClose
		if !adj.Valid {
			adj = r.Close
		}
		bars = append(bars, model.OHLCV{
			Time:     t,
			Open:     floatOrNaN(r.Open),
			High:     floatOrNaN(r.High),
			Low:      floatOrNaN(r.Low),
			Close:    floatOrNaN(r.Close),
			AdjClose: floatOrNaN(adj),
			Volume:   floatOrNaN(r.Volume),
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.FrameFromBars(q.Ticker, dedupeDays(bars)), nil
}
