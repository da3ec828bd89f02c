package collector

import (
	"context"

	"MarketDashboard/internal/model"
)

// Fetcher defines the interface for fetching historical daily bars.
// An unknown ticker or a range without trading days yields an empty frame,
// not an error.
type Fetcher interface {
	FetchHistory(ctx context.Context, q model.Query) (*model.Frame, error)
	Name() string
}
