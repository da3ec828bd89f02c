package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketDashboard/internal/model"
)

// CSVFetcher implements Fetcher over a directory of <TICKER>.csv files.
//
// Two layouts are accepted: a single header row (Date,Open,High,...) and the
// yfinance export layout whose first rows are "Price,<field>..." and
// "Ticker,<symbol>..." followed by a "Date" row. The latter keeps its
// composite (field, symbol) labels in the returned frame.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher reading from dir.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchHistory(_ context.Context, q model.Query) (*model.Frame, error) {
	if q.Ticker == "" || strings.ContainsAny(q.Ticker, `/\`) || q.Ticker != filepath.Base(q.Ticker) {
		return &model.Frame{}, nil
	}
	file, err := os.Open(filepath.Join(f.Dir, q.Ticker+".csv"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &model.Frame{}, nil
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	frame, err := parseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s.csv: %w", q.Ticker, err)
	}
	return sliceRange(frame, q.Start, q.End), nil
}

func parseCSV(r io.Reader) (*model.Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &model.Frame{}, nil
	}

	header := records[0]
	labels := make([]model.ColumnLabel, len(header))
	for i, h := range header {
		labels[i] = model.ColumnLabel{strings.TrimSpace(h)}
	}
	body := records[1:]

	if strings.EqualFold(strings.TrimSpace(header[0]), "Price") {
		// composite header: attach the ticker row as the second component
		if len(body) > 0 && strings.EqualFold(strings.TrimSpace(body[0][0]), "Ticker") {
			for i := 1; i < len(labels) && i < len(body[0]); i++ {
				labels[i] = append(labels[i], strings.TrimSpace(body[0][i]))
			}
			body = body[1:]
		}
		if len(body) > 0 && strings.EqualFold(strings.TrimSpace(body[0][0]), "Date") {
			body = body[1:]
		}
	}

	frame := &model.Frame{}
	for i := 1; i < len(labels); i++ {
		frame.Columns = append(frame.Columns, model.Column{Label: labels[i]})
	}
	for lineNo, rec := range body {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		t, err := parseCSVDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", lineNo+1, err)
		}
		frame.Index = append(frame.Index, t)
		for c := range frame.Columns {
			v := math.NaN()
			if c+1 < len(rec) {
				if s := strings.TrimSpace(rec[c+1]); s != "" {
					if parsed, err := strconv.ParseFloat(s, 64); err == nil {
						v = parsed
					}
				}
			}
			frame.Columns[c].Values = append(frame.Columns[c].Values, v)
		}
	}
	return orderRows(frame), nil
}

// orderRows sorts rows by date and keeps the last row of each day, matching
// dedupeDays for bar-based sources.
func orderRows(f *model.Frame) *model.Frame {
	order := make([]int, f.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return f.Index[order[a]].Before(f.Index[order[b]]) })

	keep := order[:0]
	for _, i := range order {
		if n := len(keep); n > 0 && f.Index[keep[n-1]].Equal(f.Index[i]) {
			keep[n-1] = i
			continue
		}
		keep = append(keep, i)
	}

	out := &model.Frame{Index: make([]time.Time, len(keep)), Columns: make([]model.Column, len(f.Columns))}
	for c, col := range f.Columns {
		out.Columns[c] = model.Column{Label: col.Label, Values: make([]float64, len(keep))}
	}
	for r, i := range keep {
		out.Index[r] = f.Index[i]
		for c, col := range f.Columns {
			out.Columns[c].Values[r] = col.Values[i]
		}
	}
	return out
}

// parseCSVDate accepts YYYY-MM-DD with an optional time suffix.
func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	return time.Parse(model.DateLayout, s)
}

// sliceRange keeps rows with start <= date < end.
func sliceRange(f *model.Frame, start, end time.Time) *model.Frame {
	out := &model.Frame{Columns: make([]model.Column, len(f.Columns))}
	for c, col := range f.Columns {
		out.Columns[c].Label = col.Label
	}
	for i, t := range f.Index {
		if t.Before(start) || !t.Before(end) {
			continue
		}
		out.Index = append(out.Index, t)
		for c, col := range f.Columns {
			out.Columns[c].Values = append(out.Columns[c].Values, col.Values[i])
		}
	}
	return out
}
