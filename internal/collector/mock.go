package collector

import (
	"context"
	"sync/atomic"
	"time"

	"StockDashboard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV // returned (range-filtered) instead of generated bars when set
	Err   error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchDaily was invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchDaily(_ context.Context, _ model.Company, start, end time.Time) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		bars := make([]model.OHLCV, len(m.Bars))
		copy(bars, m.Bars)
		return filterRange(bars, start, end), nil
	}
	return GenerateBars(m.Price, start, end), nil
}

// GenerateBars produces one bar per weekday in [start, end] drifting
// gently around basePrice.
func GenerateBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var days []time.Time
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, KST)
	last := DateKey(end)
	for ; DateKey(d) <= last; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}

	count := len(days)
	bars := make([]model.OHLCV, count)
	for i, day := range days {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   day,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
