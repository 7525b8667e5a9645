package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockDashboard/internal/model"
)

// Fetcher retrieves daily price history for one company.
// Implementations return bars in ascending time order, limited to the
// calendar dates [start, end] inclusive.
type Fetcher interface {
	FetchDaily(ctx context.Context, c model.Company, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// KST is the exchange's local time zone.
var KST = time.FixedZone("KST", 9*60*60)

// DateKey formats t as a yyyymmdd exchange calendar date.
func DateKey(t time.Time) string {
	return t.In(KST).Format("20060102")
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// filterRange sorts bars chronologically and keeps those dated within [start, end].
func filterRange(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	from, to := DateKey(start), DateKey(end)
	out := bars[:0]
	for _, b := range bars {
		k := DateKey(b.Time)
		if k < from || k > to {
			continue
		}
		out = append(out, b)
	}
	return out
}
