package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"StockDashboard/internal/model"

	"golang.org/x/net/html/charset"
)

const naverBaseURL = "https://fchart.stock.naver.com"

// NaverFetcher implements Fetcher using the Naver fchart daily series.
type NaverFetcher struct {
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

// NewNaverFetcher creates a new Naver fetcher with optional proxy support.
func NewNaverFetcher(proxyURL string) *NaverFetcher {
	return &NaverFetcher{
		BaseURL: naverBaseURL,
		Client:  newHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *NaverFetcher) Name() string { return "naver" }

// naverChart is the XML document returned by sise.nhn.
type naverChart struct {
	XMLName   xml.Name `xml:"protocol"`
	ChartData struct {
		Symbol string `xml:"symbol,attr"`
		Name   string `xml:"name,attr"`
		Items  []struct {
			Data string `xml:"data,attr"`
		} `xml:"item"`
	} `xml:"chartdata"`
}

func (f *NaverFetcher) FetchDaily(ctx context.Context, c model.Company, start, end time.Time) ([]model.OHLCV, error) {
	// The endpoint counts bars back from today, so ask for at least as many
	// bars as calendar days since start.
	count := int(f.now().Sub(start).Hours()/24) + 10
	if count < 10 {
		count = 10
	}
	u := fmt.Sprintf("%s/sise.nhn?symbol=%s&timeframe=day&count=%d&requestType=0", f.BaseURL, c.Code, count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("naver: status %d, body: %s", resp.StatusCode, string(body))
	}

	bars, err := parseNaver(resp.Body)
	if err != nil {
		return nil, err
	}
	return filterRange(bars, start, end), nil
}

func parseNaver(r io.Reader) ([]model.OHLCV, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var chart naverChart
	if err := dec.Decode(&chart); err != nil {
		return nil, fmt.Errorf("naver decode: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(chart.ChartData.Items))
	for _, it := range chart.ChartData.Items {
		bar, err := parseNaverItem(it.Data)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseNaverItem parses "yyyymmdd|open|high|low|close|volume".
func parseNaverItem(data string) (model.OHLCV, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 6 {
		return model.OHLCV{}, fmt.Errorf("naver: malformed item %q", data)
	}
	day, err := time.ParseInLocation("20060102", parts[0], KST)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("naver: bad date in %q: %w", data, err)
	}
	var prices [4]float64
	for i := 0; i < 4; i++ {
		if prices[i], err = strconv.ParseFloat(parts[i+1], 64); err != nil {
			return model.OHLCV{}, fmt.Errorf("naver: bad price in %q: %w", data, err)
		}
	}
	vol, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("naver: bad volume in %q: %w", data, err)
	}
	return model.OHLCV{
		Time:   day,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: vol,
	}, nil
}
