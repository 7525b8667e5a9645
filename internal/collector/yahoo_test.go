package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"StockDashboard/internal/model"
)

func TestYahooSymbol(t *testing.T) {
	tests := []struct {
		c    model.Company
		want string
	}{
		{model.Company{Code: "005930", Market: model.MarketKOSPI}, "005930.KS"},
		{model.Company{Code: "086520", Market: model.MarketKOSDAQ}, "086520.KQ"},
		{model.Company{Code: "000001"}, "000001.KS"},
	}
	for _, tt := range tests {
		if got := YahooSymbol(tt.c); got != tt.want {
			t.Errorf("YahooSymbol(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestYahooFetcher_FetchDaily(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 9, 0, 0, 0, KST).Unix()
	d2 := time.Date(2024, 1, 3, 9, 0, 0, 0, KST).Unix()
	d3 := time.Date(2024, 1, 4, 9, 0, 0, 0, KST).Unix()
	body := `{"chart":{"result":[{"timestamp":[` +
		itoa(d1) + `,` + itoa(d2) + `,` + itoa(d3) + `],
		"indicators":{"quote":[{
			"open":[100,null,102],
			"high":[110,null,112],
			"low":[90,null,92],
			"close":[105,null,107],
			"volume":[1000,null,3000]}]}}],"error":null}}`

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, KST)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, KST)
	bars, err := f.FetchDaily(context.Background(), model.Company{Code: "086520", Market: model.MarketKOSDAQ}, start, end)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/086520.KQ") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if bars[1].Close != 107 || bars[1].Volume != 3000 {
		t.Errorf("unexpected bar %+v", bars[1])
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	now := time.Now()
	_, err := f.FetchDaily(context.Background(), model.Company{Code: "999999"}, now, now)
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
