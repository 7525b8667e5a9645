package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/directory"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/resolver"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"
)

type fakeBuilder struct {
	rep     *model.Report
	err     error
	queries []dashboard.Query
}

func (f *fakeBuilder) Build(_ context.Context, q dashboard.Query) (*model.Report, error) {
	f.queries = append(f.queries, q)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return f.rep, f.err
}

type memRecorder struct {
	recorder.NoopRecorder
	events []recorder.QueryEvent
}

func (m *memRecorder) RecordQuery(evt *recorder.QueryEvent) error {
	m.events = append(m.events, *evt)
	return nil
}

func (m *memRecorder) Recent(limit int) ([]recorder.QueryEvent, error) { return m.events, nil }

type staticSource struct{ dir *directory.Directory }

func (s staticSource) Get(context.Context) (*directory.Directory, error) { return s.dir, nil }

func sampleReport() *model.Report {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, collector.KST)
	bars := collector.GenerateBars(71000, start, start.AddDate(0, 1, 0))
	rows := calculator.ApplyMovingAverages(bars)
	summary, _ := calculator.Summarize(rows)
	return &model.Report{
		RequestID: "req-1",
		Company:   model.Company{Name: "삼성전자", Code: "005930"},
		Start:     start,
		End:       start.AddDate(0, 1, 0),
		Interval:  model.IntervalDaily,
		Source:    "mock",
		Rows:      rows,
		Summary:   summary,
	}
}

func newTestServer(t *testing.T, b ReportBuilder) (*Server, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	s, err := NewServer("Test Board", b, &memRecorder{events: []recorder.QueryEvent{
		{At: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), Input: "삼성전자", Code: "005930", Outcome: recorder.OutcomeOK},
	}}, m, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, collector.KST) }
	return s, m
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery(url.Values{
		"company":  {"  삼성전자 "},
		"start":    {"2024-01-02"},
		"end":      {"not-a-date"},
		"interval": {"week"},
	})
	if q.Input != "삼성전자" {
		t.Errorf("input = %q", q.Input)
	}
	if q.Start == nil || q.Start.Format(dateLayout) != "2024-01-02" {
		t.Errorf("start = %v", q.Start)
	}
	if q.End != nil {
		t.Errorf("malformed end should be unset, got %v", q.End)
	}
	if q.Interval != model.IntervalWeekly {
		t.Errorf("interval = %q", q.Interval)
	}
}

func TestIndex_FirstVisit(t *testing.T) {
	b := &fakeBuilder{}
	s, _ := newTestServer(t, b)
	rec := get(t, s.Handler(), "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>Test Board</title>") {
		t.Error("title missing")
	}
	if !strings.Contains(body, `value="2024-01-01"`) || !strings.Contains(body, `value="2024-05-17"`) {
		t.Error("default range should be Jan 1 to today")
	}
	if !strings.Contains(body, "최근 조회") {
		t.Error("history footer missing")
	}
	if len(b.queries) != 0 {
		t.Error("builder should not run before the form is submitted")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request ID header missing")
	}
}

func TestIndex_Report(t *testing.T) {
	rep := sampleReport()
	s, m := newTestServer(t, &fakeBuilder{rep: rep})
	rec := get(t, s.Handler(), "/?company=005930&start=2024-01-02&end=2024-02-02&interval=day")

	body := rec.Body.String()
	for _, want := range []string{
		"[삼성전자] 주가 데이터 (005930)",
		"현재가",
		Won(rep.Summary.Latest.Close),
		Shares(rep.Summary.Latest.Volume),
		"/chart?company=005930",
		"/export.xlsx?company=005930",
		"삼성전자_주가.xlsx",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if n := strings.Count(body, "<tr><td>"); n != tailRows {
		t.Errorf("expected %d table rows, got %d", tailRows, n)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("index", "ok")); got != 1 {
		t.Errorf("requests{index,ok} = %v", got)
	}
}

func TestIndex_Banners(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		class  string
	}{
		{"missing company", "/?company=&start=2024-01-02&end=2024-02-02", nil, `class="banner warning"`},
		{"one date", "/?company=005930&start=2024-01-02", nil, `class="banner warning"`},
		{"not found", "/?company=unknown-co&start=2024-01-02&end=2024-02-02", resolver.ErrNotFound, `class="banner error"`},
		{"no data", "/?company=005930&start=2024-01-06&end=2024-01-07", dashboard.ErrNoData, `class="banner info"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeBuilder{err: tt.err})
			body := get(t, s.Handler(), tt.target).Body.String()
			if !strings.Contains(body, tt.class) {
				t.Errorf("expected %s in page", tt.class)
			}
			if strings.Contains(body, "<iframe") {
				t.Error("chart should not render on error")
			}
		})
	}
}

func TestChart(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{rep: sampleReport()})
	rec := get(t, s.Handler(), "/chart?company=005930&start=2024-01-02&end=2024-02-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("chart page should load echarts")
	}

	rec = get(t, s.Handler(), "/chart?company=005930&start=2024-01-02")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete range status = %d, want 400", rec.Code)
	}
}

func TestExport(t *testing.T) {
	rep := sampleReport()
	s, m := newTestServer(t, &fakeBuilder{rep: rep})
	rec := get(t, s.Handler(), "/export.xlsx?company=005930&start=2024-01-02&end=2024-02-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != len(rep.Rows)+1 {
		t.Errorf("expected %d rows, got %d", len(rep.Rows)+1, len(rows))
	}
	if got := testutil.ToFloat64(m.Exports); got != 1 {
		t.Errorf("exports = %v", got)
	}
}

func TestAPIReport(t *testing.T) {
	rep := sampleReport()
	s, _ := newTestServer(t, &fakeBuilder{rep: rep})

	rec := get(t, s.Handler(), "/api/report?company=005930&start=2024-01-02&end=2024-02-02&pretty=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "\n  \"request_id\"") {
		t.Error("pretty output should be indented")
	}
	var got model.Report
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Company.Code != "005930" || len(got.Rows) != len(rep.Rows) {
		t.Errorf("unexpected report: %+v", got.Company)
	}

	rec = get(t, s.Handler(), "/api/report?start=2024-01-02&end=2024-02-02")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing company status = %d", rec.Code)
	}
	var apiErr apiError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Severity != dashboard.SeverityWarning {
		t.Errorf("severity = %q", apiErr.Severity)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{resolver.ErrNotFound, http.StatusNotFound},
		{dashboard.ErrNoData, http.StatusNotFound},
		{dashboard.ErrIncompleteRange, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{})
	h := s.Handler()
	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics endpoint not served")
	}
}

func TestFollowUpRoutesAreNotRecorded(t *testing.T) {
	dir := directory.New([]model.Company{{Name: "Sample Corp", Code: "000001"}}, time.Now())
	f := &collector.MockFetcher{Price: 10000}
	rec := &memRecorder{}
	m := metrics.New(nil)
	svc := dashboard.NewService(resolver.New(staticSource{dir}), f, rec, m, nil)
	s, err := NewServer("Test Board", svc, rec, m, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	h := s.Handler()

	page := get(t, h, "/?company=Sample+Corp&start=2024-01-02&end=2024-02-02&interval=day")
	if !strings.Contains(page.Body.String(), "/chart?company=000001") {
		t.Fatal("page should link the chart by code")
	}
	for _, target := range []string{
		"/chart?company=000001&start=2024-01-02&end=2024-02-02&interval=day",
		"/export.xlsx?company=000001&start=2024-01-02&end=2024-02-02&interval=day",
	} {
		if resp := get(t, h, target); resp.Code != http.StatusOK {
			t.Fatalf("%s: status %d", target, resp.Code)
		}
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected one history row, got %d", len(rec.events))
	}
	if evt := rec.events[0]; evt.Input != "Sample Corp" || evt.Code != "000001" || evt.Outcome != recorder.OutcomeOK {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestRecordFlagByRoute(t *testing.T) {
	tests := []struct {
		target string
		record bool
	}{
		{"/?company=005930&start=2024-01-02&end=2024-02-02", true},
		{"/api/report?company=005930&start=2024-01-02&end=2024-02-02", true},
		{"/chart?company=005930&start=2024-01-02&end=2024-02-02", false},
		{"/export.xlsx?company=005930&start=2024-01-02&end=2024-02-02", false},
	}
	for _, tt := range tests {
		b := &fakeBuilder{rep: sampleReport()}
		s, _ := newTestServer(t, b)
		get(t, s.Handler(), tt.target)
		if len(b.queries) != 1 || b.queries[0].Record != tt.record {
			t.Errorf("%s: expected Record=%v, got %+v", tt.target, tt.record, b.queries)
		}
	}
}
