// Package web serves the dashboard page, its chart and export endpoints,
// and the JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockDashboard/internal/chart"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/export"
	"StockDashboard/internal/logger"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/resolver"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	tailRows   = 10
	historyLen = 10
)

//go:embed templates/index.html
var templateFS embed.FS

// ReportBuilder produces a report for a query.
type ReportBuilder interface {
	Build(ctx context.Context, q dashboard.Query) (*model.Report, error)
}

// Server is the dashboard HTTP front end.
type Server struct {
	Title    string
	Builder  ReportBuilder
	Recorder recorder.Recorder // optional, feeds the history footer
	Metrics  *metrics.Metrics  // optional
	Log      *zap.Logger

	page *template.Template
	now  func() time.Time
}

// NewServer parses the page template and wires the dependencies.
func NewServer(title string, b ReportBuilder, rec recorder.Recorder, m *metrics.Metrics, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"won":     Won,
		"shares":  Shares,
		"change":  Change,
		"highlow": HighLow,
		"number":  Number,
		"ma":      MA,
		"trend":   Trend,
		"date":    formatDate,
		"comma":   humanize.Comma,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		Title:    title,
		Builder:  b,
		Recorder: rec,
		Metrics:  m,
		Log:      log,
		page:     page,
		now:      func() time.Time { return time.Now().In(collector.KST) },
	}, nil
}

// Handler returns the routed handler with request tracing applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("GET /api/report", s.handleAPIReport)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return s.trace(mux)
}

// trace attaches a request ID to the context and the response.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logger.NewTraceID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), id)))
	})
}

// ParseQuery reads the dashboard query from URL parameters. A missing or
// malformed date leaves that end of the range unset. The returned query is
// not recorded; routes that start a new lookup set Record themselves.
func ParseQuery(v url.Values) dashboard.Query {
	q := dashboard.Query{
		Input:    strings.TrimSpace(v.Get("company")),
		Interval: model.Interval(v.Get("interval")),
	}
	q.Start = parseDate(v.Get("start"))
	q.End = parseDate(v.Get("end"))
	return q
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, collector.KST)
	if err != nil {
		return nil
	}
	return &t
}

type formValues struct {
	Company  string
	Start    string
	End      string
	Interval string
}

type pageData struct {
	Title     string
	Form      formValues
	Severity  dashboard.Severity
	Message   string
	Report    *model.Report
	Tail      []model.PriceRow
	ChartURL  template.URL
	ExportURL template.URL
	FileName  string
	History   []recorder.QueryEvent
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	data := pageData{Title: s.Title, Form: s.formDefaults(v)}

	// The form has not been submitted yet.
	if !v.Has("company") {
		data.History = s.history()
		s.render(w, data)
		return
	}

	q := ParseQuery(v)
	q.Record = true
	rep, err := s.Builder.Build(r.Context(), q)
	s.observe("index", err)
	if err != nil {
		data.Severity = dashboard.SeverityOf(err)
		data.Message = err.Error()
		if data.Severity == dashboard.SeverityError {
			logger.For(r.Context(), s.Log).Warn("build report", zap.Error(err))
		}
	} else {
		data.Report = rep
		data.Tail = rep.Tail(tailRows)
		qs := encodeQuery(rep)
		data.ChartURL = template.URL("/chart?" + qs)
		data.ExportURL = template.URL("/export.xlsx?" + qs)
		data.FileName = export.FileName(rep)
	}
	data.History = s.history()
	s.render(w, data)
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.Log.Error("render page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// formDefaults echoes submitted values, or Jan 1 of this year to today.
func (s *Server) formDefaults(v url.Values) formValues {
	f := formValues{
		Company:  v.Get("company"),
		Start:    v.Get("start"),
		End:      v.Get("end"),
		Interval: v.Get("interval"),
	}
	if f.Interval == "" {
		f.Interval = string(model.IntervalDaily)
	}
	if !v.Has("company") {
		today := s.now()
		if f.Start == "" {
			f.Start = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, collector.KST).Format(dateLayout)
		}
		if f.End == "" {
			f.End = today.Format(dateLayout)
		}
	}
	return f
}

func (s *Server) history() []recorder.QueryEvent {
	if s.Recorder == nil {
		return nil
	}
	events, err := s.Recorder.Recent(historyLen)
	if err != nil {
		s.Log.Warn("load query history", zap.Error(err))
		return nil
	}
	return events
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Builder.Build(r.Context(), ParseQuery(r.URL.Query()))
	s.observe("chart", err)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, rep); err != nil {
		logger.For(r.Context(), s.Log).Error("render chart", zap.Error(err))
		http.Error(w, "render chart failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Builder.Build(r.Context(), ParseQuery(r.URL.Query()))
	s.observe("export", err)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep); err != nil {
		logger.For(r.Context(), s.Log).Error("write workbook", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	if s.Metrics != nil {
		s.Metrics.Exports.Inc()
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(rep)}))
	w.Write(buf.Bytes())
}

type apiError struct {
	Error    string             `json:"error"`
	Severity dashboard.Severity `json:"severity"`
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query())
	q.Record = true
	rep, err := s.Builder.Build(r.Context(), q)
	s.observe("api", err)

	status := http.StatusOK
	var body interface{} = rep
	if err != nil {
		status = statusOf(err)
		body = apiError{Error: err.Error(), Severity: dashboard.SeverityOf(err)}
	}
	b, merr := json.Marshal(body)
	if merr != nil {
		http.Error(w, merr.Error(), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("pretty") == "1" {
		b = pretty.Pretty(b)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func (s *Server) observe(route string, err error) {
	if s.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(dashboard.SeverityOf(err))
	}
	s.Metrics.Requests.WithLabelValues(route, outcome).Inc()
}

// statusOf maps a build error to an HTTP status for the non-page routes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, resolver.ErrNotFound), errors.Is(err, dashboard.ErrNoData):
		return http.StatusNotFound
	case dashboard.SeverityOf(err) == dashboard.SeverityWarning:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// encodeQuery rebuilds the query string for the chart and export links.
// The resolved code is used so follow-up requests skip the name lookup.
func encodeQuery(rep *model.Report) string {
	v := url.Values{}
	v.Set("company", rep.Company.Code)
	v.Set("start", rep.Start.Format(dateLayout))
	v.Set("end", rep.End.Format(dateLayout))
	v.Set("interval", string(rep.Interval))
	return v.Encode()
}
