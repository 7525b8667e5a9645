// Package dashboard runs one query through resolve, fetch and indicator
// computation and returns the report the web layer renders.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/logger"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/resolver"

	"go.uber.org/zap"
)

// Query is one user request. Start and End are nil when not selected.
// Record adds the query to the history; follow-up requests for the same
// report (chart, export) leave it unset.
type Query struct {
	Input    string
	Start    *time.Time
	End      *time.Time
	Interval model.Interval
	Record   bool
}

// CompanyResolver turns user input into a listed company.
type CompanyResolver interface {
	Resolve(ctx context.Context, input string) (model.Company, error)
}

// Service orchestrates resolving, fetching and indicator computation.
type Service struct {
	Resolver CompanyResolver
	Fetcher  collector.Fetcher
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics // optional
	Log      *zap.Logger
}

// NewService creates a Service. A nil recorder records nothing.
func NewService(res CompanyResolver, f collector.Fetcher, rec recorder.Recorder, m *metrics.Metrics, log *zap.Logger) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Resolver: res, Fetcher: f, Recorder: rec, Metrics: m, Log: log}
}

// Validate checks q without touching the network.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Input) == "" {
		return ErrMissingCompany
	}
	if q.Start == nil || q.End == nil {
		return ErrIncompleteRange
	}
	if collector.DateKey(*q.Start) > collector.DateKey(*q.End) {
		return ErrInvalidRange
	}
	switch q.Interval {
	case "", model.IntervalDaily, model.IntervalWeekly:
	default:
		return fmt.Errorf("unknown interval %q", q.Interval)
	}
	return nil
}

// Build resolves the company, fetches its series and computes indicators.
// Validation failures return before any resolve or fetch is attempted.
// The outcome is recorded only when q.Record is set.
func (s *Service) Build(ctx context.Context, q Query) (rep *model.Report, err error) {
	began := time.Now()
	reqID := logger.TraceID(ctx)
	if reqID == "" {
		reqID = logger.NewTraceID()
		ctx = logger.WithTraceID(ctx, reqID)
	}
	log := logger.For(ctx, s.Log)

	evt := &recorder.QueryEvent{
		RequestID: reqID,
		At:        began,
		Input:     strings.TrimSpace(q.Input),
		Source:    s.Fetcher.Name(),
	}
	if q.Start != nil {
		evt.Start = collector.DateKey(*q.Start)
	}
	if q.End != nil {
		evt.End = collector.DateKey(*q.End)
	}
	defer func() {
		if !q.Record {
			return
		}
		evt.Duration = time.Since(began)
		evt.Outcome = outcome(err)
		if err != nil {
			evt.Message = err.Error()
		}
		if rep != nil {
			evt.Rows = len(rep.Rows)
		}
		if rerr := s.Recorder.RecordQuery(evt); rerr != nil {
			log.Error("record query", zap.Error(rerr))
		}
	}()

	if err := q.Validate(); err != nil {
		log.Info("query rejected", zap.String("input", evt.Input), zap.Error(err))
		return nil, err
	}

	company, err := s.Resolver.Resolve(ctx, q.Input)
	if err != nil {
		return nil, err
	}
	evt.Code = company.Code

	fetchStart := time.Now()
	bars, err := s.Fetcher.FetchDaily(ctx, company, *q.Start, *q.End)
	if s.Metrics != nil {
		s.Metrics.FetchDur.WithLabelValues(s.Fetcher.Name()).Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.FetchErrors.WithLabelValues(s.Fetcher.Name()).Inc()
		}
		return nil, fmt.Errorf("fetch %s prices: %w", company.Code, err)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	daily := calculator.ApplyMovingAverages(bars)
	summary, err := calculator.Summarize(daily)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	interval := q.Interval
	if interval == "" {
		interval = model.IntervalDaily
	}
	rows := daily
	if interval == model.IntervalWeekly {
		rows = calculator.ApplyMovingAverages(collector.AggregateWeekly(bars))
	}

	log.Info("report built",
		zap.String("code", company.Code),
		zap.String("interval", string(interval)),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(began)))

	return &model.Report{
		RequestID: reqID,
		Company:   company,
		Start:     *q.Start,
		End:       *q.End,
		Interval:  interval,
		Source:    s.Fetcher.Name(),
		Rows:      rows,
		Summary:   summary,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return recorder.OutcomeOK
	case errors.Is(err, ErrNoData):
		return recorder.OutcomeNoData
	case errors.Is(err, resolver.ErrNotFound):
		return recorder.OutcomeNotFound
	case SeverityOf(err) == SeverityWarning:
		return recorder.OutcomeWarning
	default:
		return recorder.OutcomeError
	}
}
