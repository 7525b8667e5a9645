package model

import "time"

// Interval selects the bar resolution shown on the chart.
type Interval string

const (
	IntervalDaily  Interval = "day"
	IntervalWeekly Interval = "week"
)

// Summary holds the headline metrics shown above the chart.
type Summary struct {
	Latest     OHLCV   `json:"latest"`
	Previous   OHLCV   `json:"previous"`
	Diff       float64 `json:"diff"`
	DiffRate   float64 `json:"diff_rate"` // percent, 2 decimals
	PeriodHigh float64 `json:"period_high"`
	PeriodLow  float64 `json:"period_low"`
	Position   float64 `json:"position"` // latest close within [PeriodLow, PeriodHigh], 0.0~1.0
	RSI        float64 `json:"rsi"`
}

// Report is everything the presentation layer needs for one query.
type Report struct {
	RequestID string     `json:"request_id"`
	Company   Company    `json:"company"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Interval  Interval   `json:"interval"`
	Source    string     `json:"source"`
	Rows      []PriceRow `json:"rows"` // at the resolution given by Interval
	Summary   Summary    `json:"summary"`
}

// Tail returns the last n rows.
func (r *Report) Tail(n int) []PriceRow {
	if n >= len(r.Rows) {
		return r.Rows
	}
	return r.Rows[len(r.Rows)-n:]
}
