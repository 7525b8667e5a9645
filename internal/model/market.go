package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Rising reports whether the bar closed at or above its open.
func (b OHLCV) Rising() bool { return b.Close >= b.Open }

// PriceRow is one trading day plus its derived moving averages.
// An MA field stays nil until its window is full.
type PriceRow struct {
	OHLCV
	MA5  *float64 `json:"ma5"`
	MA20 *float64 `json:"ma20"`
	MA60 *float64 `json:"ma60"`
}

// Bars strips the derived columns from rows.
func Bars(rows []PriceRow) []OHLCV {
	bars := make([]OHLCV, len(rows))
	for i, r := range rows {
		bars[i] = r.OHLCV
	}
	return bars
}
