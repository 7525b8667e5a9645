package calculator

import (
	"errors"

	"StockDashboard/internal/model"
)

// Moving-average windows shown on the dashboard.
const (
	ShortWindow  = 5
	MediumWindow = 20
	LongWindow   = 60
)

// SMA computes the trailing simple moving average of values for each index.
// Entries before the window is full are nil.
func SMA(values []float64, window int) ([]*float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]*float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out, nil
}

// ApplyMovingAverages attaches MA5, MA20 and MA60 to each bar.
func ApplyMovingAverages(bars []model.OHLCV) []model.PriceRow {
	closes := extractCloses(bars)
	// Windows are constants > 0, so SMA cannot fail here.
	ma5, _ := SMA(closes, ShortWindow)
	ma20, _ := SMA(closes, MediumWindow)
	ma60, _ := SMA(closes, LongWindow)

	rows := make([]model.PriceRow, len(bars))
	for i, b := range bars {
		rows[i] = model.PriceRow{OHLCV: b, MA5: ma5[i], MA20: ma20[i], MA60: ma60[i]}
	}
	return rows
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
