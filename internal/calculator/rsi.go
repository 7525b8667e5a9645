package calculator

import (
	"errors"

	"StockDashboard/internal/model"
)

// RSIPeriod is the lookback used for the headline RSI metric.
const RSIPeriod = 14

// CalculateRSI returns Wilder's RSI of the closes. It needs period+1 bars
// and reports a neutral 50 until then, and for a series that never moves.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) <= period {
		return 50, nil
	}

	gains, losses := moves(extractCloses(bars))
	up, down := mean(gains[:period]), mean(losses[:period])
	for i := period; i < len(gains); i++ {
		up = wilderSmooth(up, gains[i], period)
		down = wilderSmooth(down, losses[i], period)
	}

	switch {
	case up == 0 && down == 0:
		return 50, nil
	case down == 0:
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

// moves splits consecutive close differences into gains and losses,
// both non-negative.
func moves(closes []float64) (gains, losses []float64) {
	if len(closes) < 2 {
		return nil, nil
	}
	gains = make([]float64, len(closes)-1)
	losses = make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if d := closes[i] - closes[i-1]; d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	return gains, losses
}

func wilderSmooth(prev, next float64, period int) float64 {
	return prev + (next-prev)/float64(period)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
