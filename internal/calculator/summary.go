package calculator

import (
	"errors"

	"StockDashboard/internal/model"

	"github.com/shopspring/decimal"
)

// Summarize computes the headline metrics for rows. With a single row the
// previous close is the latest close, so the change is zero.
func Summarize(rows []model.PriceRow) (model.Summary, error) {
	if len(rows) == 0 {
		return model.Summary{}, errors.New("no rows to summarize")
	}
	latest := rows[len(rows)-1].OHLCV
	prev := latest
	if len(rows) > 1 {
		prev = rows[len(rows)-2].OHLCV
	}

	diff, rate := Change(prev.Close, latest.Close)

	bars := model.Bars(rows)
	high, low, err := PeriodRange(bars)
	if err != nil {
		return model.Summary{}, err
	}
	rsi, err := CalculateRSI(bars, RSIPeriod)
	if err != nil {
		return model.Summary{}, err
	}
	pos, err := RangePosition(latest.Close, high, low)
	if err != nil {
		return model.Summary{}, err
	}

	return model.Summary{
		Latest:     latest,
		Previous:   prev,
		Diff:       diff,
		DiffRate:   rate,
		PeriodHigh: high,
		PeriodLow:  low,
		Position:   pos,
		RSI:        rsi,
	}, nil
}

// Change returns cur-prev and the percentage change rounded to 2 places.
// The rate is 0 when prev is 0.
func Change(prev, cur float64) (diff, ratePct float64) {
	p := decimal.NewFromFloat(prev)
	d := decimal.NewFromFloat(cur).Sub(p)
	diff, _ = d.Float64()
	if p.IsZero() {
		return diff, 0
	}
	ratePct, _ = d.Div(p).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return diff, ratePct
}
