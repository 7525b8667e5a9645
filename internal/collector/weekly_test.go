package collector

import (
	"testing"
	"time"

	"StockDashboard/internal/model"
)

func TestAggregateWeekly(t *testing.T) {
	mk := func(d int, o, h, l, c float64, v int64) model.OHLCV {
		return model.OHLCV{Time: time.Date(2024, 1, d, 0, 0, 0, 0, KST), Open: o, High: h, Low: l, Close: c, Volume: v}
	}
	daily := []model.OHLCV{
		// ISO week 1: Jan 1 (Mon) – Jan 5 (Fri)
		mk(2, 10, 12, 9, 11, 100),
		mk(3, 11, 15, 10, 14, 200),
		mk(5, 14, 14, 8, 9, 300),
		// ISO week 2
		mk(8, 9, 10, 7, 10, 50),
	}

	weekly := AggregateWeekly(daily)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weekly))
	}
	w1 := weekly[0]
	if w1.Open != 10 || w1.High != 15 || w1.Low != 8 || w1.Close != 9 || w1.Volume != 600 {
		t.Errorf("unexpected week 1 bar %+v", w1)
	}
	if DateKey(w1.Time) != "20240102" {
		t.Errorf("weekly bar should carry its first trading day, got %s", DateKey(w1.Time))
	}
	if weekly[1].Close != 10 || weekly[1].Volume != 50 {
		t.Errorf("unexpected week 2 bar %+v", weekly[1])
	}
}

func TestAggregateWeekly_Empty(t *testing.T) {
	if got := AggregateWeekly(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
