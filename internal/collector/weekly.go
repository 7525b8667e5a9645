package collector

import "StockDashboard/internal/model"

// AggregateWeekly converts daily bars into ISO-week bars. Each weekly bar is
// stamped with the time of its first trading day.
func AggregateWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.OHLCV
	var week model.OHLCV
	var weekStarted bool

	for _, d := range daily {
		year, isoWeek := d.Time.In(KST).ISOWeek()
		weekKey := year*100 + isoWeek

		if !weekStarted {
			week = d
			weekStarted = true
			continue
		}

		cy, cw := week.Time.In(KST).ISOWeek()
		currentKey := cy*100 + cw

		if weekKey != currentKey {
			weekly = append(weekly, week)
			week = d
		} else {
			if d.High > week.High {
				week.High = d.High
			}
			if d.Low < week.Low {
				week.Low = d.Low
			}
			week.Close = d.Close
			week.Volume += d.Volume
		}
	}
	weekly = append(weekly, week)
	return weekly
}
