package collector

import "StockScanner/internal/model"

// AggregateWeekly folds ascending daily bars into ISO-week bars.
// Each weekly bar carries the time and open of its first day and the close of its last.
func AggregateWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}

	weekKey := func(b model.OHLCV) int {
		y, w := b.Time.ISOWeek()
		return y*100 + w
	}

	var weekly []model.OHLCV
	week := daily[0]
	key := weekKey(week)

	for _, d := range daily[1:] {
		if k := weekKey(d); k != key {
			weekly = append(weekly, week)
			week, key = d, k
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
