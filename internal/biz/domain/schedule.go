package domain

import (
	"fmt"
	"time"
)

// JST is the fixed display/anchoring timezone for all calendar logic,
// regardless of where the process runs.
var JST = time.FixedZone("JST", 9*60*60)

// weekdayLabels is Monday-first, matching the Japanese week order
var weekdayLabels = [7]string{"月", "火", "水", "木", "金", "土", "日"}

// AnchorDate resolves M/D to its nearest future occurrence relative to
// now, evaluated in JST. A combination that is chronologically before
// today rolls forward to next year. Impossible calendar dates (e.g.
// 2/30) yield a *ValidationError.
func AnchorDate(month, day int, now time.Time) (time.Time, error) {
	nowJST := now.In(JST)
	today := time.Date(nowJST.Year(), nowJST.Month(), nowJST.Day(), 0, 0, 0, 0, JST)

	candidate, err := makeDate(nowJST.Year(), month, day)
	if err != nil {
		return time.Time{}, err
	}
	if candidate.Before(today) {
		candidate, err = makeDate(nowJST.Year()+1, month, day)
		if err != nil {
			return time.Time{}, err
		}
	}
	return candidate, nil
}

// makeDate builds a JST midnight date and rejects normalized overflow
// (time.Date silently rolls 2/30 into March).
func makeDate(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, JST)
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, &ValidationError{
			Input:  fmt.Sprintf("%d/%d", month, day),
			Advice: fmt.Sprintf("日付の形式が正しくありません: `%d/%d`", month, day),
		}
	}
	return t, nil
}

// DayLabel formats a date as "M/D(曜)" using the Monday-first table
func DayLabel(t time.Time) string {
	t = t.In(JST)
	// time.Weekday is Sunday=0; the table is Monday=0
	idx := (int(t.Weekday()) + 6) % 7
	return fmt.Sprintf("%d/%d(%s)", int(t.Month()), t.Day(), weekdayLabels[idx])
}
