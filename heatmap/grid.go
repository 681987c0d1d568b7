package heatmap

import (
	"iter"
	"time"

	"github.com/stsysd/bathtiles/model"
)

// GridCell is the placement of one day in a year panel.
// Week is the column, Weekday the row (0=Sunday..6=Saturday).
type GridCell struct {
	Key     model.DayKey
	Date    time.Time
	Week    int
	Weekday int
}

// CellsForYear yields every day of year in order, from Jan 1 00:00 UTC up to
// but excluding Jan 1 of the next year. The sequence can be ranged over any
// number of times.
func CellsForYear(year int) iter.Seq[GridCell] {
	return func(yield func(GridCell) bool) {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			cell := GridCell{
				Key:     model.DayKeyOf(d),
				Date:    d,
				Week:    weekOfYear(d),
				Weekday: int(d.Weekday()),
			}
			if !yield(cell) {
				return
			}
		}
	}
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)
}

// Weekday returns the UTC day of week of k, Sunday = 0.
func Weekday(k model.DayKey) (int, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// WeekOfYear returns the strftime %U week of k: weeks start on Sunday and the
// days before the first Sunday of the year are week 0. Range 0..53.
func WeekOfYear(k model.DayKey) (int, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return weekOfYear(t), nil
}

func weekOfYear(t time.Time) int {
	yday := t.YearDay() - 1
	return (yday + 7 - int(t.Weekday())) / 7
}
