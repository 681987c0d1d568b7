package heatmap

import (
	"fmt"
	"time"

	"github.com/stsysd/bathtiles/model"
)

// TooltipDateLayout formats the date in tooltips, e.g. "Jan 02, 2021".
const TooltipDateLayout = "Jan 02, 2006"

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Cell is one rendered day.
type Cell struct {
	Key     model.DayKey `json:"date"`
	Year    int          `json:"year"`
	Week    int          `json:"week"`
	Weekday int          `json:"weekday"`
	Count   int          `json:"count"`
	Bucket  ColorBucket  `json:"bucket"`
	Tooltip string       `json:"tooltip"`
}

// YearPanel holds every day of one year.
type YearPanel struct {
	Year  int    `json:"year"`
	Cells []Cell `json:"cells"`
}

// Model is the renderable heatmap, years in ascending order.
type Model struct {
	Years []YearPanel `json:"years"`
}

// CellCount returns the number of cells over all years.
func (m *Model) CellCount() int {
	n := 0
	for _, y := range m.Years {
		n += len(y.Cells)
	}
	return n
}

// Assembler turns a Table into a Model.
type Assembler struct {
	Buckets int              // number of color buckets including Empty
	Now     func() time.Time // clock used for the end of the year range
}

// Build lays out every day from Jan 1 of the start year through Dec 31 of the
// current UTC year. The start year is clamped to the current year.
func (a *Assembler) Build(counts CountTable, stats Stats) (*Model, error) {
	binner, err := NewBinner(1, stats.MaxCount, a.Buckets)
	if err != nil {
		return nil, err
	}

	thisYear := a.now().UTC().Year()
	first := stats.StartDate.Year()
	if first == 0 || first > thisYear {
		first = thisYear
	}

	m := &Model{Years: make([]YearPanel, 0, thisYear-first+1)}
	for year := first; year <= thisYear; year++ {
		panel := YearPanel{Year: year, Cells: make([]Cell, 0, DaysInYear(year))}
		for gc := range CellsForYear(year) {
			count := counts[gc.Key]
			panel.Cells = append(panel.Cells, Cell{
				Key:     gc.Key,
				Year:    year,
				Week:    gc.Week,
				Weekday: gc.Weekday,
				Count:   count,
				Bucket:  binner.Bucket(count),
				Tooltip: Tooltip(count, gc.Date),
			})
		}
		m.Years = append(m.Years, panel)
	}
	return m, nil
}

// MonthLabels returns the twelve short month names.
func (a *Assembler) MonthLabels() []string {
	out := make([]string, len(monthLabels))
	copy(out, monthLabels)
	return out
}

// LegendBuckets returns every bucket from Empty to the most active one.
func (a *Assembler) LegendBuckets() []ColorBucket {
	out := make([]ColorBucket, a.Buckets)
	for i := range out {
		out[i] = ColorBucket(i)
	}
	return out
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Tooltip describes count posts on day.
func Tooltip(count int, day time.Time) string {
	date := day.UTC().Format(TooltipDateLayout)
	switch {
	case count <= 0:
		return "No posts on " + date
	case count == 1:
		return "1 post on " + date
	default:
		return fmt.Sprintf("%d posts on %s", count, date)
	}
}
