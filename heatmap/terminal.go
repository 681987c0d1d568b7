package heatmap

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	termCell      = "  "
	termGutter    = "    "
	termMaxWeeks  = 54
	termCellWidth = len(termCell)
)

var termWeekdayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}

var (
	styleTermYear  = lipgloss.NewStyle().Bold(true)
	styleTermLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
)

// GenerateTerminalHeatmap renders the model for a terminal: per year a month
// header and seven weekday rows of colored blocks, then a legend line.
func GenerateTerminalHeatmap(m *Model, palette []string) string {
	if m == nil || len(m.Years) == 0 || len(palette) == 0 {
		return ""
	}

	swatches := make([]string, len(palette))
	for i, c := range palette {
		swatches[i] = lipgloss.NewStyle().Background(lipgloss.Color(c)).Render(termCell)
	}

	var sb strings.Builder
	for i, panel := range m.Years {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styleTermYear.Render(strconv.Itoa(panel.Year)))
		sb.WriteString("\n")
		sb.WriteString(styleTermLabel.Render(termGutter + monthHeader(panel)))
		sb.WriteString("\n")

		var grid [7][termMaxWeeks]*Cell
		for j := range panel.Cells {
			c := &panel.Cells[j]
			if c.Week < termMaxWeeks && c.Weekday >= 0 && c.Weekday < 7 {
				grid[c.Weekday][c.Week] = c
			}
		}
		weeks := lastWeek(panel) + 1

		for wd := range 7 {
			sb.WriteString(styleTermLabel.Render(padRight(termWeekdayLabels[wd], len(termGutter))))
			for w := range weeks {
				c := grid[wd][w]
				if c == nil {
					sb.WriteString(termCell)
					continue
				}
				sb.WriteString(swatches[min(max(c.Bucket.Ordinal(), 0), len(swatches)-1)])
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(styleTermLabel.Render(termGutter + "Less "))
	for _, s := range swatches {
		sb.WriteString(s)
	}
	sb.WriteString(styleTermLabel.Render(" More"))
	sb.WriteString("\n")
	return sb.String()
}

// monthHeader places each month label above the week holding its first day.
func monthHeader(panel YearPanel) string {
	line := []byte(strings.Repeat(" ", (lastWeek(panel)+1)*termCellWidth+3))
	next := 0
	for _, c := range panel.Cells {
		_, month, day, err := c.Key.Decode()
		if err != nil || day != 1 {
			continue
		}
		col := c.Week * termCellWidth
		if col < next {
			continue
		}
		label := monthLabels[month-1]
		copy(line[col:], label)
		next = col + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func lastWeek(panel YearPanel) int {
	w := 0
	for _, c := range panel.Cells {
		w = max(w, c.Week)
	}
	return min(w, termMaxWeeks-1)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
