// svg.go
// Renders a heatmap Model as a single SVG document: one panel per year,
// followed by the month label row and the color legend.
package heatmap

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// GenerateCalendarSVG returns an SVG string representing the model.
// palette is indexed by ColorBucket ordinal.
func GenerateCalendarSVG(m *Model, palette []string, opts *Options) string {
	opts = withDefaults(opts)
	if m == nil || len(m.Years) == 0 || len(palette) == 0 {
		return ""
	}

	// compute dimensions
	width := max(opts.Width, opts.LegendWidth)
	height := len(m.Years)*opts.Height + 2*opts.LegendHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height))
	sb.WriteString(fmt.Sprintf(`  <style>.label{font-family:%s;font-size:%dpx;fill:#666}</style>`+"\n",
		html.EscapeString(opts.FontFamily), opts.FontSize))

	// year panels
	for i, panel := range m.Years {
		y0 := i * opts.Height
		sb.WriteString(fmt.Sprintf(`  <g class="year" data-year="%d" transform="translate(%d,%d)">`+"\n", panel.Year, opts.Dx, y0))
		sb.WriteString(fmt.Sprintf(`    <text transform="translate(-9,%s)rotate(-90)" text-anchor="middle" class="label">%d</text>`+"\n",
			formatFloat(float64(opts.CellSize)*3.5), panel.Year))

		for _, c := range panel.Cells {
			x := c.Week * opts.CellSize
			y := c.Weekday * opts.CellSize
			fill := paletteColor(palette, c.Bucket)
			tooltip := html.EscapeString(c.Tooltip)

			// 各セルに矩形と、その中にtitle要素（ツールチップ）を追加
			sb.WriteString(fmt.Sprintf(`    <rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#fff" stroke-width="%d" data-date="%s" data-count="%d" data-bucket="%d" data-tippy-content="%s">`+"\n",
				x, y, opts.CellSize, opts.CellSize, fill, opts.CellStroke, c.Key, c.Count, c.Bucket.Ordinal(), tooltip))
			sb.WriteString(fmt.Sprintf(`      <title>%s</title>`+"\n", tooltip))
			sb.WriteString(`    </rect>` + "\n")
		}
		sb.WriteString(`  </g>` + "\n")
	}

	// month labels
	monthsY := len(m.Years) * opts.Height
	sb.WriteString(fmt.Sprintf(`  <g class="months" transform="translate(0,%d)" dominant-baseline="middle">`+"\n", monthsY+10))
	for i, label := range monthLabels {
		x := float64(i)*4.5*float64(opts.CellSize) + float64(opts.Dx)
		sb.WriteString(fmt.Sprintf(`    <text x="%s" class="label">%s</text>`+"\n", formatFloat(x), label))
	}
	sb.WriteString(`  </g>` + "\n")

	// legend
	legendY := monthsY + opts.LegendHeight
	sb.WriteString(fmt.Sprintf(`  <g class="legend" transform="translate(%d,%d)">`+"\n", opts.LegendOffset, legendY))
	for i, color := range palette {
		sb.WriteString(fmt.Sprintf(`    <rect x="%d" width="%d" height="%d" fill="%s" stroke="#fff" stroke-width="%d" data-bucket="%d"/>`+"\n",
			i*opts.CellSize+opts.Dx, opts.CellSize, opts.CellSize, color, opts.CellStroke, i))
	}
	sb.WriteString(`  </g>` + "\n")

	sb.WriteString(`</svg>`)
	return sb.String()
}

// paletteColor clamps b into the palette.
func paletteColor(palette []string, b ColorBucket) string {
	i := min(max(b.Ordinal(), 0), len(palette)-1)
	return palette[i]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
