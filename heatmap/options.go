package heatmap

import (
	"fmt"
	"time"

	"github.com/stsysd/bathtiles/model"
)

// Options configures aggregation and rendering parameters.
type Options struct {
	Dx             int         // left offset of the grid, room for the year label (px)
	CellSize       int         // size of each day cell (px)
	CellStroke     int         // white stroke between cells (px)
	Width          int         // width of one year panel (px)
	Height         int         // height of one year panel (px)
	LegendWidth    int         // width of the month and legend rows (px)
	LegendHeight   int         // height of the month and legend rows (px)
	LegendOffset   int         // x offset of the legend swatches (px)
	FontSize       int         // font size for labels (px)
	FontFamily     string      // font family for labels
	NumberOfColors int         // number of color buckets including the empty one
	Scheme         ColorScheme // palette strategy
	Merge          MergePolicy // same-day collision handling
	Now            func() time.Time
}

// DefaultOptions returns the classic layout: 14px cells, seven colors blended
// from #eee to #44a340.
func DefaultOptions() *Options {
	return &Options{
		Dx:             35,
		CellSize:       14,
		CellStroke:     3,
		Width:          900,
		Height:         100,
		LegendWidth:    800,
		LegendHeight:   25,
		LegendOffset:   644,
		FontSize:       12,
		FontFamily:     "sans-serif",
		NumberOfColors: 7,
		Scheme:         Interpolated{From: "#eee", To: "#44a340"},
		Merge:          MergeOverwrite,
		Now:            time.Now,
	}
}

// withDefaults fills zero fields of opts from DefaultOptions.
func withDefaults(opts *Options) *Options {
	d := DefaultOptions()
	if opts == nil {
		return d
	}
	o := *opts
	if o.Dx == 0 {
		o.Dx = d.Dx
	}
	if o.CellSize == 0 {
		o.CellSize = d.CellSize
	}
	if o.CellStroke == 0 {
		o.CellStroke = d.CellStroke
	}
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.LegendWidth == 0 {
		o.LegendWidth = d.LegendWidth
	}
	if o.LegendHeight == 0 {
		o.LegendHeight = d.LegendHeight
	}
	if o.LegendOffset == 0 {
		o.LegendOffset = d.LegendOffset
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.NumberOfColors == 0 {
		o.NumberOfColors = d.NumberOfColors
	}
	if o.Scheme == nil {
		o.Scheme = d.Scheme
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return &o
}

// MaxNumberOfColors bounds Options.NumberOfColors.
const MaxNumberOfColors = 256

// Validate checks the options that cannot be defaulted.
func (o *Options) Validate() error {
	if o.NumberOfColors < 2 {
		return model.NewInvalidConfigurationError("number_of_colors", "must be at least 2")
	}
	if o.NumberOfColors > MaxNumberOfColors {
		return model.NewInvalidConfigurationError("number_of_colors", fmt.Sprintf("must be at most %d", MaxNumberOfColors))
	}
	if o.CellSize < 0 || o.Dx < 0 || o.Width < 0 || o.Height < 0 {
		return model.NewInvalidConfigurationError("layout", "sizes must not be negative")
	}
	if _, err := o.Scheme.Colors(o.NumberOfColors); err != nil {
		return err
	}
	return nil
}
