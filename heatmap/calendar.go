package heatmap

import (
	"bytes"
	"sync/atomic"

	"github.com/stsysd/bathtiles/model"
)

// Calendar holds the current Table of one submission calendar. Import swaps
// the table atomically, so readers always observe one complete Table.
type Calendar struct {
	opts    *Options
	palette []string
	table   atomic.Pointer[Table]
}

// NewCalendar aggregates payload into a new Calendar. A nil payload gives an
// empty calendar starting today.
func NewCalendar(payload []byte, opts *Options) (*Calendar, error) {
	o := withDefaults(opts)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	palette, err := o.Scheme.Colors(o.NumberOfColors)
	if err != nil {
		return nil, err
	}

	c := &Calendar{opts: o, palette: palette}
	table, err := c.derive(payload)
	if err != nil {
		return nil, err
	}
	c.table.Store(table)
	return c, nil
}

// Import replaces the current table with one derived from payload. An empty
// payload leaves the calendar untouched and reports false. On error the
// previous table is kept. Import does not render anything.
func (c *Calendar) Import(payload []byte) (bool, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return false, nil
	}
	table, err := c.derive(payload)
	if err != nil {
		return false, err
	}
	c.table.Store(table)
	return true, nil
}

func (c *Calendar) derive(payload []byte) (*Table, error) {
	raw, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return Aggregate(raw, c.opts.Merge, model.Today(c.opts.Now()))
}

// Table returns the current table. It must not be modified.
func (c *Calendar) Table() *Table {
	return c.table.Load()
}

// Assembler returns an Assembler using the calendar's bucket count and clock.
func (c *Calendar) Assembler() *Assembler {
	return &Assembler{Buckets: c.opts.NumberOfColors, Now: c.opts.Now}
}

// Model assembles the current table.
func (c *Calendar) Model() (*Model, error) {
	t := c.Table()
	return c.Assembler().Build(t.Counts, t.Stats)
}

// Palette returns the colors indexed by ColorBucket ordinal.
func (c *Calendar) Palette() []string {
	out := make([]string, len(c.palette))
	copy(out, c.palette)
	return out
}

// Options returns a copy of the effective options.
func (c *Calendar) Options() *Options {
	o := *c.opts
	return &o
}
