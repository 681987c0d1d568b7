package heatmap

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/stsysd/bathtiles/model"
)

// ColorScheme produces the palette for n buckets. Index 0 is the fill of
// Empty, index n-1 the most active bucket.
type ColorScheme interface {
	Colors(n int) ([]string, error)
}

// Interpolated blends linearly in RGB from From (the empty fill) to To.
type Interpolated struct {
	From string
	To   string
}

// Colors returns n evenly spaced colors from From to To.
func (s Interpolated) Colors(n int) ([]string, error) {
	if n < 1 {
		return nil, model.NewInvalidConfigurationError("colors", fmt.Sprintf("need at least one color, got %d", n))
	}
	from, err := parseColor("empty_color", s.From)
	if err != nil {
		return nil, err
	}
	to, err := parseColor("main_color", s.To)
	if err != nil {
		return nil, err
	}

	if n == 1 {
		return []string{from.Hex()}, nil
	}
	out := make([]string, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		out[i] = from.BlendRgb(to, t).Clamped().Hex()
	}
	return out, nil
}

// Palette is a fixed list of colors, the first being the empty fill.
type Palette []string

// Colors returns the first n colors of the palette.
func (p Palette) Colors(n int) ([]string, error) {
	if len(p) < n {
		return nil, model.NewInvalidConfigurationError("palette", fmt.Sprintf("has %d colors, need %d", len(p), n))
	}
	out := make([]string, n)
	for i, c := range p[:n] {
		parsed, err := parseColor(fmt.Sprintf("palette[%d]", i), c)
		if err != nil {
			return nil, err
		}
		out[i] = parsed.Hex()
	}
	return out, nil
}

// GitHubPalette is the five-level contribution palette.
var GitHubPalette = Palette{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}

func parseColor(field, s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, model.NewInvalidConfigurationError(field, fmt.Sprintf("invalid hex color %q", s))
	}
	return c, nil
}
