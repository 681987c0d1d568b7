package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

// Style は描画スタイルのYAMLファイルの内容です。
// 省略した項目は heatmap.DefaultOptions の値になります。
type Style struct {
	Layout struct {
		Dx           int `yaml:"dx"`            // 年ラベル分の左オフセット
		CellSize     int `yaml:"cell_size"`     // セル1つの大きさ
		CellStroke   int `yaml:"cell_stroke"`   // セル間の白線の太さ
		Width        int `yaml:"width"`         // 1年分のパネルの幅
		Height       int `yaml:"height"`        // 1年分のパネルの高さ
		LegendWidth  int `yaml:"legend_width"`  // 月ラベル行と凡例行の幅
		LegendHeight int `yaml:"legend_height"` // 月ラベル行と凡例行の高さ
		LegendOffset int `yaml:"legend_offset"` // 凡例のx方向オフセット
	} `yaml:"layout"`
	Font struct {
		Family string `yaml:"family"`
		Size   int    `yaml:"size"`
	} `yaml:"font"`
	Colors struct {
		Scheme         string   `yaml:"scheme"`           // "interpolate" または "palette"
		MainColor      string   `yaml:"main_color"`       // 最も活発なバケットの色
		EmptyColor     string   `yaml:"empty_color"`      // 投稿のない日の色
		Palette        []string `yaml:"palette"`          // scheme=palette の場合の色一覧
		NumberOfColors int      `yaml:"number_of_colors"` // 空バケットを含むバケット数
	} `yaml:"colors"`
	Merge string `yaml:"merge"` // overwrite, sum, reject
}

// LoadStyle はYAMLファイルからStyleを読み込みます。
// パスが空の場合はデフォルトのStyleを返します。
func LoadStyle(path string) (*Style, error) {
	if path == "" {
		return &Style{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading style file: %w", err)
	}
	return ParseStyle(data)
}

// ParseStyle はYAMLからStyleを読み込みます。未知のキーはエラーになります。
func ParseStyle(data []byte) (*Style, error) {
	var style Style
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// 空のファイルはデフォルトのStyle
	if err := dec.Decode(&style); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing style file: %w", err)
	}
	return &style, nil
}

// Options はStyleを heatmap.Options に変換し、検証します。
func (s *Style) Options() (*heatmap.Options, error) {
	opts := heatmap.DefaultOptions()

	setIfPositive(&opts.Dx, s.Layout.Dx)
	setIfPositive(&opts.CellSize, s.Layout.CellSize)
	setIfPositive(&opts.CellStroke, s.Layout.CellStroke)
	setIfPositive(&opts.Width, s.Layout.Width)
	setIfPositive(&opts.Height, s.Layout.Height)
	setIfPositive(&opts.LegendWidth, s.Layout.LegendWidth)
	setIfPositive(&opts.LegendHeight, s.Layout.LegendHeight)
	setIfPositive(&opts.LegendOffset, s.Layout.LegendOffset)
	setIfPositive(&opts.FontSize, s.Font.Size)
	if s.Font.Family != "" {
		opts.FontFamily = s.Font.Family
	}

	switch strings.ToLower(s.Colors.Scheme) {
	case "", "interpolate":
		scheme := heatmap.Interpolated{From: "#eee", To: "#44a340"}
		if s.Colors.EmptyColor != "" {
			scheme.From = s.Colors.EmptyColor
		}
		if s.Colors.MainColor != "" {
			scheme.To = s.Colors.MainColor
		}
		opts.Scheme = scheme
		if s.Colors.NumberOfColors != 0 {
			opts.NumberOfColors = s.Colors.NumberOfColors
		}
	case "palette":
		if len(s.Colors.Palette) == 0 {
			return nil, model.NewInvalidConfigurationError("colors.palette", "is required for scheme palette")
		}
		opts.Scheme = heatmap.Palette(s.Colors.Palette)
		opts.NumberOfColors = len(s.Colors.Palette)
		if s.Colors.NumberOfColors != 0 {
			opts.NumberOfColors = s.Colors.NumberOfColors
		}
	default:
		return nil, model.NewInvalidConfigurationError("colors.scheme", fmt.Sprintf("unknown scheme %q", s.Colors.Scheme))
	}

	merge, err := heatmap.ParseMergePolicy(s.Merge)
	if err != nil {
		return nil, err
	}
	opts.Merge = merge

	if err := rejectNegative(s); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func rejectNegative(s *Style) error {
	fields := map[string]int{
		"layout.dx":            s.Layout.Dx,
		"layout.cell_size":     s.Layout.CellSize,
		"layout.cell_stroke":   s.Layout.CellStroke,
		"layout.width":         s.Layout.Width,
		"layout.height":        s.Layout.Height,
		"layout.legend_width":  s.Layout.LegendWidth,
		"layout.legend_height": s.Layout.LegendHeight,
		"layout.legend_offset": s.Layout.LegendOffset,
		"font.size":            s.Font.Size,
	}
	for field, v := range fields {
		if v < 0 {
			return model.NewInvalidConfigurationError(field, "must not be negative")
		}
	}
	return nil
}
