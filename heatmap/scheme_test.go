package heatmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stsysd/bathtiles/model"
)

func TestInterpolated_Colors(t *testing.T) {
	colors, err := Interpolated{From: "#eee", To: "#44a340"}.Colors(7)
	if err != nil {
		t.Fatalf("Colors failed: %v", err)
	}
	if len(colors) != 7 {
		t.Fatalf("Expected 7 colors, got %d", len(colors))
	}
	if colors[0] != "#eeeeee" {
		t.Errorf("Expected first color #eeeeee, got %s", colors[0])
	}
	if colors[6] != "#44a340" {
		t.Errorf("Expected last color #44a340, got %s", colors[6])
	}
	for i := 1; i < len(colors); i++ {
		if colors[i] == colors[i-1] {
			t.Errorf("colors %d and %d are identical: %s", i-1, i, colors[i])
		}
	}

	single, err := Interpolated{From: "#000000", To: "#ffffff"}.Colors(1)
	if err != nil {
		t.Fatalf("Colors failed: %v", err)
	}
	if diff := cmp.Diff([]string{"#000000"}, single); diff != "" {
		t.Errorf("Colors(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolated_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		scheme Interpolated
		n      int
	}{
		{name: "bad from", scheme: Interpolated{From: "grey", To: "#44a340"}, n: 7},
		{name: "bad to", scheme: Interpolated{From: "#eee", To: "44a340"}, n: 7},
		{name: "no colors", scheme: Interpolated{From: "#eee", To: "#44a340"}, n: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.scheme.Colors(tt.n); !model.IsInvalidConfiguration(err) {
				t.Errorf("Expected InvalidConfigurationError, got %v", err)
			}
		})
	}
}

func TestPalette_Colors(t *testing.T) {
	colors, err := GitHubPalette.Colors(5)
	if err != nil {
		t.Fatalf("Colors failed: %v", err)
	}
	if diff := cmp.Diff([]string(GitHubPalette), colors); diff != "" {
		t.Errorf("Colors mismatch (-want +got):\n%s", diff)
	}

	// 先頭n色だけを使う
	head, err := Palette{"#FFF", "#000000", "#123456"}.Colors(2)
	if err != nil {
		t.Fatalf("Colors failed: %v", err)
	}
	if diff := cmp.Diff([]string{"#ffffff", "#000000"}, head); diff != "" {
		t.Errorf("Colors mismatch (-want +got):\n%s", diff)
	}

	if _, err := GitHubPalette.Colors(7); !model.IsInvalidConfiguration(err) {
		t.Errorf("Expected InvalidConfigurationError for short palette, got %v", err)
	}
	if _, err := (Palette{"#fff", "green"}).Colors(2); !model.IsInvalidConfiguration(err) {
		t.Errorf("Expected InvalidConfigurationError for bad color, got %v", err)
	}
}
