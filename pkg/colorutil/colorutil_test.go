package colorutil

import (
	"image/color"
	"testing"
)

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		a    uint8
		want color.RGBA
	}{
		{Match, 80, color.RGBA{R: 80, A: 80}},
		{Selection, 255, Selection},
		{Selection, 0, color.RGBA{}},
		{color.RGBA{R: 128, G: 64, B: 255, A: 255}, 128, color.RGBA{R: 64, G: 32, B: 128, A: 128}},
	}
	for _, tc := range tests {
		if got := WithAlpha(tc.in, tc.a); got != tc.want {
			t.Errorf("WithAlpha(%v, %d) = %v, want %v", tc.in, tc.a, got, tc.want)
		}
	}
}

func TestTranslucentKeepsChannels(t *testing.T) {
	got := Translucent(Selection, 0x80)
	if got != (color.NRGBA{R: 255, G: 255, B: 0, A: 0x80}) {
		t.Fatalf("Translucent = %v", got)
	}
}
