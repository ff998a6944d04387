package keyglow

import (
	"testing"

	"libdb.so/keyglow/internal/led"
)

func TestGradientClamp(t *testing.T) {
	g := NewGradient(DefaultPalette)

	first := DefaultPalette[0]
	last := DefaultPalette[len(DefaultPalette)-1]

	tests := []struct {
		name string
		v    float64
		want led.RGBColor
	}{
		{"zero", 0, first},
		{"negative", -3.5, first},
		{"one", 1, last},
		{"above one", 42, last},
	}

	for _, tt := range tests {
		if got := g.Compute(tt.v); got != tt.want {
			t.Errorf("%s: Compute(%v) = %v, want %v", tt.name, tt.v, got, tt.want)
		}
	}
}

func TestGradientInterpolation(t *testing.T) {
	// Red channels 0, 25, 25, 255: a value of 0.8 sits at position 2.4, so
	// red = 25 + 0.4×(255−25) = 117, truncated.
	g := NewGradient([]led.RGBColor{
		{0, 10, 20},
		{25, 30, 40},
		{25, 50, 60},
		{255, 70, 80},
	})

	if got := g.Compute(0.8)[0]; got != 117 {
		t.Errorf("Compute(0.8) red = %d, want 117", got)
	}
}

func TestGradientExactStop(t *testing.T) {
	stops := []led.RGBColor{
		{0, 0, 0},
		{25, 255, 25},
		{255, 255, 25},
		{255, 25, 25},
	}
	g := NewGradient(stops)

	// 1/3 of a 4-stop gradient lands exactly on the second stop.
	if got := g.Compute(1.0 / 3.0); got != stops[1] {
		t.Errorf("Compute(1/3) = %v, want stop 1 %v", got, stops[1])
	}
}

func TestGradientTruncates(t *testing.T) {
	g := NewGradient([]led.RGBColor{
		{0, 0, 0},
		{255, 255, 255},
	})

	// 0.5 blends to 127.5 per channel; truncation gives 127, rounding would
	// give 128.
	want := led.RGBColor{127, 127, 127}
	if got := g.Compute(0.5); got != want {
		t.Errorf("Compute(0.5) = %v, want %v", got, want)
	}
}

func TestGradientSolid(t *testing.T) {
	solid := led.RGBColor{12, 34, 56}
	g := NewGradient([]led.RGBColor{solid})

	for _, v := range []float64{-1, 0, 0.3, 1, 2} {
		if got := g.Compute(v); got != solid {
			t.Errorf("Compute(%v) = %v, want solid %v", v, got, solid)
		}
	}
}
