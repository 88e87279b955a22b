package canvas

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestContainerRect(t *testing.T) {
	rect := ContainerRect(Transform{X: 0, Y: 0, Scale: 0.667}, 800, 600)

	if rect.Left != 0 || rect.Top != 0 {
		t.Errorf("expected origin (0,0), got (%v,%v)", rect.Left, rect.Top)
	}
	if !approxEqual(rect.Width, 533.6) {
		t.Errorf("expected width 533.6, got %v", rect.Width)
	}
	if !approxEqual(rect.Height, 400.2) {
		t.Errorf("expected height 400.2, got %v", rect.Height)
	}
}

func TestContainerRect_Offset(t *testing.T) {
	rect := ContainerRect(Transform{X: -40, Y: 25, Scale: 2}, 300, 200)

	want := Rect{Left: -40, Top: 25, Width: 600, Height: 400}
	if rect != want {
		t.Errorf("ContainerRect = %+v, want %+v", rect, want)
	}
}

func TestContainFit(t *testing.T) {
	tests := []struct {
		name     string
		in       [4]float64 // natural w, natural h, box w, box h
		expected Fit
	}{
		{
			name:     "wider image fits width and centers vertically",
			in:       [4]float64{1600, 900, 800, 600},
			expected: Fit{DrawWidth: 800, DrawHeight: 450, OffsetX: 0, OffsetY: 75},
		},
		{
			name:     "taller image fits height and centers horizontally",
			in:       [4]float64{600, 1200, 800, 600},
			expected: Fit{DrawWidth: 300, DrawHeight: 600, OffsetX: 250, OffsetY: 0},
		},
		{
			name:     "same aspect fills the box",
			in:       [4]float64{1200, 900, 800, 600},
			expected: Fit{DrawWidth: 800, DrawHeight: 600, OffsetX: 0, OffsetY: 0},
		},
		{
			name:     "upscales small image",
			in:       [4]float64{100, 50, 1000, 1000},
			expected: Fit{DrawWidth: 1000, DrawHeight: 500, OffsetX: 0, OffsetY: 250},
		},
		{
			name:     "zero natural size",
			in:       [4]float64{0, 900, 800, 600},
			expected: Fit{},
		},
		{
			name:     "zero box",
			in:       [4]float64{1200, 900, 0, 0},
			expected: Fit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainFit(tt.in[0], tt.in[1], tt.in[2], tt.in[3])
			if !approxEqual(got.DrawWidth, tt.expected.DrawWidth) ||
				!approxEqual(got.DrawHeight, tt.expected.DrawHeight) ||
				!approxEqual(got.OffsetX, tt.expected.OffsetX) ||
				!approxEqual(got.OffsetY, tt.expected.OffsetY) {
				t.Errorf("ContainFit(%v) = %+v, want %+v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestContainFit_Deterministic(t *testing.T) {
	inputs := [][4]float64{
		{1200, 900, 800, 600},
		{333, 777, 123.5, 456.25},
		{4096, 17, 10, 10},
	}
	for _, in := range inputs {
		first := ContainFit(in[0], in[1], in[2], in[3])
		for range 5 {
			if got := ContainFit(in[0], in[1], in[2], in[3]); got != first {
				t.Fatalf("ContainFit(%v) changed between calls: %+v vs %+v", in, first, got)
			}
		}
	}
}

func TestContainFit_StaysInsideBox(t *testing.T) {
	for _, nw := range []float64{1, 37, 640, 1920, 8000} {
		for _, nh := range []float64{1, 53, 480, 1080, 6000} {
			fit := ContainFit(nw, nh, 800, 600)
			if fit.DrawWidth > 800+epsilon || fit.DrawHeight > 600+epsilon {
				t.Errorf("%vx%v: fit %+v exceeds box", nw, nh, fit)
			}
			if fit.OffsetX < -epsilon || fit.OffsetY < -epsilon {
				t.Errorf("%vx%v: negative offset %+v", nw, nh, fit)
			}
			if !approxEqual(fit.DrawWidth/fit.DrawHeight, nw/nh) {
				t.Errorf("%vx%v: aspect not preserved %+v", nw, nh, fit)
			}
		}
	}
}

func TestCoverFit(t *testing.T) {
	got := CoverFit(1200, 900, 800, 600)
	if !approxEqual(got, 2.0/3.0) {
		t.Errorf("CoverFit(1200, 900, 800, 600) = %v, want 0.667", got)
	}
	if got := CoverFit(0, 900, 800, 600); got != 0 {
		t.Errorf("expected 0 for invalid natural size, got %v", got)
	}
}

func TestCoverFit_CoversContainer(t *testing.T) {
	naturals := []float64{1, 10, 299, 1024, 3000, 12000}
	boxes := []float64{50, 533.6, 800, 1600}

	for _, nw := range naturals {
		for _, nh := range naturals {
			for _, cw := range boxes {
				for _, ch := range boxes {
					scale := CoverFit(nw, nh, cw, ch)
					if nw*scale < cw-epsilon || nh*scale < ch-epsilon {
						t.Fatalf("CoverFit(%v, %v, %v, %v) = %v does not cover", nw, nh, cw, ch, scale)
					}
					if !approxEqual(nw*scale, cw) && !approxEqual(nh*scale, ch) {
						t.Fatalf("CoverFit(%v, %v, %v, %v) = %v is larger than needed", nw, nh, cw, ch, scale)
					}
				}
			}
		}
	}
}

func TestClampScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{0.1, 0.1},
		{3, 3},
		{0.05, 0.1},
		{-5, 0.1},
		{3.5, 3},
		{1000, 3},
	}
	for _, tt := range tests {
		if got := ClampScale(tt.in); got != tt.want {
			t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTransformValidate(t *testing.T) {
	tests := []struct {
		name    string
		tr      Transform
		wantErr bool
	}{
		{"valid", Transform{X: 10, Y: -20, Scale: 1}, false},
		{"zero scale", Transform{Scale: 0}, true},
		{"negative scale", Transform{Scale: -1}, true},
		{"nan", Transform{X: math.NaN(), Scale: 1}, true},
		{"inf", Transform{Y: math.Inf(1), Scale: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransform) {
				t.Errorf("expected ErrInvalidTransform, got %v", err)
			}
		})
	}
}
