package canvas

import "testing"

func TestBaseFitScale(t *testing.T) {
	tests := []struct {
		name string
		doc  DocumentSpec
		want float64
	}{
		{"large document shrinks", DocumentSpec{WidthPx: 2400, HeightPx: 1800}, 1.0 / 3.0},
		{"tall document limited by height", DocumentSpec{WidthPx: 1200, HeightPx: 2400}, 0.25},
		{"small document not enlarged", DocumentSpec{WidthPx: 400, HeightPx: 300}, 1},
		{"invalid document", DocumentSpec{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseFitScale(tt.doc, DefaultMaxBox); !approxEqual(got, tt.want) {
				t.Errorf("BaseFitScale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainerSize(t *testing.T) {
	doc := DocumentSpec{WidthPx: 2400, HeightPx: 1800, DPI: 300}

	size := ContainerSize(doc, DefaultMaxBox, 1)
	if !approxEqual(size.Width, 800) || !approxEqual(size.Height, 600) {
		t.Errorf("zoom 1: got %vx%v, want 800x600", size.Width, size.Height)
	}

	size = ContainerSize(doc, DefaultMaxBox, 2)
	if !approxEqual(size.Width, 1600) || !approxEqual(size.Height, 1200) {
		t.Errorf("zoom 2: got %vx%v, want 1600x1200", size.Width, size.Height)
	}

	size = ContainerSize(doc, DefaultMaxBox, 0.25)
	if !approxEqual(size.Width, 200) || !approxEqual(size.Height, 150) {
		t.Errorf("zoom 0.25: got %vx%v, want 200x150", size.Width, size.Height)
	}
}

func TestZoomSteps(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"zoom in from 1", ZoomIn(1), 1.25},
		{"zoom in at max", ZoomIn(3), 3},
		{"zoom out from 1", ZoomOut(1), 0.75},
		{"zoom out at min", ZoomOut(0.25), 0.25},
		{"clamp below", ClampZoom(0.1), 0.25},
		{"clamp above", ClampZoom(5), 3},
		{"clamp inside", ClampZoom(1.5), 1.5},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestDocumentSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     DocumentSpec
		wantErr bool
	}{
		{"valid", DocumentSpec{WidthPx: 2400, HeightPx: 1800, DPI: 300, BleedPx: 36, SafePx: 72}, false},
		{"zero width", DocumentSpec{WidthPx: 0, HeightPx: 1800}, true},
		{"negative bleed", DocumentSpec{WidthPx: 10, HeightPx: 10, BleedPx: -1}, true},
		{"negative dpi", DocumentSpec{WidthPx: 10, HeightPx: 10, DPI: -300}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.doc.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
