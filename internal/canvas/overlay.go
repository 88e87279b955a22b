package canvas

// GuideKind identifies a print guide.
type GuideKind string

const (
	GuideBleed GuideKind = "bleed"
	GuideSafe  GuideKind = "safe"
)

// Guide is an inset rectangle drawn over the document box.
type Guide struct {
	Kind  GuideKind `json:"kind"`
	Inset float64   `json:"inset"`
	Rect  Rect      `json:"rect"`
}

// GuideOptions toggles individual guides.
type GuideOptions struct {
	ShowBleed bool
	ShowSafe  bool
}

// Guides derives the bleed and safe-zone rectangles for a document displayed
// at displayScale and zoom. Margins of zero produce no guide. Guides are
// display-only and never feed back into a transform or an export.
func Guides(doc DocumentSpec, displayScale, zoom float64, opts GuideOptions) []Guide {
	factor := displayScale * zoom
	box := Size{
		Width:  float64(doc.WidthPx) * factor,
		Height: float64(doc.HeightPx) * factor,
	}

	var guides []Guide
	if opts.ShowBleed && doc.BleedPx > 0 {
		guides = append(guides, insetGuide(GuideBleed, box, float64(doc.BleedPx)*factor))
	}
	if opts.ShowSafe && doc.SafePx > 0 {
		guides = append(guides, insetGuide(GuideSafe, box, float64(doc.SafePx)*factor))
	}
	return guides
}

func insetGuide(kind GuideKind, box Size, inset float64) Guide {
	return Guide{
		Kind:  kind,
		Inset: inset,
		Rect: Rect{
			Left:   inset,
			Top:    inset,
			Width:  max(box.Width-2*inset, 0),
			Height: max(box.Height-2*inset, 0),
		},
	}
}
