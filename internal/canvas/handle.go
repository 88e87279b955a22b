package canvas

import "fmt"

// Handle identifies one of the eight resize handles around the image container.
// HandleNone means the pointer is over the image body.
type Handle string

const (
	HandleNone Handle = ""
	HandleN    Handle = "n"
	HandleS    Handle = "s"
	HandleE    Handle = "e"
	HandleW    Handle = "w"
	HandleNE   Handle = "ne"
	HandleNW   Handle = "nw"
	HandleSE   Handle = "se"
	HandleSW   Handle = "sw"
)

// ResizeHandles lists all resize handles, corners first.
var ResizeHandles = []Handle{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleE, HandleS, HandleW}

// IsValid reports whether h is a known resize handle.
func (h Handle) IsValid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

// ParseHandle converts a handle name; an empty string means the image body.
func ParseHandle(s string) (Handle, error) {
	h := Handle(s)
	if h == HandleNone || h.IsValid() {
		return h, nil
	}
	return HandleNone, fmt.Errorf("unknown resize handle %q", s)
}

// direction returns how a pointer delta on each axis grows the scale:
// +1 grows with positive delta, -1 shrinks, 0 ignores the axis.
func (h Handle) direction() (dirX, dirY float64) {
	switch h {
	case HandleE:
		return 1, 0
	case HandleW:
		return -1, 0
	case HandleS:
		return 0, 1
	case HandleN:
		return 0, -1
	case HandleSE:
		return 1, 1
	case HandleSW:
		return -1, 1
	case HandleNE:
		return 1, -1
	case HandleNW:
		return -1, -1
	}
	return 0, 0
}
