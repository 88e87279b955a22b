package canvas

import (
	"errors"
	"fmt"
	"math"
)

// State is the interaction state of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateIdle
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Point is a pointer position in display pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Listener is called synchronously after every transform change.
type Listener func(Transform)

// ErrInvalidNaturalSize is returned by ImageLoaded for a zero-sized image.
var ErrInvalidNaturalSize = errors.New("image has no natural size")

// Controller turns pointer gestures into transform updates for one mounted image.
//
// The live transform is kept in display pixels of the current container.
// Saved transforms are exchanged in the zoom 1 reference box, see Persistable.
// A Controller is driven from a single event loop and is not safe for
// concurrent use.
type Controller struct {
	state     State
	container Size
	zoom      float64

	transform  Transform
	saved      *Transform
	natural    Size
	hasChanges bool

	handle     Handle
	dragStart  Point
	startScale float64

	epoch    uint64
	err      error
	listener Listener
}

// NewController creates a controller for a document box of the given display
// size at the given zoom. A zero zoom is treated as DefaultZoom.
func NewController(container Size, zoom float64) *Controller {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Controller{
		state:     StateUninitialized,
		container: container,
		zoom:      zoom,
		epoch:     1,
	}
}

// OnChange registers the listener notified on every transform mutation.
func (c *Controller) OnChange(l Listener) {
	c.listener = l
}

// Reset prepares the controller for a new image (a version switch). The saved
// transform, if any, is in the zoom 1 reference box. Any in-flight load or save
// started before Reset is stale afterwards; the new epoch is returned.
func (c *Controller) Reset(saved *Transform) uint64 {
	c.state = StateUninitialized
	c.transform = Transform{}
	c.natural = Size{}
	c.hasChanges = false
	c.handle = HandleNone
	c.err = nil
	c.saved = nil
	if saved != nil {
		t := *saved
		c.saved = &t
	}
	c.epoch++
	return c.epoch
}

// ImageLoaded initializes the transform once the image's natural size is
// known. A saved transform is used unchanged; otherwise the image is placed
// at the origin at the scale that covers the container. Calls outside the
// Uninitialized state are ignored so a reload never overwrites user edits.
func (c *Controller) ImageLoaded(natural Size) error {
	if c.state != StateUninitialized {
		return nil
	}
	if !natural.Valid() {
		c.err = ErrInvalidNaturalSize
		return ErrInvalidNaturalSize
	}

	c.natural = natural
	c.err = nil
	if c.saved != nil {
		c.transform = c.fromReference(*c.saved)
	} else {
		c.transform = Transform{
			X:     0,
			Y:     0,
			Scale: CoverFit(natural.Width, natural.Height, c.container.Width, c.container.Height),
		}
	}
	c.state = StateIdle
	c.notify()
	return nil
}

// ImageFailed records a load failure. The controller stays Uninitialized.
func (c *Controller) ImageFailed(err error) {
	if c.state != StateUninitialized {
		return
	}
	c.err = err
}

// PointerDown starts a drag (HandleNone) or a resize gesture. Only one gesture
// can be active; it returns false when the gesture was not started.
func (c *Controller) PointerDown(p Point, h Handle) bool {
	if c.state != StateIdle {
		return false
	}
	if h == HandleNone {
		if !c.ImageRect().Contains(p) {
			return false
		}
		c.state = StateDragging
		c.dragStart = Point{X: p.X - c.transform.X, Y: p.Y - c.transform.Y}
		return true
	}
	if !h.IsValid() {
		return false
	}
	c.state = StateResizing
	c.handle = h
	c.dragStart = p
	c.startScale = c.transform.Scale
	return true
}

// PointerMove updates the transform for the active gesture. Dragging places
// the container freely, without clamping to the document. Resizing changes the
// scale by the pointer delta from the gesture origin, relative to the container
// size, with each axis of a corner handle contributing independently.
func (c *Controller) PointerMove(p Point) bool {
	switch c.state {
	case StateDragging:
		c.transform.X = p.X - c.dragStart.X
		c.transform.Y = p.Y - c.dragStart.Y
	case StateResizing:
		dirX, dirY := c.handle.direction()
		scale := c.startScale
		if c.container.Width > 0 {
			scale += dirX * (p.X - c.dragStart.X) / c.container.Width
		}
		if c.container.Height > 0 {
			scale += dirY * (p.Y - c.dragStart.Y) / c.container.Height
		}
		c.transform.Scale = ClampScale(scale)
	default:
		return false
	}
	c.hasChanges = true
	c.notify()
	return true
}

// PointerUp ends the active gesture. The transform stays unsaved until the
// owner persists it.
func (c *Controller) PointerUp() {
	if c.state == StateDragging || c.state == StateResizing {
		c.state = StateIdle
		c.handle = HandleNone
	}
}

// SetView applies a new container size and zoom. Offsets are rescaled so the
// image keeps its place relative to the document. An active gesture ends.
func (c *Controller) SetView(container Size, zoom float64) error {
	if !container.Valid() || zoom <= 0 {
		return fmt.Errorf("invalid view %vx%v at zoom %v", container.Width, container.Height, zoom)
	}
	factor := zoom / c.zoom
	c.container = container
	c.zoom = zoom
	c.PointerUp()

	if c.state == StateUninitialized {
		return nil
	}
	c.transform.X *= factor
	c.transform.Y *= factor
	c.notify()
	return nil
}

// MarkSaved acknowledges a completed save of t, which must be in the zoom 1
// reference box. Results from a previous epoch are ignored and false is returned.
func (c *Controller) MarkSaved(epoch uint64, t Transform) bool {
	if epoch != c.epoch {
		return false
	}
	saved := t
	c.saved = &saved
	c.err = nil
	if current, ok := c.Persistable(); ok && sameTransform(current, t) {
		c.hasChanges = false
	}
	return true
}

// SaveFailed records a failed save. The transform keeps its unsaved changes.
func (c *Controller) SaveFailed(epoch uint64, err error) bool {
	if epoch != c.epoch {
		return false
	}
	c.err = err
	return true
}

// Persistable returns the current transform in the zoom 1 reference box.
// It reports false before the image has been loaded.
func (c *Controller) Persistable() (Transform, bool) {
	if c.state == StateUninitialized {
		return Transform{}, false
	}
	return Transform{
		X:     c.transform.X / c.zoom,
		Y:     c.transform.Y / c.zoom,
		Scale: c.transform.Scale,
	}, true
}

// ContainerRect returns the image container rectangle at the current view.
func (c *Controller) ContainerRect() Rect {
	return ContainerRect(c.transform, c.container.Width, c.container.Height)
}

// HitImage reports whether p is over the drawn image body.
func (c *Controller) HitImage(p Point) bool {
	if c.state == StateUninitialized {
		return false
	}
	return c.ImageRect().Contains(p)
}

// ImageRect returns where the image itself is drawn: its container rectangle
// with object-contain applied.
func (c *Controller) ImageRect() Rect {
	r := c.ContainerRect()
	fit := ContainFit(c.natural.Width, c.natural.Height, r.Width, r.Height)
	return Rect{
		Left:   r.Left + fit.OffsetX,
		Top:    r.Top + fit.OffsetY,
		Width:  fit.DrawWidth,
		Height: fit.DrawHeight,
	}
}

func (c *Controller) Transform() Transform { return c.transform }
func (c *Controller) State() State         { return c.state }
func (c *Controller) HasChanges() bool     { return c.hasChanges }
func (c *Controller) HasSaved() bool       { return c.saved != nil }
func (c *Controller) Epoch() uint64        { return c.epoch }
func (c *Controller) Err() error           { return c.err }
func (c *Controller) Container() Size      { return c.container }
func (c *Controller) Zoom() float64        { return c.zoom }
func (c *Controller) Natural() Size        { return c.natural }

func (c *Controller) fromReference(t Transform) Transform {
	return Transform{X: t.X * c.zoom, Y: t.Y * c.zoom, Scale: t.Scale}
}

func (c *Controller) notify() {
	if c.listener != nil {
		c.listener(c.transform)
	}
}

// sameTransform compares transforms allowing for rounding left by zoom
// round trips.
func sameTransform(a, b Transform) bool {
	const eps = 1e-9
	near := func(x, y float64) bool {
		return math.Abs(x-y) <= eps*math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
	}
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Scale, b.Scale)
}
