package window

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidHandle is returned by a System when the handle no longer refers
// to a live window.
var ErrInvalidHandle = errors.New("invalid window handle")

// Handle is an opaque OS window identifier. On X11 it is the window XID.
type Handle uint32

// String formats the handle the way xprop and xwininfo print window ids.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint32(h))
}

// Rect is a screen-space rectangle in pixels. Right and Bottom are exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent, which may be zero or negative.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent, which may be zero or negative.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Image converts the rectangle to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// RectFromImage converts an image.Rectangle to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// Info describes a top-level window as reported by the OS.
type Info struct {
	Handle  Handle `json:"handle"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
	Bounds  Rect   `json:"bounds"`
}

// System is the narrow capability over the OS window APIs the capture flow
// needs. Implementations: X11System for a live display, windowtest.Fake for
// tests.
type System interface {
	// ListVisible returns all top-level windows known to the OS. Callers
	// apply their own visibility and geometry filtering.
	ListVisible() ([]Info, error)

	// Minimized reports whether the window is iconified.
	Minimized(h Handle) (bool, error)

	// Restore de-iconifies the window.
	Restore(h Handle) error

	// Hide asks the window manager to iconify the window.
	Hide(h Handle) error

	// Raise asks the window manager to bring the window to the foreground.
	Raise(h Handle) error

	// Bounds returns the current screen-space rectangle of the window.
	Bounds(h Handle) (Rect, error)

	// Grab reads the given rectangle from the whole-screen framebuffer.
	Grab(r Rect) (*image.RGBA, error)

	// Close releases the connection to the display server.
	Close() error

	// Name returns the backend name (e.g., "x11").
	Name() string
}
