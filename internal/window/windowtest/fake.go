// Package windowtest provides an in-memory window.System for tests.
package windowtest

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/bryanchriswhite/WindowShot/internal/window"
)

// Window is a simulated top-level window.
type Window struct {
	Handle    window.Handle
	Title     string
	Visible   bool
	Minimized bool
	Bounds    window.Rect

	// RestoreClearsMinimized makes Restore succeed in un-minimizing.
	RestoreClearsMinimized bool
	// MinimizedBounds is reported while the window stays minimized.
	MinimizedBounds window.Rect

	hidden bool
}

// Fake is a scriptable window.System. All methods are safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	windows []*Window

	ListErr    error
	RestoreErr error
	RaiseErr   error
	GrabErr    error
	// GrabErrs, when non-empty, is consumed one entry per Grab call and takes
	// precedence over GrabErr.
	GrabErrs []error
	HideErr  error
	Fill     color.RGBA
	// Screen, when non-empty, clips Grab the way a real framebuffer does.
	Screen window.Rect

	Calls []string
}

// NewFake returns a fake populated with windows.
func NewFake(windows ...*Window) *Fake {
	return &Fake{
		windows: windows,
		Fill:    color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff},
	}
}

// Add appends a window.
func (f *Fake) Add(w *Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
}

// CloseWindow destroys the window with handle h, invalidating its handle.
func (f *Fake) CloseWindow(h window.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.windows {
		if w.Handle == h {
			f.windows = append(f.windows[:i], f.windows[i+1:]...)
			return
		}
	}
}

// SetGrabErr replaces the error returned by Grab.
func (f *Fake) SetGrabErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GrabErr = err
}

// CallLog returns a copy of the recorded method calls.
func (f *Fake) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// CountCalls returns how many times method was called.
func (f *Fake) CountCalls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *Fake) find(h window.Handle) (*Window, error) {
	for _, w := range f.windows {
		if w.Handle == h {
			return w, nil
		}
	}
	return nil, window.ErrInvalidHandle
}

func (f *Fake) ListVisible() ([]window.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "ListVisible")

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]window.Info, 0, len(f.windows))
	for _, w := range f.windows {
		out = append(out, window.Info{
			Handle:  w.Handle,
			Title:   w.Title,
			Visible: w.Visible,
			Bounds:  w.Bounds,
		})
	}
	return out, nil
}

func (f *Fake) Minimized(h window.Handle) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Minimized")

	w, err := f.find(h)
	if err != nil {
		return false, err
	}
	return w.Minimized, nil
}

func (f *Fake) Restore(h window.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Restore")

	w, err := f.find(h)
	if err != nil {
		return err
	}
	if f.RestoreErr != nil {
		return f.RestoreErr
	}
	if w.RestoreClearsMinimized || w.hidden {
		w.Minimized = false
		w.hidden = false
	}
	return nil
}

func (f *Fake) Hide(h window.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Hide")

	w, err := f.find(h)
	if err != nil {
		return err
	}
	if f.HideErr != nil {
		return f.HideErr
	}
	w.Minimized = true
	w.hidden = true
	return nil
}

// IsMinimized reports the current iconic state of h without recording a call.
func (f *Fake) IsMinimized(h window.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.find(h)
	return err == nil && w.Minimized
}

func (f *Fake) Raise(h window.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Raise")

	if _, err := f.find(h); err != nil {
		return err
	}
	return f.RaiseErr
}

func (f *Fake) Bounds(h window.Handle) (window.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Bounds")

	w, err := f.find(h)
	if err != nil {
		return window.Rect{}, err
	}
	if w.Minimized {
		return w.MinimizedBounds, nil
	}
	return w.Bounds, nil
}

func (f *Fake) Grab(r window.Rect) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Grab")

	if len(f.GrabErrs) > 0 {
		err := f.GrabErrs[0]
		f.GrabErrs = f.GrabErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if f.GrabErr != nil {
		return nil, f.GrabErr
	}
	if !f.Screen.Empty() {
		r = window.RectFromImage(r.Image().Intersect(f.Screen.Image()))
	}
	if r.Empty() {
		return nil, errors.New("empty region")
	}

	img := image.NewRGBA(r.Image())
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			img.SetRGBA(x, y, f.Fill)
		}
	}
	return img, nil
}

func (f *Fake) Close() error { return nil }

func (f *Fake) Name() string { return "fake" }
