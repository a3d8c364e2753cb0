package capture

import (
	"context"
	"errors"
	"image"
	"time"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/bryanchriswhite/WindowShot/internal/window"
)

// DefaultSettleDelay is how long the engine waits after restore/raise for
// the target window to finish redrawing.
const DefaultSettleDelay = 200 * time.Millisecond

// Result is a captured pixel buffer and the screen rectangle it came from.
type Result struct {
	Image  *image.RGBA
	Bounds window.Rect
}

// Engine raises a window and grabs its screen rectangle.
type Engine struct {
	sys    window.System
	settle time.Duration

	// wait blocks for d or until ctx is done. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a capture engine over sys.
func NewEngine(sys window.System, settle time.Duration) *Engine {
	if settle < 0 {
		settle = 0
	}
	return &Engine{
		sys:    sys,
		settle: settle,
		wait:   sleepContext,
	}
}

// Capture restores and raises the window, waits for it to settle and grabs
// its current bounds from the screen. Anything sitting above the window when
// the grab happens ends up in the image. The result's bounds are those of the
// grabbed pixels, which the backend may have clipped to the screen.
func (e *Engine) Capture(ctx context.Context, h window.Handle) (*Result, error) {
	log := logger.WithComponent("capture-engine")

	minimized, err := e.sys.Minimized(h)
	if err != nil {
		return nil, e.handleErr(h, err)
	}
	if minimized {
		if err := e.sys.Restore(h); err != nil {
			log.Warn().Err(err).Stringer("window", h).Msg("Restore failed, continuing")
		}
	}

	if err := e.sys.Raise(h); err != nil {
		log.Debug().Err(err).Stringer("window", h).Msg("Raise refused, continuing")
	}

	if err := e.wait(ctx, e.settle); err != nil {
		return nil, shoterrors.NewCancelled(err)
	}

	// A window that is still iconic shows nothing of itself
	if minimized {
		if minimized, err = e.sys.Minimized(h); err != nil {
			return nil, e.handleErr(h, err)
		}
		if minimized {
			return nil, shoterrors.NewDegenerateWindow(uint32(h), 0, 0)
		}
	}

	bounds, err := e.sys.Bounds(h)
	if err != nil {
		return nil, e.handleErr(h, err)
	}
	if bounds.Empty() {
		return nil, shoterrors.NewDegenerateWindow(uint32(h), bounds.Width(), bounds.Height())
	}

	img, err := e.sys.Grab(bounds)
	if err != nil {
		return nil, shoterrors.NewGrabFailed(err)
	}

	grabbed := window.RectFromImage(img.Bounds())
	if grabbed != bounds {
		log.Debug().
			Stringer("window", h).
			Interface("bounds", bounds).
			Interface("grabbed", grabbed).
			Msg("Grab clipped to the screen")
	}

	log.Debug().
		Stringer("window", h).
		Int("width", grabbed.Width()).
		Int("height", grabbed.Height()).
		Msg("Window captured")

	return &Result{Image: img, Bounds: grabbed}, nil
}

// handleErr maps a System error for h onto the capture taxonomy
func (e *Engine) handleErr(h window.Handle, err error) error {
	if errors.Is(err, window.ErrInvalidHandle) {
		return shoterrors.NewInvalidHandle(uint32(h), err)
	}
	return shoterrors.NewGrabFailed(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
