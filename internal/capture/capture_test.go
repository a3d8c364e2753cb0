package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/window"
	"github.com/bryanchriswhite/WindowShot/internal/window/windowtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(sys window.System) (*Engine, *[]time.Duration) {
	waits := &[]time.Duration{}
	e := NewEngine(sys, DefaultSettleDelay)
	e.wait = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return e, waits
}

func bounds() window.Rect {
	return window.Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}
}

func TestEngine_CaptureVisibleWindow(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{Handle: 1, Title: "a", Visible: true, Bounds: bounds()})
	e, waits := newTestEngine(fake)

	res, err := e.Capture(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, bounds(), res.Bounds)
	assert.Equal(t, bounds().Image(), res.Image.Bounds())
	assert.Equal(t, []string{"Minimized", "Raise", "Bounds", "Grab"}, fake.CallLog())
	assert.Equal(t, []time.Duration{DefaultSettleDelay}, *waits)
}

func TestEngine_RestoresMinimizedWindow(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{
		Handle: 1, Title: "a", Visible: true, Minimized: true,
		RestoreClearsMinimized: true, Bounds: bounds(),
	})
	e, _ := newTestEngine(fake)

	res, err := e.Capture(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, bounds(), res.Bounds)
	assert.Equal(t, []string{"Minimized", "Restore", "Raise", "Minimized", "Bounds", "Grab"}, fake.CallLog())
}

func TestEngine_FailedRestoreLeavesDegenerateWindow(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{
		Handle: 1, Title: "a", Visible: true, Minimized: true, Bounds: bounds(),
	})
	fake.RestoreErr = errors.New("restore denied")
	e, _ := newTestEngine(fake)

	_, err := e.Capture(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrDegenerateWindow))
	assert.Equal(t, 0, fake.CountCalls("Grab"))
}

func TestEngine_StillMinimizedWindowKeepsGeometry(t *testing.T) {
	// The window manager ignores the restore and the window keeps reporting
	// its normal geometry while iconic.
	fake := windowtest.NewFake(&windowtest.Window{
		Handle: 1, Title: "a", Visible: true, Minimized: true,
		Bounds: bounds(), MinimizedBounds: bounds(),
	})
	e, _ := newTestEngine(fake)

	_, err := e.Capture(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrDegenerateWindow))
	assert.Equal(t, 0, fake.CountCalls("Grab"))
}

func TestEngine_ResultReportsClippedBounds(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{
		Handle: 1, Title: "a", Visible: true,
		Bounds: window.Rect{Left: 50, Top: 20, Right: 150, Bottom: 70},
	})
	fake.Screen = window.Rect{Right: 100, Bottom: 50}
	e, _ := newTestEngine(fake)

	res, err := e.Capture(context.Background(), 1)
	require.NoError(t, err)

	clipped := window.Rect{Left: 50, Top: 20, Right: 100, Bottom: 50}
	assert.Equal(t, clipped, res.Bounds)
	assert.Equal(t, clipped.Image(), res.Image.Bounds())
}

func TestEngine_RaiseFailureIsNotFatal(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{Handle: 1, Title: "a", Visible: true, Bounds: bounds()})
	fake.RaiseErr = errors.New("focus stealing prevented")
	e, _ := newTestEngine(fake)

	_, err := e.Capture(context.Background(), 1)
	assert.NoError(t, err)
}

func TestEngine_InvalidHandle(t *testing.T) {
	fake := windowtest.NewFake()
	e, waits := newTestEngine(fake)

	_, err := e.Capture(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrInvalidHandle))
	assert.ErrorIs(t, err, window.ErrInvalidHandle)
	assert.Empty(t, *waits)
}

func TestEngine_GrabFailed(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{Handle: 1, Title: "a", Visible: true, Bounds: bounds()})
	fake.GrabErr = errors.New("BadMatch")
	e, _ := newTestEngine(fake)

	_, err := e.Capture(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrGrabFailed))
}

func TestEngine_CancelledDuringSettle(t *testing.T) {
	fake := windowtest.NewFake(&windowtest.Window{Handle: 1, Title: "a", Visible: true, Bounds: bounds()})
	e, _ := newTestEngine(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Capture(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrCancelled))
	assert.Equal(t, 499, shoterrors.StatusOf(err))
	assert.Equal(t, 0, fake.CountCalls("Grab"))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestWithGrabber(t *testing.T) {
	fake := windowtest.NewFake()

	sys, err := WithGrabber(fake, GrabberX11)
	require.NoError(t, err)
	assert.Same(t, fake, sys)

	_, err = WithGrabber(fake, "vnc")
	assert.Error(t, err)

	assert.True(t, ValidGrabber("screenshot"))
	assert.False(t, ValidGrabber("pipewire"))
}
