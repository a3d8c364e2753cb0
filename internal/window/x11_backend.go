package window

import (
	"fmt"
	"image"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
)

// ICCCM WM_STATE values
const (
	wmStateIconic = 3
)

// EWMH _NET_ACTIVE_WINDOW source indication for pagers and tools
const activeSourcePager = 2

// X11System implements System over an X11 (or XWayland) connection.
type X11System struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo

	mu    sync.Mutex
	atoms map[string]xproto.Atom
}

// NewX11System connects to the display named by $DISPLAY.
func NewX11System() (*X11System, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11System{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}, nil
}

// Close closes the X11 connection
func (s *X11System) Close() error {
	s.conn.Close()
	return nil
}

// Name returns the backend name
func (s *X11System) Name() string {
	return "x11"
}

// ScreenBounds returns the root window rectangle.
func (s *X11System) ScreenBounds() Rect {
	return Rect{
		Right:  int(s.screen.WidthInPixels),
		Bottom: int(s.screen.HeightInPixels),
	}
}

// ListVisible returns top-level windows using EWMH _NET_CLIENT_LIST with
// QueryTree fallback
func (s *X11System) ListVisible() ([]Info, error) {
	log := logger.WithComponent("x11-backend")

	ids, err := s.clientList()
	if err == nil && len(ids) > 0 {
		log.Debug().Int("count", len(ids)).Msg("ListVisible: using EWMH _NET_CLIENT_LIST")
	} else {
		if err != nil {
			log.Debug().Err(err).Msg("ListVisible: EWMH failed, falling back to QueryTree")
		}
		tree, err := xproto.QueryTree(s.conn, s.root).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to query window tree: %w", err)
		}
		ids = tree.Children
		log.Debug().Int("count", len(ids)).Msg("ListVisible: using QueryTree fallback")
	}

	windows := make([]Info, 0, len(ids))
	for _, id := range ids {
		info, err := s.windowInfo(id)
		if err != nil {
			// Window vanished between listing and inspection
			log.Debug().Uint32("winID", uint32(id)).Err(err).Msg("ListVisible: skipping window")
			continue
		}
		windows = append(windows, info)
	}

	return windows, nil
}

// clientList reads the window ids from _NET_CLIENT_LIST on the root window
func (s *X11System) clientList() ([]xproto.Window, error) {
	atom, err := s.atom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetProperty(s.conn, false, s.root, atom,
		xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("_NET_CLIENT_LIST is empty")
	}

	ids := make([]xproto.Window, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		ids = append(ids, xproto.Window(xgb.Get32(reply.Value[i:])))
	}
	return ids, nil
}

// windowInfo gathers title, visibility and screen bounds for a window
func (s *X11System) windowInfo(win xproto.Window) (Info, error) {
	h := Handle(win)

	attrs, err := xproto.GetWindowAttributes(s.conn, win).Reply()
	if err != nil {
		return Info{}, s.classify(h, err)
	}

	bounds, err := s.geometry(h)
	if err != nil {
		return Info{}, err
	}

	iconic, _ := s.Minimized(h)

	return Info{
		Handle:  h,
		Title:   s.title(win),
		Visible: attrs.MapState == xproto.MapStateViewable || iconic,
		Bounds:  bounds,
	}, nil
}

// title prefers the UTF-8 _NET_WM_NAME and falls back to WM_NAME
func (s *X11System) title(win xproto.Window) string {
	for _, name := range []string{"_NET_WM_NAME", "WM_NAME"} {
		atom, err := s.atom(name)
		if err != nil {
			continue
		}
		if value, err := s.property(win, atom); err == nil && len(value) > 0 {
			return string(value)
		}
	}
	return ""
}

// Minimized reports whether the window is iconic, via ICCCM WM_STATE or the
// EWMH hidden state.
func (s *X11System) Minimized(h Handle) (bool, error) {
	win := xproto.Window(h)

	if _, err := xproto.GetWindowAttributes(s.conn, win).Reply(); err != nil {
		return false, s.classify(h, err)
	}

	if atom, err := s.atom("WM_STATE"); err == nil {
		if value, err := s.property(win, atom); err == nil && len(value) >= 4 {
			if xgb.Get32(value) == wmStateIconic {
				return true, nil
			}
		}
	}

	stateAtom, err := s.atom("_NET_WM_STATE")
	if err != nil {
		return false, nil
	}
	hiddenAtom, err := s.atom("_NET_WM_STATE_HIDDEN")
	if err != nil {
		return false, nil
	}
	value, err := s.property(win, stateAtom)
	if err != nil {
		return false, nil
	}
	for i := 0; i+4 <= len(value); i += 4 {
		if xproto.Atom(xgb.Get32(value[i:])) == hiddenAtom {
			return true, nil
		}
	}
	return false, nil
}

// Restore maps the window and asks the window manager to activate it, which
// de-iconifies it under EWMH window managers.
func (s *X11System) Restore(h Handle) error {
	if err := xproto.MapWindowChecked(s.conn, xproto.Window(h)).Check(); err != nil {
		return s.classify(h, err)
	}
	return s.activate(h)
}

// Hide sends the ICCCM WM_CHANGE_STATE request that iconifies the window
func (s *X11System) Hide(h Handle) error {
	atom, err := s.atom("WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(h),
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{wmStateIconic, 0, 0, 0, 0}),
	}

	const mask = xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify
	if err := xproto.SendEventChecked(s.conn, false, s.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("failed to iconify window %s: %w", h, err)
	}
	return nil
}

// Raise activates the window and restacks it above its siblings.
func (s *X11System) Raise(h Handle) error {
	if err := s.activate(h); err != nil {
		return err
	}

	err := xproto.ConfigureWindowChecked(s.conn, xproto.Window(h),
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
	if err != nil {
		return s.classify(h, err)
	}
	return nil
}

// activate sends a _NET_ACTIVE_WINDOW client message to the root window
func (s *X11System) activate(h Handle) error {
	atom, err := s.atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(h),
		Type:   atom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			activeSourcePager, xproto.TimeCurrentTime, 0, 0, 0,
		}),
	}

	const mask = xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify
	if err := xproto.SendEventChecked(s.conn, false, s.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("failed to activate window %s: %w", h, err)
	}
	return nil
}

// Bounds returns the on-screen rectangle of the window. An iconic or
// unmapped window keeps its geometry on X11 but shows nothing, so it reports
// an empty rectangle.
func (s *X11System) Bounds(h Handle) (Rect, error) {
	attrs, err := xproto.GetWindowAttributes(s.conn, xproto.Window(h)).Reply()
	if err != nil {
		return Rect{}, s.classify(h, err)
	}
	iconic, err := s.Minimized(h)
	if err != nil {
		return Rect{}, err
	}

	r, err := s.geometry(h)
	if err != nil {
		return Rect{}, err
	}
	return onScreen(attrs.MapState, iconic, r), nil
}

// onScreen drops r unless the window is mapped, viewable and not iconic
func onScreen(mapState byte, iconic bool, r Rect) Rect {
	if mapState != xproto.MapStateViewable || iconic {
		return Rect{}
	}
	return r
}

// geometry returns the window rectangle translated to root coordinates
func (s *X11System) geometry(h Handle) (Rect, error) {
	win := xproto.Window(h)

	geom, err := xproto.GetGeometry(s.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return Rect{}, s.classify(h, err)
	}

	origin, err := xproto.TranslateCoordinates(s.conn, win, s.root, 0, 0).Reply()
	if err != nil {
		return Rect{}, s.classify(h, err)
	}

	left, top := int(origin.DstX), int(origin.DstY)
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + int(geom.Width),
		Bottom: top + int(geom.Height),
	}, nil
}

// Grab reads r from the root window. The rectangle is clipped to the screen
// because GetImage rejects off-screen regions.
func (s *X11System) Grab(r Rect) (*image.RGBA, error) {
	clipped := r.Image().Intersect(s.ScreenBounds().Image())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v lies outside the screen", r)
	}

	width, height := clipped.Dx(), clipped.Dy()
	reply, err := xproto.GetImage(
		s.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(s.root),
		int16(clipped.Min.X), int16(clipped.Min.Y),
		uint16(width), uint16(height),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return convertZPixmap(reply.Data, int(s.screen.RootDepth), clipped)
}

// convertZPixmap converts 32 bits-per-pixel BGRX image data to RGBA
func convertZPixmap(data []byte, depth int, bounds image.Rectangle) (*image.RGBA, error) {
	if depth != 24 && depth != 32 {
		return nil, fmt.Errorf("unsupported root depth %d", depth)
	}

	width, height := bounds.Dx(), bounds.Dy()
	if len(data) < width*height*4 {
		return nil, fmt.Errorf("short image data: got %d bytes for %dx%d", len(data), width, height)
	}

	img := image.NewRGBA(bounds)
	for i := 0; i < width*height; i++ {
		o := i * 4
		img.Pix[o] = data[o+2]
		img.Pix[o+1] = data[o+1]
		img.Pix[o+2] = data[o]
		img.Pix[o+3] = 0xff
	}
	return img, nil
}

// classify maps X protocol errors for a dead window onto ErrInvalidHandle
func (s *X11System) classify(h Handle, err error) error {
	switch err.(type) {
	case xproto.WindowError, xproto.DrawableError:
		return fmt.Errorf("window %s: %w", h, ErrInvalidHandle)
	}
	return fmt.Errorf("window %s: %w", h, err)
}

// atom interns name once per connection
func (s *X11System) atom(name string) (xproto.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if atom, ok := s.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(s.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	s.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// property reads a whole window property as raw bytes
func (s *X11System) property(win xproto.Window, atom xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(s.conn, false, win, atom,
		xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, err
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("empty property")
	}
	return reply.Value, nil
}
