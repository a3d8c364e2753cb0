package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/capture"
	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/folder"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/bryanchriswhite/WindowShot/internal/scheduler"
	"github.com/bryanchriswhite/WindowShot/internal/storage"
	"github.com/bryanchriswhite/WindowShot/internal/window"
)

// DefaultInterval is the auto-capture cadence.
const DefaultInterval = 10 * time.Second

// Options configures a Controller.
type Options struct {
	Directory *window.Directory
	Engine    *capture.Engine
	Store     *storage.Store
	Scheduler scheduler.Scheduler
	Opener    folder.Opener

	// Interval between auto-capture ticks. Zero means DefaultInterval.
	Interval time.Duration
	// SaveDir is the initial save directory. Empty means the working
	// directory of the process.
	SaveDir string
}

// Controller is one capture session: the window directory, the current
// selection, the save directory and the auto-capture flag.
type Controller struct {
	dir      *window.Directory
	engine   *capture.Engine
	store    *storage.Store
	sched    scheduler.Scheduler
	opener   folder.Opener
	interval time.Duration

	mu        sync.Mutex
	selected  string
	saveDir   string
	auto      bool
	gen       uint64
	pending   scheduler.Token
	status    Status
	lastSaved *storage.SavedFile
	listeners []chan Status
	closed    bool

	// captureMu serializes captures so manual and timer-driven attempts
	// never interleave.
	captureMu sync.Mutex
}

// NewController creates a session. It does not refresh the directory.
func NewController(opts Options) (*Controller, error) {
	if opts.Directory == nil || opts.Engine == nil || opts.Store == nil {
		return nil, fmt.Errorf("session: directory, engine and store are required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.Realtime{}
	}
	if opts.Opener == nil {
		opts.Opener = folder.NewDesktop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.SaveDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.SaveDir = wd
	}

	return &Controller{
		dir:      opts.Directory,
		engine:   opts.Engine,
		store:    opts.Store,
		sched:    opts.Scheduler,
		opener:   opts.Opener,
		interval: opts.Interval,
		saveDir:  opts.SaveDir,
		status:   newStatus(LevelIdle, "Ready", false),
	}, nil
}

// Interval returns the auto-capture cadence.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Refresh rebuilds the window directory. The selection survives if its
// title is still listed; otherwise the first title is selected.
func (c *Controller) Refresh() []string {
	titles := c.dir.Refresh()

	c.mu.Lock()
	defer c.mu.Unlock()

	keep := false
	for _, t := range titles {
		if t == c.selected {
			keep = true
			break
		}
	}
	if !keep {
		c.selected = ""
		if len(titles) > 0 {
			c.selected = titles[0]
		}
	}
	return titles
}

// Windows returns the entries of the last refresh, sorted by title.
func (c *Controller) Windows() []window.Entry {
	return c.dir.Entries()
}

// Select makes title the current selection. An empty title clears it.
func (c *Controller) Select(title string) error {
	if title != "" {
		if _, ok := c.dir.Lookup(title); !ok {
			return shoterrors.NewStaleHandle(title)
		}
	}

	c.mu.Lock()
	c.selected = title
	c.mu.Unlock()
	return nil
}

// Selected returns the current selection.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SaveDir returns the directory captures are written to.
func (c *Controller) SaveDir() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveDir
}

// SetSaveDir changes the save directory. An empty dir is a cancelled pick
// and leaves the current directory unchanged.
func (c *Controller) SetSaveDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := c.store.Fs().Stat(dir)
	if err != nil {
		return shoterrors.NewInvalidRequest(fmt.Sprintf("save directory %s: %v", dir, err))
	}
	if !info.IsDir() {
		return shoterrors.NewInvalidRequest(fmt.Sprintf("save directory %s is not a directory", dir))
	}

	c.mu.Lock()
	c.saveDir = dir
	c.mu.Unlock()

	logger.WithComponent("session").Info().Str("dir", dir).Msg("Save directory changed")
	return nil
}

// CaptureOnce captures the window listed under title and saves it. Exactly
// one status is published for the attempt.
func (c *Controller) CaptureOnce(ctx context.Context, title string) (storage.SavedFile, error) {
	return c.capture(ctx, title, false)
}

// CaptureSelected captures the current selection.
func (c *Controller) CaptureSelected(ctx context.Context) (storage.SavedFile, error) {
	return c.capture(ctx, c.Selected(), false)
}

func (c *Controller) capture(ctx context.Context, title string, auto bool) (storage.SavedFile, error) {
	log := logger.WithComponent("session")

	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	saved, err := c.captureLocked(ctx, title)
	if err != nil {
		text := describe(err)
		if auto {
			text = "Auto capture error: " + text
		}
		code := shoterrors.CodeOf(err)
		level := LevelError
		if code == shoterrors.ErrCancelled {
			level = LevelInfo
		}
		st := newStatus(level, text, auto)
		st.Code = string(code)
		c.publish(st)

		if level == LevelInfo {
			log.Info().Str("title", title).Bool("auto", auto).Msg("Capture cancelled")
		} else {
			log.Warn().Err(err).Str("title", title).Bool("auto", auto).Msg("Capture failed")
		}
		return storage.SavedFile{}, err
	}

	st := newStatus(LevelSuccess, "Saved: "+saved.Name, auto)
	st.File = saved.Path
	c.mu.Lock()
	c.lastSaved = &saved
	c.mu.Unlock()
	c.publish(st)

	return saved, nil
}

func (c *Controller) captureLocked(ctx context.Context, title string) (storage.SavedFile, error) {
	if title == "" || c.dir.Len() == 0 {
		return storage.SavedFile{}, shoterrors.NewNoWindowChosen()
	}

	entry, ok := c.dir.Lookup(title)
	if !ok {
		return storage.SavedFile{}, shoterrors.NewStaleHandle(title)
	}

	res, err := c.grab(ctx, entry.Handle)
	if err != nil {
		return storage.SavedFile{}, err
	}

	return c.store.Save(c.SaveDir(), res.Image)
}

// grab captures h with our own windows iconified for the duration
func (c *Controller) grab(ctx context.Context, h window.Handle) (*capture.Result, error) {
	restore := c.dir.HideSelf()
	defer restore()
	return c.engine.Capture(ctx, h)
}

// AutoCapturing reports whether the auto-capture loop is on.
func (c *Controller) AutoCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

// ToggleAuto flips auto-capture and returns the new state. Turning it on
// captures immediately and then once per interval; a failed tick is
// reported and the loop carries on. Turning it off cancels the pending tick;
// a tick already running finishes but does not reschedule.
func (c *Controller) ToggleAuto() bool {
	log := logger.WithComponent("session")

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.auto = !c.auto
	c.gen++
	on, gen := c.auto, c.gen
	if !on && c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
	c.mu.Unlock()

	if !on {
		log.Info().Msg("Auto capture stopped")
		c.publish(newStatus(LevelInfo, "Auto capture stopped", false))
		return false
	}

	log.Info().Dur("interval", c.interval).Msg("Auto capture started")
	c.publish(newStatus(LevelInfo, "Auto capture started", true))
	c.tick(gen)
	return true
}

// tick runs one auto capture for loop generation gen and schedules the next
func (c *Controller) tick(gen uint64) {
	if !c.autoActive(gen) {
		return
	}
	defer c.reschedule(gen)
	defer func() {
		if r := recover(); r != nil {
			logger.WithComponent("session").Error().Interface("panic", r).Msg("Auto capture tick panicked")
			c.publish(newStatus(LevelError, fmt.Sprintf("Auto capture error: %v", r), true))
		}
	}()

	// Failures are already published by capture.
	_, _ = c.capture(context.Background(), c.Selected(), true)
}

func (c *Controller) autoActive(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto && c.gen == gen && !c.closed
}

func (c *Controller) reschedule(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auto || c.gen != gen || c.closed {
		return
	}
	c.pending = c.sched.Schedule(c.interval, func() { c.tick(gen) })
}

// OpenFolder shows the save directory in the file manager.
func (c *Controller) OpenFolder(ctx context.Context) error {
	dir := c.SaveDir()

	if err := c.opener.Open(ctx, dir); err != nil {
		wrapped := shoterrors.NewFolderOpenFailed(dir, err)
		st := newStatus(LevelError, describe(wrapped), false)
		st.Code = string(wrapped.Code)
		c.publish(st)
		return wrapped
	}
	return nil
}

// LastSaved returns the most recent successful capture.
func (c *Controller) LastSaved() (storage.SavedFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSaved == nil {
		return storage.SavedFile{}, false
	}
	return *c.lastSaved, true
}

// Store returns the store captures are written through.
func (c *Controller) Store() *storage.Store {
	return c.store
}

// Status returns the most recent status message.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe adds a listener for status changes
func (c *Controller) Subscribe() chan Status {
	ch := make(chan Status, 10)
	c.mu.Lock()
	if c.closed {
		close(ch)
	} else {
		c.listeners = append(c.listeners, ch)
	}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (c *Controller) Unsubscribe(ch chan Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, listener := range c.listeners {
		if listener == ch {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// publish records st and notifies listeners without blocking
func (c *Controller) publish(st Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = st
	for _, listener := range c.listeners {
		select {
		case listener <- st:
		default:
			// Skip slow listeners
		}
	}
}

// Close stops auto capture and closes all listeners.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.auto = false
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
	for _, listener := range c.listeners {
		close(listener)
	}
	c.listeners = nil
}
