package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/capture"
	"github.com/bryanchriswhite/WindowShot/internal/config"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/bryanchriswhite/WindowShot/internal/session"
	"github.com/bryanchriswhite/WindowShot/internal/storage"
	"github.com/bryanchriswhite/WindowShot/internal/window"
)

// app is one wired capture session on the local X display.
type app struct {
	cfg  *config.Config
	sys  window.System
	ctrl *session.Controller
}

// newApp connects to X11 and builds the capture session. An empty saveDir
// means the working directory.
func newApp(cfg *config.Config, saveDir string, interval time.Duration) (*app, error) {
	log := logger.WithComponent("app")

	x, err := window.NewX11System()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	sys, err := capture.WithGrabber(x, cfg.Capture.Grabber)
	if err != nil {
		x.Close()
		return nil, err
	}

	if saveDir != "" {
		info, err := os.Stat(saveDir)
		if err != nil || !info.IsDir() {
			x.Close()
			return nil, fmt.Errorf("save directory %s does not exist", saveDir)
		}
	}
	if interval <= 0 {
		interval = cfg.Capture.Interval
	}

	ctrl, err := session.NewController(session.Options{
		Directory: window.NewDirectory(sys, cfg.Capture.SelfTitle),
		Engine:    capture.NewEngine(sys, cfg.Capture.SettleDelay),
		Store:     storage.NewOsStore(cfg.Capture.FilenamePrefix),
		Interval:  interval,
		SaveDir:   saveDir,
	})
	if err != nil {
		x.Close()
		return nil, err
	}

	titles := ctrl.Refresh()
	log.Info().
		Str("backend", sys.Name()).
		Int("windows", len(titles)).
		Str("save_dir", ctrl.SaveDir()).
		Msg("Capture session ready")

	return &app{cfg: cfg, sys: sys, ctrl: ctrl}, nil
}

func (a *app) Close() {
	a.ctrl.Close()
	if err := a.sys.Close(); err != nil {
		logger.WithComponent("app").Debug().Err(err).Msg("Failed to close window system")
	}
}
