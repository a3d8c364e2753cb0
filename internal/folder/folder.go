// Package folder shows a directory in the desktop's file manager.
package folder

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	fileManagerDest  = "org.freedesktop.FileManager1"
	fileManagerPath  = "/org/freedesktop/FileManager1"
	showFoldersCall  = "org.freedesktop.FileManager1.ShowFolders"
	fallbackLauncher = "xdg-open"
)

// Opener opens a directory for the user.
type Opener interface {
	Open(ctx context.Context, dir string) error
}

// Desktop opens folders through the FileManager1 D-Bus interface and falls
// back to xdg-open when no file manager owns that name.
type Desktop struct {
	showFolders func(ctx context.Context, uri string) error
	launch      func(ctx context.Context, dir string) error
}

// NewDesktop returns an Opener for freedesktop environments.
func NewDesktop() *Desktop {
	return &Desktop{
		showFolders: dbusShowFolders,
		launch:      xdgOpen,
	}
}

// Open shows dir. It fails if dir is not an existing directory or if both
// mechanisms fail.
func (d *Desktop) Open(ctx context.Context, dir string) error {
	log := logger.WithComponent("folder")

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	uri := (&url.URL{Scheme: "file", Path: abs}).String()
	dbusErr := d.showFolders(ctx, uri)
	if dbusErr == nil {
		log.Debug().Str("uri", uri).Msg("Opened via FileManager1")
		return nil
	}
	log.Debug().Err(dbusErr).Msg("FileManager1 unavailable, trying xdg-open")

	if err := d.launch(ctx, abs); err != nil {
		return fmt.Errorf("file manager: %v; %s: %w", dbusErr, fallbackLauncher, err)
	}
	return nil
}

func dbusShowFolders(ctx context.Context, uri string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(fileManagerDest, dbus.ObjectPath(fileManagerPath))
	return obj.CallWithContext(ctx, showFoldersCall, 0, []string{uri}, "").Err
}

func xdgOpen(ctx context.Context, dir string) error {
	path, err := exec.LookPath(fallbackLauncher)
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, path, dir).Run()
}
