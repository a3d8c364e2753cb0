package session

import (
	"errors"
	"fmt"
	"time"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/oklog/ulid/v2"
)

// Level is the tone a shell renders a status message in.
type Level string

const (
	LevelIdle    Level = "idle"    // gray
	LevelInfo    Level = "info"    // blue
	LevelSuccess Level = "success" // green
	LevelError   Level = "error"   // red
)

// Status is the single line of feedback the shell shows the user.
type Status struct {
	ID    string    `json:"id"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	File  string    `json:"file,omitempty"`
	Code  string    `json:"code,omitempty"`
	Auto  bool      `json:"auto"`
	Time  time.Time `json:"time"`
}

func newStatus(level Level, text string, auto bool) Status {
	return Status{
		ID:    ulid.Make().String(),
		Level: level,
		Text:  text,
		Auto:  auto,
		Time:  time.Now(),
	}
}

// describe turns a capture failure into the short text shown to the user.
func describe(err error) string {
	switch shoterrors.CodeOf(err) {
	case shoterrors.ErrNoWindowChosen:
		return "No window selected"
	case shoterrors.ErrStaleHandle, shoterrors.ErrInvalidHandle:
		return "Window handle is no longer valid, refresh the list"
	case shoterrors.ErrDegenerateWindow:
		return "Window has no visible area (still minimized?)"
	case shoterrors.ErrGrabFailed:
		return fmt.Sprintf("Screen grab failed: %v", causeOf(err))
	case shoterrors.ErrSaveFailed:
		return fmt.Sprintf("Save failed: %v", causeOf(err))
	case shoterrors.ErrFolderOpenFailed:
		return fmt.Sprintf("Open failed: %v", causeOf(err))
	case shoterrors.ErrCancelled:
		return "Capture cancelled"
	}
	return fmt.Sprintf("Error: %v", err)
}

func causeOf(err error) error {
	var sErr *shoterrors.ShotError
	if errors.As(err, &sErr) && sErr.Err != nil {
		return sErr.Err
	}
	return err
}
