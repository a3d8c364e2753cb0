package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of capture failure.
type ErrorCode string

const (
	ErrNoWindowChosen   ErrorCode = "NO_WINDOW_CHOSEN"   // 400
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrStaleHandle      ErrorCode = "STALE_HANDLE"       // 404
	ErrInvalidHandle    ErrorCode = "INVALID_HANDLE"     // 404
	ErrDegenerateWindow ErrorCode = "DEGENERATE_WINDOW"  // 422
	ErrGrabFailed       ErrorCode = "GRAB_FAILED"        // 500
	ErrSaveFailed       ErrorCode = "SAVE_FAILED"        // 500
	ErrFolderOpenFailed ErrorCode = "FOLDER_OPEN_FAILED" // 500
	ErrCancelled        ErrorCode = "CANCELLED"          // 499
	ErrCrossOrigin      ErrorCode = "CROSS_ORIGIN"       // 403
)

// ShotError is a structured error carrying a code, an HTTP status for the API
// shell and the underlying cause, if any.
type ShotError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ShotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShotError) Unwrap() error {
	return e.Err
}

// NewNoWindowChosen is returned when a capture is requested without a selection.
func NewNoWindowChosen() *ShotError {
	return &ShotError{
		Code:    ErrNoWindowChosen,
		Status:  400,
		Message: "no window selected",
	}
}

// NewInvalidRequest creates a 400 error for malformed shell input.
func NewInvalidRequest(msg string) *ShotError {
	return &ShotError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewStaleHandle is returned when the selected title is no longer in the directory.
func NewStaleHandle(title string) *ShotError {
	return &ShotError{
		Code:    ErrStaleHandle,
		Status:  404,
		Message: fmt.Sprintf("window %q is no longer listed; refresh the window list", title),
	}
}

// NewInvalidHandle is returned when the OS no longer knows the window.
func NewInvalidHandle(handle uint32, cause error) *ShotError {
	return &ShotError{
		Code:    ErrInvalidHandle,
		Status:  404,
		Message: fmt.Sprintf("window 0x%x is gone", handle),
		Err:     cause,
	}
}

// NewDegenerateWindow is returned when the window bounds have no area.
func NewDegenerateWindow(handle uint32, width, height int) *ShotError {
	return &ShotError{
		Code:    ErrDegenerateWindow,
		Status:  422,
		Message: fmt.Sprintf("window 0x%x has no visible area (%dx%d)", handle, width, height),
	}
}

// NewGrabFailed wraps an OS-level screen grab failure.
func NewGrabFailed(cause error) *ShotError {
	return &ShotError{
		Code:    ErrGrabFailed,
		Status:  500,
		Message: "screen grab failed",
		Err:     cause,
	}
}

// NewSaveFailed wraps an I/O failure while writing the image.
func NewSaveFailed(path string, cause error) *ShotError {
	return &ShotError{
		Code:    ErrSaveFailed,
		Status:  500,
		Message: fmt.Sprintf("could not save %s", path),
		Err:     cause,
	}
}

// NewFolderOpenFailed wraps a failure to show the save directory.
func NewFolderOpenFailed(path string, cause error) *ShotError {
	return &ShotError{
		Code:    ErrFolderOpenFailed,
		Status:  500,
		Message: fmt.Sprintf("could not open %s", path),
		Err:     cause,
	}
}

// StatusClientClosedRequest is the non-standard status for a request the
// caller abandoned.
const StatusClientClosedRequest = 499

// NewCancelled is returned when the caller gives up on a capture before the
// grab.
func NewCancelled(cause error) *ShotError {
	return &ShotError{
		Code:    ErrCancelled,
		Status:  StatusClientClosedRequest,
		Message: "capture cancelled",
		Err:     cause,
	}
}

// NewCrossOrigin rejects a browser request sent from another site.
func NewCrossOrigin(origin string) *ShotError {
	return &ShotError{
		Code:    ErrCrossOrigin,
		Status:  403,
		Message: fmt.Sprintf("requests from origin %q are not allowed", origin),
	}
}

// Is checks if err is, or wraps, a ShotError with the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first ShotError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var sErr *ShotError
	if stderrors.As(err, &sErr) {
		return sErr.Code
	}
	return ""
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var sErr *ShotError
	if stderrors.As(err, &sErr) && sErr.Status != 0 {
		return sErr.Status
	}
	return 500
}
