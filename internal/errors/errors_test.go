package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShotError_Error(t *testing.T) {
	err := &ShotError{Code: ErrNoWindowChosen, Message: "no window selected"}
	assert.Equal(t, "NO_WINDOW_CHOSEN: no window selected", err.Error())

	cause := stderrors.New("disk full")
	err = NewSaveFailed("/tmp/test1.png", cause)
	assert.Equal(t, "SAVE_FAILED: could not save /tmp/test1.png: disk full", err.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *ShotError
		code   ErrorCode
		status int
	}{
		{"no window", NewNoWindowChosen(), ErrNoWindowChosen, 400},
		{"invalid request", NewInvalidRequest("title is required"), ErrInvalidRequest, 400},
		{"stale", NewStaleHandle("Terminal"), ErrStaleHandle, 404},
		{"invalid handle", NewInvalidHandle(0x1a, nil), ErrInvalidHandle, 404},
		{"degenerate", NewDegenerateWindow(0x1a, 0, 0), ErrDegenerateWindow, 422},
		{"grab", NewGrabFailed(nil), ErrGrabFailed, 500},
		{"save", NewSaveFailed("x", nil), ErrSaveFailed, 500},
		{"folder", NewFolderOpenFailed("x", nil), ErrFolderOpenFailed, 500},
		{"cancelled", NewCancelled(nil), ErrCancelled, 499},
		{"cross origin", NewCrossOrigin("http://evil.example"), ErrCrossOrigin, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestIs_FollowsWrapChain(t *testing.T) {
	base := NewGrabFailed(stderrors.New("BadMatch"))
	wrapped := fmt.Errorf("tick 3: %w", base)

	assert.True(t, Is(wrapped, ErrGrabFailed))
	assert.False(t, Is(wrapped, ErrSaveFailed))
	assert.False(t, Is(stderrors.New("plain"), ErrGrabFailed))
	assert.False(t, Is(nil, ErrGrabFailed))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("window destroyed")
	err := NewInvalidHandle(7, cause)
	require.ErrorIs(t, err, cause)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(fmt.Errorf("x: %w", NewStaleHandle("a"))))
	assert.Equal(t, 500, StatusOf(stderrors.New("plain")))
}
