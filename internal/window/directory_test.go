package window_test

import (
	"errors"
	"testing"

	"github.com/bryanchriswhite/WindowShot/internal/window"
	"github.com/bryanchriswhite/WindowShot/internal/window/windowtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(l, t, r, b int) window.Rect {
	return window.Rect{Left: l, Top: t, Right: r, Bottom: b}
}

func TestDirectory_RefreshFiltersWindows(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "Terminal", Visible: true, Bounds: rect(0, 0, 800, 600)},
		&windowtest.Window{Handle: 2, Title: "Hidden", Visible: false, Bounds: rect(0, 0, 800, 600)},
		&windowtest.Window{Handle: 3, Title: "", Visible: true, Bounds: rect(0, 0, 800, 600)},
		&windowtest.Window{Handle: 4, Title: "Zero width", Visible: true, Bounds: rect(10, 10, 10, 500)},
		&windowtest.Window{Handle: 5, Title: "Zero height", Visible: true, Bounds: rect(10, 10, 500, 10)},
		&windowtest.Window{Handle: 6, Title: "Inverted", Visible: true, Bounds: rect(50, 50, 10, 10)},
		&windowtest.Window{Handle: 7, Title: "WindowShot - Mozilla Firefox", Visible: true, Bounds: rect(0, 0, 300, 290)},
		&windowtest.Window{Handle: 8, Title: "Editor", Visible: true, Bounds: rect(-20, -20, 100, 100)},
	)

	dir := window.NewDirectory(fake, "WindowShot")
	titles := dir.Refresh()

	assert.Equal(t, []string{"Editor", "Terminal"}, titles)
	assert.Equal(t, 2, dir.Len())

	entry, ok := dir.Lookup("Terminal")
	require.True(t, ok)
	assert.Equal(t, window.Handle(1), entry.Handle)
	assert.Equal(t, rect(0, 0, 800, 600), entry.Bounds)

	_, ok = dir.Lookup("WindowShot - Mozilla Firefox")
	assert.False(t, ok)
}

func TestDirectory_FilterInvariant(t *testing.T) {
	cases := []struct {
		name   string
		w      windowtest.Window
		listed bool
	}{
		{"visible titled sized", windowtest.Window{Title: "a", Visible: true, Bounds: rect(0, 0, 1, 1)}, true},
		{"not visible", windowtest.Window{Title: "a", Bounds: rect(0, 0, 1, 1)}, false},
		{"no title", windowtest.Window{Visible: true, Bounds: rect(0, 0, 1, 1)}, false},
		{"no width", windowtest.Window{Title: "a", Visible: true, Bounds: rect(0, 0, 0, 1)}, false},
		{"no height", windowtest.Window{Title: "a", Visible: true, Bounds: rect(0, 0, 1, 0)}, false},
		{"self", windowtest.Window{Title: "x WindowShot x", Visible: true, Bounds: rect(0, 0, 1, 1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tc.w
			w.Handle = 42
			dir := window.NewDirectory(windowtest.NewFake(&w), "WindowShot")
			titles := dir.Refresh()
			if tc.listed {
				assert.Equal(t, []string{w.Title}, titles)
			} else {
				assert.Empty(t, titles)
			}
		})
	}
}

func TestDirectory_RefreshRebuildsInFull(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "One", Visible: true, Bounds: rect(0, 0, 10, 10)},
	)
	dir := window.NewDirectory(fake, "")
	assert.Equal(t, []string{"One"}, dir.Refresh())

	fake.CloseWindow(1)
	fake.Add(&windowtest.Window{Handle: 2, Title: "Two", Visible: true, Bounds: rect(0, 0, 10, 10)})

	assert.Equal(t, []string{"Two"}, dir.Refresh())
	_, ok := dir.Lookup("One")
	assert.False(t, ok)
}

func TestDirectory_DuplicateTitlesGetNumberedLabels(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "Untitled", Visible: true, Bounds: rect(0, 0, 10, 10)},
		&windowtest.Window{Handle: 2, Title: "Untitled", Visible: true, Bounds: rect(0, 0, 10, 10)},
		&windowtest.Window{Handle: 3, Title: "Untitled", Visible: true, Bounds: rect(0, 0, 10, 10)},
	)
	dir := window.NewDirectory(fake, "")

	assert.Equal(t, []string{"Untitled", "Untitled (2)", "Untitled (3)"}, dir.Refresh())

	e, ok := dir.Lookup("Untitled")
	require.True(t, ok)
	assert.Equal(t, window.Handle(1), e.Handle)

	e, ok = dir.Lookup("Untitled (3)")
	require.True(t, ok)
	assert.Equal(t, window.Handle(3), e.Handle)
}

func TestDirectory_DuplicateLabelDoesNotShadowRealTitle(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "Doc", Visible: true, Bounds: rect(0, 0, 10, 10)},
		&windowtest.Window{Handle: 2, Title: "Doc (2)", Visible: true, Bounds: rect(0, 0, 10, 10)},
		&windowtest.Window{Handle: 3, Title: "Doc", Visible: true, Bounds: rect(0, 0, 10, 10)},
	)
	dir := window.NewDirectory(fake, "")

	titles := dir.Refresh()
	assert.Len(t, titles, 3)

	e, ok := dir.Lookup("Doc (2)")
	require.True(t, ok)
	assert.Equal(t, window.Handle(2), e.Handle)

	e, ok = dir.Lookup("Doc (3)")
	require.True(t, ok)
	assert.Equal(t, window.Handle(3), e.Handle)
}

func TestDirectory_EnumerationErrorYieldsEmptyList(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "One", Visible: true, Bounds: rect(0, 0, 10, 10)},
	)
	dir := window.NewDirectory(fake, "")
	require.Len(t, dir.Refresh(), 1)

	fake.ListErr = errors.New("connection reset")
	assert.Empty(t, dir.Refresh())
	assert.Empty(t, dir.Entries())
}

func TestDirectory_EntriesSorted(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "b", Visible: true, Bounds: rect(0, 0, 10, 10)},
		&windowtest.Window{Handle: 2, Title: "a", Visible: true, Bounds: rect(0, 0, 10, 10)},
	)
	dir := window.NewDirectory(fake, "")
	dir.Refresh()

	entries := dir.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Title)
	assert.Equal(t, "b", entries[1].Title)
}

func TestDirectory_HideSelf(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 1, Title: "Terminal", Visible: true, Bounds: rect(0, 0, 800, 600)},
		&windowtest.Window{Handle: 2, Title: "WindowShot - Firefox", Visible: true, Bounds: rect(0, 0, 800, 600)},
		&windowtest.Window{Handle: 3, Title: "WindowShot - Chromium", Visible: true, Minimized: true, Bounds: rect(0, 0, 800, 600)},
	)
	d := window.NewDirectory(fake, "WindowShot")

	restore := d.HideSelf()
	assert.False(t, fake.IsMinimized(1))
	assert.True(t, fake.IsMinimized(2))
	assert.Equal(t, 1, fake.CountCalls("Hide"))

	restore()
	assert.False(t, fake.IsMinimized(2))
	assert.True(t, fake.IsMinimized(3), "already iconic window stays iconic")
}

func TestDirectory_HideSelfFailuresAreIgnored(t *testing.T) {
	fake := windowtest.NewFake(
		&windowtest.Window{Handle: 2, Title: "WindowShot - Firefox", Visible: true, Bounds: rect(0, 0, 800, 600)},
	)
	fake.HideErr = errors.New("no window manager")
	d := window.NewDirectory(fake, "WindowShot")

	d.HideSelf()()
	assert.Equal(t, 0, fake.CountCalls("Restore"))

	// Without a self title nothing is touched
	fake.HideErr = nil
	window.NewDirectory(fake, "").HideSelf()()
	assert.Equal(t, 1, fake.CountCalls("Hide"))
}
