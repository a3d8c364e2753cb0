package window

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bryanchriswhite/WindowShot/internal/logger"
)

// Entry is a capturable window as listed by the Directory.
type Entry struct {
	Title  string `json:"title"`
	Handle Handle `json:"handle"`
	Bounds Rect   `json:"bounds"`
}

// Directory keeps the title to window mapping used to resolve a user's
// selection. It is rebuilt in full on every Refresh.
type Directory struct {
	sys       System
	selfTitle string

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewDirectory creates a directory over sys. Windows whose title contains
// selfTitle are never listed.
func NewDirectory(sys System, selfTitle string) *Directory {
	return &Directory{
		sys:       sys,
		selfTitle: selfTitle,
		entries:   make(map[string]Entry),
	}
}

// Refresh re-enumerates windows and returns the sorted titles. An
// enumeration failure is logged and produces an empty directory.
func (d *Directory) Refresh() []string {
	log := logger.WithComponent("window-directory")

	infos, err := d.sys.ListVisible()
	if err != nil {
		log.Warn().Err(err).Str("backend", d.sys.Name()).Msg("Window enumeration failed")
		infos = nil
	}

	entries := make(map[string]Entry, len(infos))
	seen := make(map[string]int)
	skipped := 0

	for _, info := range infos {
		if !d.accept(info) {
			skipped++
			continue
		}

		// Later windows sharing a title get a numbered label so every window
		// stays selectable.
		label := info.Title
		for n := seen[info.Title] + 1; ; n++ {
			if n > 1 {
				label = fmt.Sprintf("%s (%d)", info.Title, n)
			}
			if _, taken := entries[label]; !taken {
				seen[info.Title] = n
				break
			}
		}

		entries[label] = Entry{
			Title:  label,
			Handle: info.Handle,
			Bounds: info.Bounds,
		}
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()

	log.Debug().
		Int("listed", len(entries)).
		Int("skipped", skipped).
		Msg("Window directory refreshed")

	return d.Titles()
}

// accept applies the listing filter: visible, titled, positive area and
// not one of our own windows.
func (d *Directory) accept(info Info) bool {
	if !info.Visible || info.Title == "" {
		return false
	}
	if info.Bounds.Empty() {
		return false
	}
	return !d.isSelf(info.Title)
}

func (d *Directory) isSelf(title string) bool {
	return d.selfTitle != "" && strings.Contains(title, d.selfTitle)
}

// HideSelf iconifies our own on-screen windows so a failed raise cannot leave
// them above the capture target. The returned func restores exactly the
// windows it hid.
func (d *Directory) HideSelf() (restore func()) {
	log := logger.WithComponent("window-directory")
	if d.selfTitle == "" {
		return func() {}
	}

	infos, err := d.sys.ListVisible()
	if err != nil {
		log.Debug().Err(err).Msg("HideSelf: enumeration failed")
		return func() {}
	}

	var hidden []Handle
	for _, info := range infos {
		if !info.Visible || !d.isSelf(info.Title) {
			continue
		}
		if minimized, err := d.sys.Minimized(info.Handle); err != nil || minimized {
			continue
		}
		if err := d.sys.Hide(info.Handle); err != nil {
			log.Debug().Err(err).Stringer("window", info.Handle).Msg("HideSelf: iconify refused")
			continue
		}
		hidden = append(hidden, info.Handle)
	}

	return func() {
		for _, h := range hidden {
			if err := d.sys.Restore(h); err != nil {
				log.Warn().Err(err).Stringer("window", h).Msg("Failed to restore own window")
			}
		}
	}
}

// Titles returns the titles of the last refresh, sorted lexicographically.
func (d *Directory) Titles() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	titles := make([]string, 0, len(d.entries))
	for title := range d.entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Entries returns the entries of the last refresh sorted by title.
func (d *Directory) Entries() []Entry {
	titles := d.Titles()

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Entry, 0, len(titles))
	for _, title := range titles {
		if e, ok := d.entries[title]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry listed under title.
func (d *Directory) Lookup(title string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[title]
	return e, ok
}

// Len returns the number of listed windows.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
