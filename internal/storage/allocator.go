package storage

import (
	"fmt"
	"os"
	"path/filepath"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/spf13/afero"
)

// DefaultPrefix is the file name stem used when none is configured.
const DefaultPrefix = "test"

// Extension is the fixed output extension.
const Extension = ".png"

// Allocator picks the lowest-numbered unused <prefix>N.png name in a
// directory. It holds no state between calls; the directory contents are the
// only input.
type Allocator struct {
	fs     afero.Fs
	prefix string
}

// NewAllocator creates an allocator over fs. An empty prefix means
// DefaultPrefix.
func NewAllocator(fs afero.Fs, prefix string) *Allocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Allocator{fs: fs, prefix: prefix}
}

// Name returns the candidate name for index i.
func (a *Allocator) Name(i int) string {
	return fmt.Sprintf("%s%d%s", a.prefix, i, Extension)
}

// Allocate returns the first name, counting from 1, with no existing file in
// dir. The scan is linear in the number of files already saved.
func (a *Allocator) Allocate(dir string) (string, error) {
	for i := 1; ; i++ {
		name := a.Name(i)
		path := filepath.Join(dir, name)

		_, err := a.fs.Stat(path)
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", shoterrors.NewSaveFailed(path, err)
		}
	}
}
