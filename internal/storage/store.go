package storage

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/spf13/afero"
)

// maxCreateAttempts bounds re-allocation when another writer claims the
// allocated name between the scan and the create.
const maxCreateAttempts = 8

// SavedFile is a PNG written by Store.
type SavedFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Store writes captures as PNG files under allocated names.
type Store struct {
	fs    afero.Fs
	alloc *Allocator
}

// NewStore creates a store over fs using alloc for naming.
func NewStore(fs afero.Fs, alloc *Allocator) *Store {
	return &Store{fs: fs, alloc: alloc}
}

// NewOsStore is a Store on the real filesystem.
func NewOsStore(prefix string) *Store {
	fs := afero.NewOsFs()
	return NewStore(fs, NewAllocator(fs, prefix))
}

// Fs returns the filesystem the store writes to.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Save encodes img as PNG into dir. The file is created exclusively, so an
// existing file is never overwritten, and it is removed again if encoding
// fails.
func (s *Store) Save(dir string, img image.Image) (SavedFile, error) {
	log := logger.WithComponent("storage")

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name, err := s.alloc.Allocate(dir)
		if err != nil {
			return SavedFile{}, err
		}
		path := filepath.Join(dir, name)

		f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			log.Debug().Str("path", path).Msg("Name taken after allocation, retrying")
			continue
		}
		if err != nil {
			return SavedFile{}, shoterrors.NewSaveFailed(path, err)
		}

		if err := encode(f, img); err != nil {
			if rmErr := s.fs.Remove(path); rmErr != nil {
				log.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial file")
			}
			return SavedFile{}, shoterrors.NewSaveFailed(path, err)
		}

		log.Info().Str("path", path).Msg("Capture saved")
		return SavedFile{Name: name, Path: path}, nil
	}

	return SavedFile{}, shoterrors.NewSaveFailed(dir,
		fmt.Errorf("no free file name after %d attempts", maxCreateAttempts))
}

func encode(f afero.File, img image.Image) error {
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
