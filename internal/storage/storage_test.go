package storage

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dir = "/shots"

func touch(t *testing.T, fs afero.Fs, names ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{R: 0xff, A: 0xff})
	return img
}

func TestAllocate_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs)

	name, err := NewAllocator(fs, "").Allocate(dir)
	require.NoError(t, err)
	assert.Equal(t, "test1.png", name)
}

func TestAllocate_LowestMissingIndex(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"gap in the middle", []string{"test1.png", "test2.png", "test4.png"}, "test3.png"},
		{"gap at start", []string{"test2.png", "test3.png"}, "test1.png"},
		{"contiguous", []string{"test1.png", "test2.png", "test3.png"}, "test4.png"},
		{"unrelated files", []string{"shot1.png", "test1.jpg", "notes.txt"}, "test1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			touch(t, fs, tt.existing...)

			name, err := NewAllocator(fs, "test").Allocate(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestAllocate_CustomPrefix(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "cap1.png")

	name, err := NewAllocator(fs, "cap").Allocate(dir)
	require.NoError(t, err)
	assert.Equal(t, "cap2.png", name)
}

type statErrFs struct {
	afero.Fs
}

func (s statErrFs) Stat(name string) (os.FileInfo, error) {
	return nil, errors.New("permission denied")
}

func TestAllocate_StatError(t *testing.T) {
	_, err := NewAllocator(statErrFs{afero.NewMemMapFs()}, "").Allocate(dir)
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrSaveFailed))
}

func TestStore_SaveWritesPNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs)
	store := NewStore(fs, NewAllocator(fs, ""))

	saved, err := store.Save(dir, testImage())
	require.NoError(t, err)
	assert.Equal(t, "test1.png", saved.Name)
	assert.Equal(t, filepath.Join(dir, "test1.png"), saved.Path)

	f, err := fs.Open(saved.Path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())
}

func TestStore_NeverReturnsSameNameTwice(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "test2.png")
	store := NewStore(fs, NewAllocator(fs, ""))

	first, err := store.Save(dir, testImage())
	require.NoError(t, err)
	second, err := store.Save(dir, testImage())
	require.NoError(t, err)

	assert.Equal(t, "test1.png", first.Name)
	assert.Equal(t, "test3.png", second.Name)

	next, err := NewAllocator(fs, "").Allocate(dir)
	require.NoError(t, err)
	assert.Equal(t, "test4.png", next)
}

func TestStore_MissingDirectory(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := NewStore(fs, NewAllocator(fs, ""))

	_, err := store.Save("/nowhere", testImage())
	require.Error(t, err)
	assert.True(t, shoterrors.Is(err, shoterrors.ErrSaveFailed))
}

func TestStore_OnDisk(t *testing.T) {
	tmp := t.TempDir()
	store := NewOsStore("")

	saved, err := store.Save(tmp, testImage())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tmp, "test1.png"))
	assert.Equal(t, "test1.png", saved.Name)
}
