package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mainbong/file_manager/internal/filesystem"
)

var (
	// ErrNotExist is returned by Rename when the source is missing
	ErrNotExist = errors.New("file does not exist")
	// ErrExist is returned when a destination is already taken
	ErrExist = errors.New("file already exists")
	// ErrSameFile is returned when a transfer would write over its own source
	ErrSameFile = errors.New("source and destination are the same file")
)

// EntryType tags a listed entry
type EntryType string

const (
	EntryDir  EntryType = "DIR"
	EntryFile EntryType = "FILE"
)

// Entry is one row of a directory listing
type Entry struct {
	Type EntryType
	Name string
}

// Manager handles file operations
type Manager struct {
	fs filesystem.FileSystem
}

// NewManager creates a new file manager
func NewManager() *Manager {
	return NewManagerWithFS(filesystem.NewOSFileSystem())
}

// NewManagerWithFS creates a new file manager with a custom FileSystem (for testing)
func NewManagerWithFS(fs filesystem.FileSystem) *Manager {
	return &Manager{fs: fs}
}

// FS returns the underlying file system
func (m *Manager) FS() filesystem.FileSystem {
	return m.fs
}

// List returns the directories of dir followed by its regular files, each
// group ordered by name. Other entry kinds are left out.
func (m *Manager) List(dir string) ([]Entry, error) {
	items, err := m.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var dirs, regular []string
	for _, item := range items {
		switch {
		case item.IsDir():
			dirs = append(dirs, item.Name())
		case item.Type().IsRegular():
			regular = append(regular, item.Name())
		}
	}

	sortNames(dirs)
	sortNames(regular)

	entries := make([]Entry, 0, len(dirs)+len(regular))
	for _, name := range dirs {
		entries = append(entries, Entry{Type: EntryDir, Name: name})
	}
	for _, name := range regular {
		entries = append(entries, Entry{Type: EntryFile, Name: name})
	}
	return entries, nil
}

func sortNames(names []string) {
	c := collate.New(language.Und)
	sort.SliceStable(names, func(i, j int) bool {
		return c.CompareString(names[i], names[j]) < 0
	})
}

// ReadFile reads a file and returns its contents
func (m *Manager) ReadFile(path string) (string, error) {
	data, err := m.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// Exists reports whether any entry is present at path. Errors other than
// "not exist" are returned as is.
func (m *Manager) Exists(path string) (bool, error) {
	_, err := m.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Touch writes an empty file at path, truncating anything already there.
func (m *Manager) Touch(path string) error {
	if err := m.fs.WriteFile(path, []byte{}, 0644); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// Remove deletes a file entry. A symlink is removed itself, whatever it
// points to; directories are refused.
func (m *Manager) Remove(path string) error {
	info, err := m.fs.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("failed to remove file: %s is a directory", path)
	}
	if err := m.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Rename moves oldPath to newPath. The source must exist and the target must not.
func (m *Manager) Rename(oldPath, newPath string) error {
	if !m.exists(oldPath) {
		return ErrNotExist
	}
	if m.exists(newPath) {
		return ErrExist
	}
	if err := m.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// CopyDir creates dstDir and copies the regular files found directly in
// srcDir into it. Subdirectories are skipped. Files copied before a failure
// are left in place. It returns the number of files copied.
func (m *Manager) CopyDir(ctx context.Context, srcDir, dstDir string) (int, error) {
	if err := m.fs.Mkdir(dstDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	items, err := m.fs.ReadDir(srcDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	copied := 0
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		src := filepath.Join(srcDir, item.Name())
		dst := filepath.Join(dstDir, item.Name())
		if _, err := m.copyFile(ctx, src, dst); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// Move streams src into dst and deletes src once the copy completed.
func (m *Manager) Move(ctx context.Context, src, dst string) error {
	if _, err := m.copyFile(ctx, src, dst); err != nil {
		return err
	}
	if err := m.fs.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	return nil
}

// Hash returns the lowercase hex SHA-256 digest of the file contents
func (m *Manager) Hash(path string) (string, error) {
	data, err := m.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Compress streams src through a gzip encoder into dst
func (m *Manager) Compress(ctx context.Context, src, dst string) error {
	return m.pipe(ctx, src, dst, func(r io.Reader, w io.Writer) error {
		zw := gzip.NewWriter(w)
		if _, err := io.Copy(zw, r); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
}

// Decompress streams src through a gzip decoder into dst
func (m *Manager) Decompress(ctx context.Context, src, dst string) error {
	return m.pipe(ctx, src, dst, func(r io.Reader, w io.Writer) error {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		_, err = io.Copy(w, zr)
		return err
	})
}

func (m *Manager) copyFile(ctx context.Context, src, dst string) (int64, error) {
	var n int64
	err := m.pipe(ctx, src, dst, func(r io.Reader, w io.Writer) error {
		var err error
		n, err = io.Copy(w, r)
		return err
	})
	return n, err
}

// pipe opens src, creates dst and runs transform between them. The
// destination is created even if transform fails, matching a stream pipeline.
func (m *Manager) pipe(ctx context.Context, src, dst string, transform func(io.Reader, io.Writer) error) error {
	if m.sameFile(src, dst) {
		return fmt.Errorf("%s -> %s: %w", src, dst, ErrSameFile)
	}

	in, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := m.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if err := transform(&ctxReader{ctx: ctx, r: in}, out); err != nil {
		out.Close()
		return fmt.Errorf("transfer %s -> %s failed: %w", filepath.Base(src), filepath.Base(dst), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination: %w", err)
	}
	return nil
}

func (m *Manager) exists(path string) bool {
	ok, _ := m.Exists(path)
	return ok
}

// ctxReader stops a stream once the context is cancelled
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// sameFile reports whether src and dst name one file, by path or, when
// both exist, by identity (links, differing spellings).
func (m *Manager) sameFile(src, dst string) bool {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return true
	}
	srcInfo, err := m.fs.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := m.fs.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}
