package filesystem

import (
	"io"
	"io/fs"
	"os"
)

// FileSystem abstracts file system operations for testability
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	Mkdir(path string, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	Chdir(path string) error
	Getwd() (string, error)
}

// OSFileSystem implements FileSystem using the real OS file system
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem instance
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (fs *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fs *OSFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Lstat describes a symlink itself rather than its target
func (fs *OSFileSystem) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

func (fs *OSFileSystem) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (fs *OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (fs *OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (fs *OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (fs *OSFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Create truncates an existing file, like os.Create
func (fs *OSFileSystem) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (fs *OSFileSystem) Chdir(path string) error {
	return os.Chdir(path)
}

func (fs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}
