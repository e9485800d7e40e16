package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"
)

// MockFileSystem is a mock implementation of FileSystem for testing
type MockFileSystem struct {
	files       map[string][]byte
	dirs        map[string]bool
	filePerms   map[string]os.FileMode
	dirPerms    map[string]os.FileMode
	cwd         string
	mu          sync.RWMutex
	readErrors  map[string]error
	writeErrors map[string]error
	statErrors  map[string]error
}

// NewMockFileSystem creates a new MockFileSystem instance rooted at "/"
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:       make(map[string][]byte),
		dirs:        map[string]bool{"/": true},
		filePerms:   make(map[string]os.FileMode),
		dirPerms:    map[string]os.FileMode{"/": 0755},
		cwd:         "/",
		readErrors:  make(map[string]error),
		writeErrors: make(map[string]error),
		statErrors:  make(map[string]error),
	}
}

// SetReadError sets an error to return when reading a specific file
func (m *MockFileSystem) SetReadError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrors[path] = err
}

// SetWriteError sets an error to return when writing a specific file
func (m *MockFileSystem) SetWriteError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErrors[path] = err
}

// SetStatError sets an error to return when stating a specific path
func (m *MockFileSystem) SetStatError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErrors[path] = err
}

// AddFile adds a file to the mock filesystem
func (m *MockFileSystem) AddFile(path string, data []byte, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	m.filePerms[path] = perm
}

// AddDir adds a directory to the mock filesystem
func (m *MockFileSystem) AddDir(path string, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	m.dirPerms[path] = perm
}

// GetFile returns the content of a file
func (m *MockFileSystem) GetFile(path string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files[path]
}

// HasFile reports whether a regular file exists at path
func (m *MockFileSystem) HasFile(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.readErrors[path]; ok {
		return nil, err
	}

	if data, ok := m.files[path]; ok {
		return data, nil
	}
	if m.dirs[path] {
		return nil, pathError("read", path, syscall.EISDIR)
	}

	return nil, pathError("open", path, fs.ErrNotExist)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.writeErrors[path]; ok {
		return err
	}

	m.files[path] = data
	m.filePerms[path] = perm
	return nil
}

func (m *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stat(path)
}

// Lstat is Stat: the mock has no symlinks
func (m *MockFileSystem) Lstat(path string) (os.FileInfo, error) {
	return m.Stat(path)
}

func (m *MockFileSystem) stat(path string) (os.FileInfo, error) {
	if err, ok := m.statErrors[path]; ok {
		return nil, err
	}

	if data, ok := m.files[path]; ok {
		return &mockFileInfo{
			name:  filepath.Base(path),
			size:  int64(len(data)),
			mode:  m.filePerms[path],
			isDir: false,
		}, nil
	}

	if _, ok := m.dirs[path]; ok {
		return &mockFileInfo{
			name:  filepath.Base(path),
			size:  0,
			mode:  m.dirPerms[path] | fs.ModeDir,
			isDir: true,
		}, nil
	}

	return nil, pathError("stat", path, fs.ErrNotExist)
}

func (m *MockFileSystem) Mkdir(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.stat(path); err == nil {
		return pathError("mkdir", path, fs.ErrExist)
	}
	if !m.dirs[filepath.Dir(path)] {
		return pathError("mkdir", path, fs.ErrNotExist)
	}
	m.dirs[path] = true
	m.dirPerms[path] = perm
	return nil
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := path; !m.dirs[p]; p = filepath.Dir(p) {
		m.dirs[p] = true
		m.dirPerms[p] = perm
	}
	return nil
}

func (m *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.readErrors[path]; ok {
		return nil, err
	}

	var entries []fs.DirEntry
	seen := make(map[string]bool)

	// Normalize path
	path = filepath.Clean(path)
	if path == "." {
		path = ""
	}

	for filePath := range m.files {
		dir := filepath.Dir(filepath.Clean(filePath))
		if dir == path {
			name := filepath.Base(filePath)
			if !seen[name] {
				entries = append(entries, &mockDirEntry{
					name:  name,
					isDir: false,
				})
				seen[name] = true
			}
		}
	}

	for dirPath := range m.dirs {
		dir := filepath.Dir(filepath.Clean(dirPath))
		if dir == path && dirPath != path {
			name := filepath.Base(dirPath)
			if !seen[name] {
				entries = append(entries, &mockDirEntry{
					name:  name,
					isDir: true,
				})
				seen[name] = true
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.writeErrors[path]; ok {
		return err
	}
	if _, err := m.stat(path); err != nil {
		return pathError("remove", path, fs.ErrNotExist)
	}
	delete(m.files, path)
	delete(m.dirs, path)
	delete(m.filePerms, path)
	delete(m.dirPerms, path)
	return nil
}

func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.files[oldPath]; ok {
		m.files[newPath] = data
		m.filePerms[newPath] = m.filePerms[oldPath]
		delete(m.files, oldPath)
		delete(m.filePerms, oldPath)
		return nil
	}
	if m.dirs[oldPath] {
		m.dirs[newPath] = true
		m.dirPerms[newPath] = m.dirPerms[oldPath]
		delete(m.dirs, oldPath)
		delete(m.dirPerms, oldPath)
		return nil
	}
	return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) Open(path string) (io.ReadCloser, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create registers an empty file immediately; written bytes land on Close.
func (m *MockFileSystem) Create(path string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.writeErrors[path]; ok {
		return nil, err
	}
	if m.dirs[path] {
		return nil, pathError("open", path, syscall.EISDIR)
	}
	if !m.dirs[filepath.Dir(path)] {
		return nil, pathError("open", path, fs.ErrNotExist)
	}
	m.files[path] = []byte{}
	m.filePerms[path] = 0644
	return &mockFile{fs: m, path: path}, nil
}

func (m *MockFileSystem) Chdir(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirs[path] {
		m.cwd = path
		return nil
	}
	if _, ok := m.files[path]; ok {
		return pathError("chdir", path, syscall.ENOTDIR)
	}
	return pathError("chdir", path, fs.ErrNotExist)
}

func (m *MockFileSystem) Getwd() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cwd, nil
}

func pathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// mockFile buffers writes for Create
type mockFile struct {
	fs   *MockFileSystem
	path string
	buf  bytes.Buffer
}

func (f *mockFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *mockFile) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	f.fs.files[f.path] = append([]byte(nil), f.buf.Bytes()...)
	return nil
}

// mockFileInfo implements os.FileInfo
type mockFileInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	name  string
	isDir bool
}

func (m *mockDirEntry) Name() string { return m.name }
func (m *mockDirEntry) IsDir() bool  { return m.isDir }

func (m *mockDirEntry) Type() fs.FileMode {
	if m.isDir {
		return fs.ModeDir
	}
	return 0
}

func (m *mockDirEntry) Info() (fs.FileInfo, error) {
	mode := fs.FileMode(0644)
	if m.isDir {
		mode = fs.ModeDir | 0755
	}
	return &mockFileInfo{name: m.name, mode: mode, isDir: m.isDir}, nil
}
