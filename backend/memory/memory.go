// Package memory provides an in-memory backend.Storage, useful for tests and
// for callers who want a scratch block device without touching the host
// filesystem.
package memory

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/gofs-project/gofs/backend"
)

// Storage is a backend.Storage backed by a plain byte slice. It is not safe
// for concurrent use, matching the single-caller assumption of the rest of
// this module.
type Storage struct {
	data   []byte
	closed bool
}

// New creates an in-memory backend.Storage of the given size in bytes, all
// zero-filled.
func New(size int64) *Storage {
	if size < 0 {
		size = 0
	}
	return &Storage{data: make([]byte, size)}
}

var _ backend.Storage = (*Storage)(nil)

func (s *Storage) Stat() (fs.FileInfo, error) {
	return memInfo{size: int64(len(s.data))}, nil
}

func (s *Storage) Read(b []byte) (int, error) {
	return s.ReadAt(b, 0)
}

func (s *Storage) Close() error {
	s.closed = true
	return nil
}

func (s *Storage) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Storage) WriteAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	end := off + int64(len(p))
	if end > int64(len(s.data)) {
		return 0, io.ErrShortWrite
	}
	return copy(s.data[off:end], p), nil
}

func (s *Storage) Seek(offset int64, whence int) (int64, error) {
	return 0, backend.ErrNotSuitable
}

// Sys has no underlying OS file for an in-memory backend.
func (s *Storage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

// Writable always succeeds: an in-memory backend is never read-only.
func (s *Storage) Writable() (backend.WritableFile, error) {
	return s, nil
}

type memInfo struct{ size int64 }

func (m memInfo) Name() string       { return "" }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return 0o600 }
func (m memInfo) ModTime() time.Time { return time.Time{} }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() any           { return nil }
