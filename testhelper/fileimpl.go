// Package testhelper provides small backend.Storage stand-ins for
// exercising device error paths without touching a real file or an in-memory
// buffer that can't be made to fail on demand.
package testhelper

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/gofs-project/gofs/backend"
)

type reader func(b []byte, offset int64) (int, error)
type writer func(b []byte, offset int64) (int, error)

// FileImpl is a backend.Storage whose ReadAt/WriteAt are supplied by the
// caller, so tests can inject I/O faults at specific offsets.
type FileImpl struct {
	Reader reader
	Writer writer
}

var _ backend.Storage = (*FileImpl)(nil)

func (f *FileImpl) Stat() (fs.FileInfo, error) {
	return nil, nil
}

func (f *FileImpl) Read(b []byte) (int, error) {
	return f.Reader(b, 0)
}

func (f *FileImpl) Close() error {
	return nil
}

// ReadAt reads at a particular offset.
func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) {
	return f.Reader(b, offset)
}

// WriteAt writes at a particular offset.
func (f *FileImpl) WriteAt(b []byte, offset int64) (int, error) {
	return f.Writer(b, offset)
}

// Seek is not supported; FileImpl is only used through ReadAt/WriteAt.
func (f *FileImpl) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("testhelper: FileImpl does not implement Seek")
}

func (f *FileImpl) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (f *FileImpl) Writable() (backend.WritableFile, error) {
	return f, nil
}
