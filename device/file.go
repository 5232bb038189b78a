package device

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gofs-project/gofs/backend"
	"github.com/gofs-project/gofs/backend/file"
)

// CreatePath creates a new file-backed device image of nblocks blocks at
// path. The path must not already exist. The new image is exclusively
// locked for the lifetime of the returned Device (best-effort, advisory,
// unix only; see lockFile).
func CreatePath(path string, nblocks uint32, opts Options) (*Device, error) {
	if nblocks == 0 {
		return nil, fmt.Errorf("create %s: %w", path, ErrSizeInvalid)
	}
	size := int64(nblocks) * BlockSize
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return openFileDevice(f, path, nblocks, opts, true)
}

// OpenPath opens an existing file-backed device image of nblocks blocks at
// path. nblocks must match the file's actual size in blocks.
func OpenPath(path string, nblocks uint32, opts Options) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if info.Size() != int64(nblocks)*BlockSize {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, ErrSizeInvalid)
	}
	return openFileDevice(f, path, nblocks, opts, false)
}

func openFileDevice(f *os.File, path string, nblocks uint32, opts Options, freshlyCreated bool) (*Device, error) {
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var storage backend.Storage = file.New(f, false)
	d := newDevice(storage, nblocks, Options{Log: log}, func() error {
		unlockFile(f)
		return f.Close()
	})

	if freshlyCreated {
		if err := tagImage(path); err != nil {
			log.WithError(err).WithField("path", path).Debug("could not tag image with identifying xattr")
		}
	}

	return d, nil
}

// ImageInfo reports host-level facts about a file-backed device image: its
// size and, where the host filesystem supports it, the file's own
// modification and (if available) birth time. These are facts about the
// backing file, not about any file stored inside the gofs filesystem -
// per-file timestamps inside the filesystem remain out of scope.
type ImageInfo struct {
	Path      string
	SizeBytes int64
	Blocks    uint32
	ModTime   string
	BirthTime string
	HasBirth  bool
	Tagged    bool
}

// Inspect reports ImageInfo for a file-backed device image without mounting
// it or otherwise disturbing its lock state.
func Inspect(path string) (ImageInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	ii := statTimes(path, info.Size())
	ii.Path = path
	ii.Blocks = uint32(info.Size() / BlockSize)
	ii.Tagged = probeImage(path)
	return ii, nil
}
