// Package device implements the block device consumed by filesystem/sfs: a
// fixed number of equally-sized blocks, synchronous read/write, and a
// reference-counted mount state. It is the external collaborator described
// in the filesystem specification, not part of the hard core, but something
// real has to sit underneath the filesystem for it to operate on.
package device

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gofs-project/gofs/backend"
	"github.com/gofs-project/gofs/backend/memory"
)

// BlockSize is the fixed size, in bytes, of every block on the device.
const BlockSize = 4096

// Errors returned by Device methods.
var (
	ErrOutOfRange  = fmt.Errorf("block number out of range")
	ErrNilBuffer   = fmt.Errorf("nil or undersized buffer")
	ErrSizeInvalid = fmt.Errorf("device size is not a whole number of blocks")
)

// Stats tracks operational counters for a Device. It mirrors the Reads,
// Writes and Mounts fields the original disk emulator tracked for its own
// destructor report; here they are queryable instead of printed on close.
type Stats struct {
	Reads  uint64
	Writes uint64
	Mounts uint64
}

// Options configures a Device at construction time.
type Options struct {
	// Log receives diagnostic trace output. Defaults to logrus.StandardLogger().
	Log logrus.FieldLogger
}

// Device is a fixed-size array of BlockSize-byte blocks backed by a
// backend.Storage. It tracks its own mount depth the way a real block
// device's driver would, and serves synchronous, whole-block reads and
// writes.
type Device struct {
	mu      sync.Mutex
	storage backend.Storage
	blocks  uint32
	mounts  uint64
	stats   Stats
	log     logrus.FieldLogger
	id      uuid.UUID
	closer  func() error
}

// NewMemory creates a Device of nblocks blocks backed entirely in memory.
// Useful for tests and ephemeral filesystems.
func NewMemory(nblocks uint32, opts Options) *Device {
	store := memory.New(int64(nblocks) * BlockSize)
	return newDevice(store, nblocks, opts, nil)
}

func newDevice(storage backend.Storage, nblocks uint32, opts Options, closer func() error) *Device {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Device{
		storage: storage,
		blocks:  nblocks,
		log:     log,
		id:      uuid.New(),
		closer:  closer,
	}
}

// Size returns the number of blocks on the device.
func (d *Device) Size() uint32 {
	return d.blocks
}

// Mounted reports whether the device's mount depth is greater than zero.
func (d *Device) Mounted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mounts > 0
}

// Mount increments the device's mount depth.
func (d *Device) Mount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounts++
	d.stats.Mounts++
	d.log.WithField("device", d.id).Debug("device mounted")
}

// Unmount decrements the device's mount depth, floored at zero.
func (d *Device) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounts > 0 {
		d.mounts--
	}
	d.log.WithField("device", d.id).Debug("device unmounted")
}

// Read synchronously reads block i into buf, which must be at least
// BlockSize bytes.
func (d *Device) Read(i uint32, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i >= d.blocks {
		return fmt.Errorf("read block %d: %w", i, ErrOutOfRange)
	}
	if len(buf) < BlockSize {
		return fmt.Errorf("read block %d: %w", i, ErrNilBuffer)
	}
	n, err := d.storage.ReadAt(buf[:BlockSize], int64(i)*BlockSize)
	if err != nil && n < BlockSize {
		return fmt.Errorf("read block %d: %w", i, err)
	}
	d.stats.Reads++
	return nil
}

// Write synchronously writes BlockSize bytes from buf to block i.
func (d *Device) Write(i uint32, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i >= d.blocks {
		return fmt.Errorf("write block %d: %w", i, ErrOutOfRange)
	}
	if len(buf) < BlockSize {
		return fmt.Errorf("write block %d: %w", i, ErrNilBuffer)
	}
	w, err := d.storage.Writable()
	if err != nil {
		return fmt.Errorf("write block %d: %w", i, err)
	}
	if _, err := w.WriteAt(buf[:BlockSize], int64(i)*BlockSize); err != nil {
		return fmt.Errorf("write block %d: %w", i, err)
	}
	d.stats.Writes++
	return nil
}

// Stats returns a snapshot of the device's operational counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close releases any underlying resource (e.g. an open file and its
// advisory lock). It does not check the mount depth; callers are expected
// to Unmount first.
func (d *Device) Close() error {
	d.mu.Lock()
	closer := d.closer
	d.mu.Unlock()
	if closer != nil {
		return closer()
	}
	return d.storage.Close()
}
