package sfs

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gofs-project/gofs/device"
	"github.com/gofs-project/gofs/filesystem"
	"github.com/gofs-project/gofs/util/bitmap"
)

// MountOptions configures FileSystem.Mount.
type MountOptions struct {
	// Log receives diagnostic trace output for this mount session.
	// Defaults to logrus.StandardLogger().
	Log logrus.FieldLogger
}

// FileSystem is a single mounted instance of the on-disk filesystem. Its
// zero value is an unmounted filesystem ready to have Mount called on it.
type FileSystem struct {
	dev  *device.Device
	sb   superblock
	bm   *bitmap.Bitmap
	log  logrus.FieldLogger
	sess uuid.UUID
}

var _ filesystem.FileSystem = (*FileSystem)(nil)

// Format writes a fresh superblock and zeroes every remaining block on
// dev. It fails (returns false, nil) if dev reports itself mounted; it
// returns a non-nil error only for a device I/O fault, which is fatal
// and not retried.
func Format(dev *device.Device) (bool, error) {
	if dev.Mounted() {
		return false, nil
	}

	n := dev.Size()
	k := inodeBlocksFor(n)
	sb := superblock{
		Magic:       MagicNumber,
		Blocks:      n,
		InodeBlocks: k,
		Inodes:      k * InodesPerBlock,
	}

	if err := dev.Write(0, sb.encode()); err != nil {
		return false, fmt.Errorf("format: write superblock: %w", err)
	}

	zero := make([]byte, BlockSize)
	for i := uint32(1); i < n; i++ {
		if err := dev.Write(i, zero); err != nil {
			return false, fmt.Errorf("format: zero block %d: %w", i, err)
		}
	}

	return true, nil
}

// Mount validates dev's superblock and, on success, attaches fs to dev and
// rebuilds the in-memory free-block bitmap. It fails (returns false, nil)
// if fs is already mounted, if dev reports itself already mounted, or if
// superblock validation fails.
func (fs *FileSystem) Mount(dev *device.Device, opts MountOptions) (bool, error) {
	if fs.dev != nil {
		return false, nil
	}
	if dev.Mounted() {
		return false, nil
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sess := uuid.New()
	log = log.WithFields(logrus.Fields{"component": "sfs", "mount": sess})

	buf := make([]byte, BlockSize)
	if err := dev.Read(0, buf); err != nil {
		return false, fmt.Errorf("mount: read superblock: %w", err)
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		return false, fmt.Errorf("mount: %w", err)
	}

	if sb.Magic != MagicNumber {
		log.Debug("mount rejected: bad magic number")
		return false, nil
	}
	if sb.Blocks != dev.Size() {
		log.Debug("mount rejected: block count mismatch")
		return false, nil
	}
	if sb.InodeBlocks != inodeBlocksFor(sb.Blocks) {
		log.Debug("mount rejected: inode block count mismatch")
		return false, nil
	}
	if sb.Inodes != sb.InodeBlocks*InodesPerBlock {
		log.Debug("mount rejected: inode count mismatch")
		return false, nil
	}

	bm, err := buildBitmap(dev, sb)
	if err != nil {
		return false, fmt.Errorf("mount: %w", err)
	}

	dev.Mount()
	fs.dev = dev
	fs.sb = sb
	fs.bm = bm
	fs.log = log
	fs.sess = sess

	log.WithFields(logrus.Fields{
		"blocks":       sb.Blocks,
		"inode_blocks": sb.InodeBlocks,
		"inodes":       sb.Inodes,
		"used_blocks":  bm.CountSet(),
	}).Debug("mounted")

	return true, nil
}

// Unmount detaches fs from its device, decrementing the device's mount
// depth and discarding the in-memory bitmap. Calling Unmount on an
// unmounted FileSystem is a no-op.
func (fs *FileSystem) Unmount() {
	if fs.dev == nil {
		return
	}
	fs.dev.Unmount()
	fs.dev = nil
	fs.bm = nil
}

// Mounted reports whether fs currently has a device attached.
func (fs *FileSystem) Mounted() bool {
	return fs.dev != nil
}

func (fs *FileSystem) requireMounted() error {
	if fs.dev == nil {
		return filesystem.ErrNotMounted
	}
	return nil
}

// Debug prints the superblock summary and every valid inode's size, direct
// block list, indirect block address, and indirect data-block list
// (stopping at the first zero pointer) to w. It may be called against any
// formatted device, mounted or not, since it only reads.
func Debug(w io.Writer, dev *device.Device) error {
	buf := make([]byte, BlockSize)
	if err := dev.Read(0, buf); err != nil {
		return fmt.Errorf("debug: read superblock: %w", err)
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}

	fmt.Fprintf(w, "SuperBlock:\n")
	if sb.Magic == MagicNumber {
		fmt.Fprintf(w, "    magic number is valid\n")
	} else {
		fmt.Fprintf(w, "    magic number is not valid\n")
	}
	fmt.Fprintf(w, "    %d blocks\n", sb.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", sb.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sb.Inodes)

	for blk := uint32(1); blk <= sb.InodeBlocks; blk++ {
		ibuf := make([]byte, BlockSize)
		if err := dev.Read(blk, ibuf); err != nil {
			return fmt.Errorf("debug: read inode block %d: %w", blk, err)
		}
		inodes := decodeInodeBlock(ibuf)
		for slot, in := range inodes {
			if !in.valid() {
				continue
			}
			fmt.Fprintf(w, "Inode %d:\n", inumberFor(blk, slot))
			fmt.Fprintf(w, "    size: %d bytes\n", in.Size)
			fmt.Fprintf(w, "    direct blocks:")
			for _, d := range in.Direct {
				if d != 0 {
					fmt.Fprintf(w, " %d", d)
				}
			}
			fmt.Fprintf(w, "\n")
			if in.Indirect != 0 {
				fmt.Fprintf(w, "    indirect block: %d\n", in.Indirect)
				pbuf := make([]byte, BlockSize)
				if err := dev.Read(in.Indirect, pbuf); err != nil {
					return fmt.Errorf("debug: read indirect block %d: %w", in.Indirect, err)
				}
				ptrs := decodePointerBlock(pbuf)
				fmt.Fprintf(w, "    indirect data blocks:")
				for _, p := range ptrs {
					if p == 0 {
						break
					}
					fmt.Fprintf(w, " %d", p)
				}
				fmt.Fprintf(w, "\n")
			}
		}
	}

	return nil
}
