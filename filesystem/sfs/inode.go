package sfs

import (
	"fmt"

	"github.com/gofs-project/gofs/filesystem"
)

// Create scans inodes in ascending inumber order for the first free slot,
// marks it valid and empty, persists the containing inode block, and
// returns its inumber. It returns filesystem.FAILURE if the inode table is
// full; no in-memory state is modified in that case.
func (fs *FileSystem) Create() (int64, error) {
	if err := fs.requireMounted(); err != nil {
		return filesystem.FAILURE, err
	}

	for blk := uint32(1); blk <= fs.sb.InodeBlocks; blk++ {
		buf := make([]byte, BlockSize)
		if err := fs.dev.Read(blk, buf); err != nil {
			return filesystem.FAILURE, fmt.Errorf("create: read inode block %d: %w", blk, err)
		}
		inodes := decodeInodeBlock(buf)
		for slot, in := range inodes {
			if in.valid() {
				continue
			}
			fresh := inode{Valid: 1}
			fresh.encodeInto(buf, slot*inodeRecordSize)
			if err := fs.dev.Write(blk, buf); err != nil {
				return filesystem.FAILURE, fmt.Errorf("create: write inode block %d: %w", blk, err)
			}
			inumber := inumberFor(blk, slot)
			fs.log.WithField("inumber", inumber).Debug("created inode")
			return inumber, nil
		}
	}

	return filesystem.FAILURE, nil
}

// Remove invalidates the inode named by inumber, freeing every block it
// reaches: all populated direct pointers, every pointer in its indirect
// block, and the indirect block itself. It returns false if inumber is
// out of range or already free.
func (fs *FileSystem) Remove(inumber int64) (bool, error) {
	if err := fs.requireMounted(); err != nil {
		return false, err
	}
	if !fs.validInumber(inumber) {
		return false, nil
	}

	blk, slot := inodeBlockAndSlot(inumber)
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(blk, buf); err != nil {
		return false, fmt.Errorf("remove: read inode block %d: %w", blk, err)
	}
	in := decodeInodeAt(buf, slot*inodeRecordSize)
	if !in.valid() {
		return false, nil
	}

	for _, d := range in.Direct {
		if d != 0 {
			if err := fs.bm.Clear(int(d)); err != nil {
				return false, fmt.Errorf("remove: free direct block %d: %w", d, err)
			}
		}
	}
	if in.Indirect != 0 {
		ibuf := make([]byte, BlockSize)
		if err := fs.dev.Read(in.Indirect, ibuf); err != nil {
			return false, fmt.Errorf("remove: read indirect block %d: %w", in.Indirect, err)
		}
		ptrs := decodePointerBlock(ibuf)
		for _, p := range ptrs {
			if p == 0 {
				break
			}
			if err := fs.bm.Clear(int(p)); err != nil {
				return false, fmt.Errorf("remove: free indirect data block %d: %w", p, err)
			}
		}
		if err := fs.bm.Clear(int(in.Indirect)); err != nil {
			return false, fmt.Errorf("remove: free indirect block %d: %w", in.Indirect, err)
		}
	}

	cleared := inode{Valid: 0}
	cleared.encodeInto(buf, slot*inodeRecordSize)
	if err := fs.dev.Write(blk, buf); err != nil {
		return false, fmt.Errorf("remove: write inode block %d: %w", blk, err)
	}

	fs.log.WithField("inumber", inumber).Debug("removed inode")
	return true, nil
}

// Stat returns the size in bytes of the inode named by inumber, or
// filesystem.FAILURE if inumber is out of range or the inode is free.
func (fs *FileSystem) Stat(inumber int64) (int64, error) {
	if err := fs.requireMounted(); err != nil {
		return filesystem.FAILURE, err
	}
	in, ok, err := fs.loadInode(inumber)
	if err != nil {
		return filesystem.FAILURE, err
	}
	if !ok {
		return filesystem.FAILURE, nil
	}
	return int64(in.Size), nil
}

// validInumber reports whether inumber names a slot that exists in the
// inode table, without regard to whether that slot is currently valid.
func (fs *FileSystem) validInumber(inumber int64) bool {
	return inumber >= 0 && inumber < int64(fs.sb.Inodes)
}

// loadInode reads the inode named by inumber. ok is false if inumber is
// out of range or the inode is free.
func (fs *FileSystem) loadInode(inumber int64) (inode, bool, error) {
	if !fs.validInumber(inumber) {
		return inode{}, false, nil
	}
	blk, slot := inodeBlockAndSlot(inumber)
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(blk, buf); err != nil {
		return inode{}, false, fmt.Errorf("read inode block %d: %w", blk, err)
	}
	in := decodeInodeAt(buf, slot*inodeRecordSize)
	if !in.valid() {
		return inode{}, false, nil
	}
	return in, true, nil
}

// saveInode writes in back to the slot named by inumber. Caller must have
// already validated inumber via loadInode or equivalent.
func (fs *FileSystem) saveInode(inumber int64, in inode) error {
	blk, slot := inodeBlockAndSlot(inumber)
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(blk, buf); err != nil {
		return fmt.Errorf("read inode block %d: %w", blk, err)
	}
	in.encodeInto(buf, slot*inodeRecordSize)
	if err := fs.dev.Write(blk, buf); err != nil {
		return fmt.Errorf("write inode block %d: %w", blk, err)
	}
	return nil
}
