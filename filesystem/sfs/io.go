package sfs

import (
	"fmt"

	"github.com/gofs-project/gofs/filesystem"
)

// loadIndirect reads the 1024-pointer indirect block referenced by in, if
// any. ok is false if the inode has no indirect block.
func (fs *FileSystem) loadIndirect(in inode) (ptrs [PointersPerBlock]uint32, ok bool, err error) {
	if in.Indirect == 0 {
		return ptrs, false, nil
	}
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(in.Indirect, buf); err != nil {
		return ptrs, false, fmt.Errorf("read indirect block %d: %w", in.Indirect, err)
	}
	return decodePointerBlock(buf), true, nil
}

// Read copies up to length bytes starting at offset from the inode named
// by inumber into buf. The copy stops early at end-of-file or at the first
// unallocated block in the requested range.
func (fs *FileSystem) Read(inumber int64, buf []byte, length, offset int) (int, error) {
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

	if length == 0 {
		return 0, nil
	}
	if offset+length > int(in.Size) {
		length = int(in.Size) - offset
	}
	if length <= 0 {
		return filesystem.FAILURE, nil
	}

	indirectPtrs, haveIndirect, err := fs.loadIndirect(in)
	if err != nil {
		return filesystem.FAILURE, err
	}

	bi := offset / BlockSize
	bo := offset % BlockSize
	total := 0
	remaining := length

	for remaining > 0 {
		if bi >= maxAddrs {
			break
		}
		var addr uint32
		switch {
		case bi < PointersPerInode:
			addr = in.Direct[bi]
		case haveIndirect:
			addr = indirectPtrs[bi-PointersPerInode]
		}
		if addr == 0 {
			break
		}

		dbuf := make([]byte, BlockSize)
		if err := fs.dev.Read(addr, dbuf); err != nil {
			return total, fmt.Errorf("read data block %d: %w", addr, err)
		}
		n := BlockSize - bo
		if n > remaining {
			n = remaining
		}
		copy(buf[total:total+n], dbuf[bo:bo+n])

		total += n
		remaining -= n
		bo = 0
		bi++
	}

	return total, nil
}

// Write copies up to length bytes from buf into the inode named by
// inumber, starting at offset, allocating new data blocks (and an
// indirect block, on first need past the direct slots) as the file
// grows. A block index at or beyond PointersPerInode is always
// addressed through the indirect block, never through Direct. Write
// stops and returns a short count, rather than an error, once the
// bitmap has no free blocks left to allocate.
func (fs *FileSystem) Write(inumber int64, buf []byte, length, offset int) (int, error) {
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

	if length == 0 {
		return 0, nil
	}

	indirectPtrs, haveIndirect, err := fs.loadIndirect(in)
	if err != nil {
		return filesystem.FAILURE, err
	}

	bi := offset / BlockSize
	bo := offset % BlockSize
	total := 0
	remaining := length
	inodeDirty := false
	indirectDirty := false

	dataStart := int(fs.sb.InodeBlocks) + 1

	for remaining > 0 {
		if bi >= maxAddrs {
			break
		}

		var addr uint32
		switch {
		case bi < PointersPerInode:
			addr = in.Direct[bi]
		case haveIndirect:
			addr = indirectPtrs[bi-PointersPerInode]
		}

		if addr == 0 {
			f := fs.bm.FirstFree(dataStart)
			if f < 0 || f >= int(fs.sb.Blocks) {
				break
			}
			if err := fs.bm.Set(f); err != nil {
				return total, fmt.Errorf("allocate data block: %w", err)
			}
			addr = uint32(f)

			if bi < PointersPerInode {
				in.Direct[bi] = addr
				inodeDirty = true
			} else {
				if !haveIndirect {
					g := fs.bm.FirstFree(dataStart)
					if g < 0 || g >= int(fs.sb.Blocks) {
						_ = fs.bm.Clear(f)
						break
					}
					if err := fs.bm.Set(g); err != nil {
						return total, fmt.Errorf("allocate indirect block: %w", err)
					}
					in.Indirect = uint32(g)
					haveIndirect = true
					inodeDirty = true
				}
				indirectPtrs[bi-PointersPerInode] = addr
				indirectDirty = true
			}
		}

		dbuf := make([]byte, BlockSize)
		if err := fs.dev.Read(addr, dbuf); err != nil {
			return total, fmt.Errorf("read data block %d: %w", addr, err)
		}
		n := BlockSize - bo
		if n > remaining {
			n = remaining
		}
		copy(dbuf[bo:bo+n], buf[total:total+n])
		if err := fs.dev.Write(addr, dbuf); err != nil {
			return total, fmt.Errorf("write data block %d: %w", addr, err)
		}

		total += n
		remaining -= n
		bo = 0
		bi++

		if newSize := offset + total; newSize > int(in.Size) {
			in.Size = uint32(newSize)
			inodeDirty = true
		}
	}

	if indirectDirty {
		if err := fs.dev.Write(in.Indirect, encodePointerBlock(indirectPtrs[:])); err != nil {
			return total, fmt.Errorf("write indirect block %d: %w", in.Indirect, err)
		}
	}
	if inodeDirty {
		if err := fs.saveInode(inumber, in); err != nil {
			return total, err
		}
	}

	fs.log.WithFields(map[string]interface{}{
		"inumber": inumber,
		"offset":  offset,
		"written": total,
	}).Trace("write")

	return total, nil
}
