package sfs

import (
	"fmt"

	"github.com/gofs-project/gofs/device"
	"github.com/gofs-project/gofs/util/bitmap"
)

// buildBitmap reconstructs the in-memory free-block bitmap at mount time:
// every block in [0, InodeBlocks] is permanently reserved, then every
// valid inode's Direct and Indirect-referenced blocks are marked
// allocated.
//
// Each logical read below (inode block, indirect block) lands in its own
// freshly-allocated buffer, so there is no aliasing hazard between
// processing an indirect block and the inode block that referenced it.
func buildBitmap(dev *device.Device, sb superblock) (*bitmap.Bitmap, error) {
	bm := bitmap.NewBits(int(sb.Blocks))
	if err := bm.SetRange(0, int(sb.InodeBlocks)+1); err != nil {
		return nil, fmt.Errorf("reserve superblock and inode region: %w", err)
	}

	for blk := uint32(1); blk <= sb.InodeBlocks; blk++ {
		buf := make([]byte, BlockSize)
		if err := dev.Read(blk, buf); err != nil {
			return nil, fmt.Errorf("read inode block %d: %w", blk, err)
		}
		inodes := decodeInodeBlock(buf)

		for _, in := range inodes {
			if !in.valid() {
				continue
			}
			for _, d := range in.Direct {
				if d == 0 {
					continue
				}
				if err := bm.Set(int(d)); err != nil {
					return nil, fmt.Errorf("mark direct block %d allocated: %w", d, err)
				}
			}
			if in.Indirect == 0 {
				continue
			}
			if err := bm.Set(int(in.Indirect)); err != nil {
				return nil, fmt.Errorf("mark indirect block %d allocated: %w", in.Indirect, err)
			}

			ibuf := make([]byte, BlockSize)
			if err := dev.Read(in.Indirect, ibuf); err != nil {
				return nil, fmt.Errorf("read indirect block %d: %w", in.Indirect, err)
			}
			ptrs := decodePointerBlock(ibuf)
			for _, p := range ptrs {
				if p == 0 {
					break
				}
				if err := bm.Set(int(p)); err != nil {
					return nil, fmt.Errorf("mark indirect data block %d allocated: %w", p, err)
				}
			}
		}
	}

	return bm, nil
}
