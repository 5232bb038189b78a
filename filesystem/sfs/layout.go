// Package sfs implements the hard core of the filesystem: the on-disk
// layout codec, the formatter, mount-time bitmap reconstruction, inode
// table management, and the direct/indirect-pointer read/write pipeline.
//
// The on-disk layout is a superblock in block 0, a contiguous run of
// inode blocks, 128 32-byte inodes per block, and a single level of
// indirection through a 1024-pointer block. Every multi-byte field is
// encoded with the platform's native byte order via explicit offsets
// through encoding/binary, rather than a reinterpreted struct.
package sfs

import (
	"encoding/binary"
	"fmt"

	"github.com/gofs-project/gofs/device"
)

const (
	// BlockSize is the size in bytes of every block, including block 0.
	BlockSize = device.BlockSize

	// MagicNumber identifies a valid superblock.
	MagicNumber uint32 = 0xF0F03410

	// InodesPerBlock is the number of 32-byte inode records packed into a
	// single inode block.
	InodesPerBlock = 128

	// PointersPerInode is the number of direct block pointers an inode
	// carries inline.
	PointersPerInode = 5

	// PointersPerBlock is the number of 32-bit pointers packed into a
	// single indirect block.
	PointersPerBlock = 1024

	// inodeRecordSize is the on-disk size of one inode record, in bytes.
	inodeRecordSize = 32

	// maxAddrs is the largest number of data blocks any one inode can
	// reference: 5 direct plus 1024 through one indirect block.
	maxAddrs = PointersPerInode + PointersPerBlock

	// MaxFileSize is the largest Size a valid inode may report.
	MaxFileSize = maxAddrs * BlockSize
)

// superblock is the decoded form of block 0.
type superblock struct {
	Magic       uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// encode packs sb into a fresh BlockSize-byte buffer, trailing bytes zero.
func (sb superblock) encode() []byte {
	buf := make([]byte, BlockSize)
	binary.NativeEndian.PutUint32(buf[0:4], sb.Magic)
	binary.NativeEndian.PutUint32(buf[4:8], sb.Blocks)
	binary.NativeEndian.PutUint32(buf[8:12], sb.InodeBlocks)
	binary.NativeEndian.PutUint32(buf[12:16], sb.Inodes)
	return buf
}

// decodeSuperblock reads a superblock from a BlockSize-byte buffer.
func decodeSuperblock(buf []byte) (superblock, error) {
	if len(buf) < 16 {
		return superblock{}, fmt.Errorf("superblock buffer too short: %d bytes", len(buf))
	}
	return superblock{
		Magic:       binary.NativeEndian.Uint32(buf[0:4]),
		Blocks:      binary.NativeEndian.Uint32(buf[4:8]),
		InodeBlocks: binary.NativeEndian.Uint32(buf[8:12]),
		Inodes:      binary.NativeEndian.Uint32(buf[12:16]),
	}, nil
}

// inode is the decoded form of one 32-byte inode record.
type inode struct {
	Valid    uint32
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

func (in inode) valid() bool { return in.Valid != 0 }

// encodeInto packs in into buf[offset:offset+32].
func (in inode) encodeInto(buf []byte, offset int) {
	b := buf[offset : offset+inodeRecordSize]
	binary.NativeEndian.PutUint32(b[0:4], in.Valid)
	binary.NativeEndian.PutUint32(b[4:8], in.Size)
	for i := 0; i < PointersPerInode; i++ {
		binary.NativeEndian.PutUint32(b[8+4*i:12+4*i], in.Direct[i])
	}
	binary.NativeEndian.PutUint32(b[28:32], in.Indirect)
}

func decodeInodeAt(buf []byte, offset int) inode {
	b := buf[offset : offset+inodeRecordSize]
	var in inode
	in.Valid = binary.NativeEndian.Uint32(b[0:4])
	in.Size = binary.NativeEndian.Uint32(b[4:8])
	for i := 0; i < PointersPerInode; i++ {
		in.Direct[i] = binary.NativeEndian.Uint32(b[8+4*i : 12+4*i])
	}
	in.Indirect = binary.NativeEndian.Uint32(b[28:32])
	return in
}

// decodeInodeBlock decodes all 128 inode records in a block buffer.
func decodeInodeBlock(buf []byte) [InodesPerBlock]inode {
	var inodes [InodesPerBlock]inode
	for i := 0; i < InodesPerBlock; i++ {
		inodes[i] = decodeInodeAt(buf, i*inodeRecordSize)
	}
	return inodes
}

// encodePointerBlock packs up to PointersPerBlock pointers into a fresh
// BlockSize-byte buffer; remaining slots (and any beyond len(ptrs)) are zero.
func encodePointerBlock(ptrs []uint32) []byte {
	buf := make([]byte, BlockSize)
	for i, p := range ptrs {
		if i >= PointersPerBlock {
			break
		}
		binary.NativeEndian.PutUint32(buf[4*i:4*i+4], p)
	}
	return buf
}

// decodePointerBlock unpacks all PointersPerBlock pointers from a block
// buffer.
func decodePointerBlock(buf []byte) [PointersPerBlock]uint32 {
	var ptrs [PointersPerBlock]uint32
	for i := 0; i < PointersPerBlock; i++ {
		ptrs[i] = binary.NativeEndian.Uint32(buf[4*i : 4*i+4])
	}
	return ptrs
}

// inodeBlockAndSlot splits an inumber into the block holding it (1-indexed,
// as blocks [1, InodeBlocks] hold inodes) and its slot within that block.
func inodeBlockAndSlot(inumber int64) (block uint32, slot int) {
	block = uint32(inumber/InodesPerBlock) + 1
	slot = int(inumber % InodesPerBlock)
	return
}

// inumberFor is the inverse of inodeBlockAndSlot.
func inumberFor(block uint32, slot int) int64 {
	return int64(block-1)*InodesPerBlock + int64(slot)
}

// inodeBlocksFor computes K = max(1, ceil(blocks * 0.10)), the number of
// blocks reserved for the inode table on a device of the given size.
func inodeBlocksFor(blocks uint32) uint32 {
	k := (blocks + 9) / 10
	if k < 1 {
		k = 1
	}
	return k
}
