// Package filesystem provides the shared contract implemented by
// filesystem/sfs. It exists as its own package so a future second
// on-disk format could be added alongside sfs without disturbing
// callers, even though gofs currently implements exactly one.
package filesystem

import "errors"

// FAILURE is the sentinel value returned in place of an inumber or byte
// count by operations that have no success value to report: an invalid
// inumber, a read or write against an unmounted or unrecognized inode, or a
// full inode table on create.
const FAILURE = -1

// ErrNotMounted is returned by any operation that requires a mounted
// FileSystem when none is mounted. Other precondition failures (Format on
// a mounted device, Mount of an already-mounted instance, Mount onto a
// mounted device, a corrupt superblock) are reported as an ordinary
// (false, nil) return rather than an error, since they are routine outcomes
// a caller is expected to check for, not faults.
var ErrNotMounted = errors.New("filesystem not mounted")

// FileSystem is the contract implemented by filesystem/sfs.FileSystem. It
// is deliberately narrow: inumbers, not paths; no directories, permissions,
// ownership or timestamps. Those are explicit non-goals of the filesystem
// this module implements.
type FileSystem interface {
	// Create allocates a new, empty inode and returns its inumber, or
	// FAILURE if the inode table is full.
	Create() (int64, error)
	// Remove invalidates the inode named by inumber and releases its data
	// blocks. Returns false if inumber is out of range or already free.
	Remove(inumber int64) (bool, error)
	// Stat returns the size in bytes of the inode named by inumber, or
	// FAILURE if inumber is out of range or the inode is free.
	Stat(inumber int64) (int64, error)
	// Read copies up to length bytes starting at offset from the inode
	// named by inumber into buf, returning the number of bytes copied, or
	// FAILURE if inumber is invalid.
	Read(inumber int64, buf []byte, length, offset int) (int, error)
	// Write copies up to length bytes from buf into the inode named by
	// inumber starting at offset, growing the inode as needed, and returns
	// the number of bytes written, or FAILURE if inumber is invalid.
	Write(inumber int64, buf []byte, length, offset int) (int, error)
}
