//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package device

import "os"

// lockFile is a no-op on platforms without an advisory flock primitive
// wired up here. The single-mounter precondition is still enforced in
// software by Device/FileSystem bookkeeping; this is only a best-effort,
// OS-level extra.
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) {}
