//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory, exclusive, non-blocking lock on f. It fails
// fast rather than waiting, since the filesystem layer's precondition is "no
// other mounter", not "wait your turn" - there is no queueing in this
// module's concurrency model.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
