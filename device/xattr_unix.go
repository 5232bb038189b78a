//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package device

import "github.com/pkg/xattr"

const magicXattrName = "user.gofs.magic"
const magicXattrValue = "f0f03410"

// tagImage stamps a file-backed image with an extended attribute carrying
// the filesystem's magic number, so tooling can identify a gofs image by
// stat-ing an xattr instead of opening and parsing block 0. Best-effort:
// many host filesystems (tmpfs without user_xattr, some network mounts)
// reject it, and that is not a failure of anything this module guarantees.
func tagImage(path string) error {
	if err := xattr.Set(path, magicXattrName, []byte(magicXattrValue)); err != nil {
		return err
	}
	return nil
}

// probeImage reports whether path carries the gofs identifying xattr,
// without reading any block of the image.
func probeImage(path string) bool {
	v, err := xattr.Get(path, magicXattrName)
	return err == nil && string(v) == magicXattrValue
}
