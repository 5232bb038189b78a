package sfs

import (
	"bytes"
	"testing"

	"github.com/gofs-project/gofs/device"
)

func formattedDevice(t *testing.T, nblocks uint32) *device.Device {
	t.Helper()
	dev := device.NewMemory(nblocks, device.Options{})
	ok, err := Format(dev)
	if err != nil || !ok {
		t.Fatalf("Format: ok=%v err=%v", ok, err)
	}
	return dev
}

// S1: format+mount+debug on a 10-block device.
func TestScenario1FormatMountDebug(t *testing.T) {
	dev := formattedDevice(t, 10)

	var fs FileSystem
	ok, err := fs.Mount(dev, MountOptions{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if !ok {
		t.Fatalf("Mount should succeed on a freshly formatted device")
	}
	if fs.sb.Blocks != 10 || fs.sb.InodeBlocks != 1 || fs.sb.Inodes != 128 {
		t.Fatalf("unexpected superblock: %+v", fs.sb)
	}

	var out bytes.Buffer
	if err := Debug(&out, dev); err != nil {
		t.Fatalf("Debug: %v", err)
	}
	if bytes.Contains(out.Bytes(), []byte("Inode ")) {
		t.Errorf("fresh filesystem should have no inode lines in debug output, got:\n%s", out.String())
	}
}

func TestMountRejectsAlreadyMountedInstance(t *testing.T) {
	dev := formattedDevice(t, 10)
	var fs FileSystem
	if ok, err := fs.Mount(dev, MountOptions{}); err != nil || !ok {
		t.Fatalf("first Mount: ok=%v err=%v", ok, err)
	}
	dev2 := formattedDevice(t, 10)
	ok, err := fs.Mount(dev2, MountOptions{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if ok {
		t.Fatalf("Mount on an already-mounted FileSystem instance must fail")
	}
}

func TestMountRejectsMountedDevice(t *testing.T) {
	dev := formattedDevice(t, 10)
	dev.Mount()
	var fs FileSystem
	ok, err := fs.Mount(dev, MountOptions{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if ok {
		t.Fatalf("Mount must fail when the device already reports mounted")
	}
}

// S8: mount rejects corruption in any of the four superblock fields.
func TestMountRejectsCorruption(t *testing.T) {
	fields := []struct {
		name   string
		mutate func(sb superblock) superblock
	}{
		{"magic", func(sb superblock) superblock { sb.Magic = 0xdeadbeef; return sb }},
		{"blocks", func(sb superblock) superblock { sb.Blocks++; return sb }},
		{"inodeBlocks", func(sb superblock) superblock { sb.InodeBlocks++; return sb }},
		{"inodes", func(sb superblock) superblock { sb.Inodes++; return sb }},
	}

	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			dev := formattedDevice(t, 10)
			buf := make([]byte, BlockSize)
			if err := dev.Read(0, buf); err != nil {
				t.Fatal(err)
			}
			sb, err := decodeSuperblock(buf)
			if err != nil {
				t.Fatal(err)
			}
			sb = f.mutate(sb)
			if err := dev.Write(0, sb.encode()); err != nil {
				t.Fatal(err)
			}

			var fs FileSystem
			ok, err := fs.Mount(dev, MountOptions{})
			if err != nil {
				t.Fatalf("Mount: %v", err)
			}
			if ok {
				t.Fatalf("Mount should reject corrupted %s field", f.name)
			}
		})
	}
}

func TestBitmapReconstructionAfterRemount(t *testing.T) {
	dev := formattedDevice(t, 100)
	var fs FileSystem
	if ok, err := fs.Mount(dev, MountOptions{}); err != nil || !ok {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}

	inum, err := fs.Create()
	if err != nil || inum == -1 {
		t.Fatalf("Create: inum=%d err=%v", inum, err)
	}
	data := bytes.Repeat([]byte{0x42}, 6*BlockSize)
	n, err := fs.Write(inum, data, len(data), 0)
	if err != nil || n != len(data) {
		t.Fatalf("Write: n=%d err=%v", n, err)
	}
	usedBefore := fs.bm.CountSet()
	fs.Unmount()

	var fs2 FileSystem
	if ok, err := fs2.Mount(dev, MountOptions{}); err != nil || !ok {
		t.Fatalf("remount: ok=%v err=%v", ok, err)
	}
	usedAfter := fs2.bm.CountSet()
	if usedBefore != usedAfter {
		t.Fatalf("bitmap popcount changed across remount: before=%d after=%d", usedBefore, usedAfter)
	}
}
