package gofs_test

import (
	"bytes"
	"path/filepath"
	"testing"

	gofs "github.com/gofs-project/gofs"
	"github.com/gofs-project/gofs/device"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	fsys, dev, err := gofs.Create(path, 20, device.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	inum, err := fsys.Create()
	if err != nil || inum != 0 {
		t.Fatalf("Create inode: inum=%d err=%v", inum, err)
	}
	payload := []byte("roundtrip through the convenience surface")
	if _, err := fsys.Write(inum, payload, len(payload), 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	fsys.Unmount()
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fsys2, dev2, err := gofs.Open(path, 20, device.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev2.Close()
	defer fsys2.Unmount()

	out := make([]byte, len(payload))
	n, err := fsys2.Read(inum, out, len(out), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Read = %d bytes, want %d", n, len(payload))
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("restored data does not match original")
	}
}

func TestCreateRejectsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	fsys, dev, err := gofs.Create(path, 10, device.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fsys.Unmount()
	dev.Close()

	if _, _, err := gofs.Create(path, 10, device.Options{}); err == nil {
		t.Fatalf("Create should fail when the path already exists")
	}
}

func TestOpenRejectsWrongBlockCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	fsys, dev, err := gofs.Create(path, 10, device.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fsys.Unmount()
	dev.Close()

	if _, _, err := gofs.Open(path, 20, device.Options{}); err == nil {
		t.Fatalf("Open should fail when nblocks does not match the image size")
	}
}
