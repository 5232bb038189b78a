package snapshot

import (
	"bytes"
	"testing"

	"github.com/gofs-project/gofs/device"
	"github.com/gofs-project/gofs/filesystem/sfs"
)

func TestExportImportRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecLZ4, CodecXZ} {
		t.Run(codec.String(), func(t *testing.T) {
			src := device.NewMemory(20, device.Options{})
			if ok, err := sfs.Format(src); err != nil || !ok {
				t.Fatalf("Format: ok=%v err=%v", ok, err)
			}
			var fs sfs.FileSystem
			if ok, err := fs.Mount(src, sfs.MountOptions{}); err != nil || !ok {
				t.Fatalf("Mount: ok=%v err=%v", ok, err)
			}
			inum, err := fs.Create()
			if err != nil || inum != 0 {
				t.Fatalf("Create: inum=%d err=%v", inum, err)
			}
			payload := bytes.Repeat([]byte("snapshot-roundtrip"), 100)
			if _, err := fs.Write(inum, payload, len(payload), 0); err != nil {
				t.Fatalf("Write: %v", err)
			}
			fs.Unmount()

			var buf bytes.Buffer
			if err := Export(&buf, src, codec); err != nil {
				t.Fatalf("Export: %v", err)
			}

			dst := device.NewMemory(20, device.Options{})
			if err := Import(&buf, dst, codec); err != nil {
				t.Fatalf("Import: %v", err)
			}

			var fs2 sfs.FileSystem
			if ok, err := fs2.Mount(dst, sfs.MountOptions{}); err != nil || !ok {
				t.Fatalf("Mount restored device: ok=%v err=%v", ok, err)
			}
			out := make([]byte, len(payload))
			n, err := fs2.Read(inum, out, len(out), 0)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if n != len(payload) {
				t.Fatalf("Read = %d bytes, want %d", n, len(payload))
			}
			if !bytes.Equal(out, payload) {
				t.Fatalf("restored data does not match original")
			}
		})
	}
}

func TestImportRejectsBlockCountMismatch(t *testing.T) {
	src := device.NewMemory(10, device.Options{})
	var buf bytes.Buffer
	if err := Export(&buf, src, CodecLZ4); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := device.NewMemory(20, device.Options{})
	if err := Import(&buf, dst, CodecLZ4); err == nil {
		t.Fatalf("Import should reject a block-count mismatch")
	}
}

func TestImportRejectsCodecMismatch(t *testing.T) {
	src := device.NewMemory(10, device.Options{})
	var buf bytes.Buffer
	if err := Export(&buf, src, CodecLZ4); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := device.NewMemory(10, device.Options{})
	if err := Import(&buf, dst, CodecXZ); err == nil {
		t.Fatalf("Import should reject a codec mismatch")
	}
}
