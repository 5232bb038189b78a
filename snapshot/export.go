package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gofs-project/gofs/device"
)

// headerMagic identifies a snapshot stream.
const headerMagic uint32 = 0x67665353 // "gfSS"

// Export writes every block of dev to w as a compressed stream: a small
// header (magic, block size, block count, codec) followed by the raw
// block contents run through codec's encoder. dev need not be mounted.
func Export(w io.Writer, dev *device.Device, codec Codec) error {
	header := make([]byte, 16)
	binary.NativeEndian.PutUint32(header[0:4], headerMagic)
	binary.NativeEndian.PutUint32(header[4:8], device.BlockSize)
	binary.NativeEndian.PutUint32(header[8:12], dev.Size())
	binary.NativeEndian.PutUint32(header[12:16], uint32(codec))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot export: write header: %w", err)
	}

	enc, err := codec.newEncoder(w)
	if err != nil {
		return fmt.Errorf("snapshot export: %w", err)
	}

	buf := make([]byte, device.BlockSize)
	for i := uint32(0); i < dev.Size(); i++ {
		if err := dev.Read(i, buf); err != nil {
			return fmt.Errorf("snapshot export: read block %d: %w", i, err)
		}
		if _, err := enc.Write(buf); err != nil {
			return fmt.Errorf("snapshot export: write block %d: %w", i, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot export: close encoder: %w", err)
	}
	return nil
}
