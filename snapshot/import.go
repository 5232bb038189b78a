package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gofs-project/gofs/device"
)

// Import reads a stream produced by Export and writes each block back to
// dev. dev's block count and block size must match the stream's header
// exactly; the codec argument must match the one Export used. dev need
// not be mounted.
func Import(r io.Reader, dev *device.Device, codec Codec) error {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("snapshot import: read header: %w", err)
	}
	magic := binary.NativeEndian.Uint32(header[0:4])
	if magic != headerMagic {
		return fmt.Errorf("snapshot import: bad magic number %#x", magic)
	}
	blockSize := binary.NativeEndian.Uint32(header[4:8])
	blocks := binary.NativeEndian.Uint32(header[8:12])
	streamCodec := Codec(binary.NativeEndian.Uint32(header[12:16]))

	if blockSize != device.BlockSize {
		return fmt.Errorf("snapshot import: block size %d does not match device block size %d", blockSize, device.BlockSize)
	}
	if blocks != dev.Size() {
		return fmt.Errorf("snapshot import: stream has %d blocks, device has %d", blocks, dev.Size())
	}
	if streamCodec != codec {
		return fmt.Errorf("snapshot import: stream was written with codec %s, not %s", streamCodec, codec)
	}

	dec, err := codec.newDecoder(r)
	if err != nil {
		return fmt.Errorf("snapshot import: %w", err)
	}

	buf := make([]byte, device.BlockSize)
	for i := uint32(0); i < blocks; i++ {
		if _, err := io.ReadFull(dec, buf); err != nil {
			return fmt.Errorf("snapshot import: read block %d: %w", i, err)
		}
		if err := dev.Write(i, buf); err != nil {
			return fmt.Errorf("snapshot import: write block %d: %w", i, err)
		}
	}
	return nil
}
