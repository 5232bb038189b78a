// Package snapshot exports and imports whole block-device images as a
// single compressed stream, for backing up or seeding a gofs device
// without going through the filesystem layer at all.
package snapshot

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

// Codec selects the compression format used for a snapshot stream.
type Codec int

const (
	// CodecLZ4 favors export/import speed over ratio.
	CodecLZ4 Codec = iota
	// CodecXZ favors ratio over speed; suited to archival snapshots.
	CodecXZ
)

func (c Codec) String() string {
	switch c {
	case CodecLZ4:
		return "lz4"
	case CodecXZ:
		return "xz"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// newEncoder wraps w in a compressing io.WriteCloser for c. Closing the
// returned writer flushes the compressor but does not close w.
func (c Codec) newEncoder(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecXZ:
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("snapshot: unknown codec %d", int(c))
	}
}

// newDecoder wraps r in a decompressing io.Reader for c.
func (c Codec) newDecoder(r io.Reader) (io.Reader, error) {
	switch c {
	case CodecLZ4:
		return lz4.NewReader(r), nil
	case CodecXZ:
		return xz.NewReader(r)
	default:
		return nil, fmt.Errorf("snapshot: unknown codec %d", int(c))
	}
}
