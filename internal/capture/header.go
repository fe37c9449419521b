package capture

import (
	"encoding/binary"
	"math"

	"github.com/yegorvk/vcam/internal/frame"
)

// MaxImageSize is the fixed size of the image region in shared memory.
// Geometry validation in frame.NewConfig guarantees every frame fits.
const MaxImageSize = frame.MaxBytes

// HeaderSize is the size of the shared-memory header: a uint32 capacity
// field followed by seven int32 fields, little-endian, no padding.
const HeaderSize = 32

// SharedSize is the total size of the shared memory region.
const SharedSize = HeaderSize + MaxImageSize

// Header field values the sender always writes. The receiver interprets
// format/resize/mirror; timeout is how long it keeps showing the last
// frame before blanking.
const (
	formatUint8        = 0
	resizeModeLinear   = 1
	mirrorModeDisabled = 0
	frameTimeout       = math.MaxInt32 - 200
)

// maxSize reads the capacity field the receiver wrote into the header.
func maxSize(shared []byte) uint32 {
	return binary.LittleEndian.Uint32(shared[0:4])
}

// putHeader rewrites every header field except the receiver-owned capacity.
func putHeader(shared []byte, cfg frame.Config) {
	put := func(off int, v int32) {
		binary.LittleEndian.PutUint32(shared[off:off+4], uint32(v))
	}
	put(4, int32(cfg.Width))
	put(8, int32(cfg.Height))
	put(12, int32(cfg.Width)) // stride
	put(16, formatUint8)
	put(20, resizeModeLinear)
	put(24, mirrorModeDisabled)
	put(28, frameTimeout)
}
