// Package netcodec packs vectors into a fixed number of bytes for replication.
//
// A packed vector is three little-endian int16 components. Each component is
// scaled by 32767/maxAbs, rounded and clamped, so values within [-maxAbs,
// maxAbs] survive a round trip with an error of at most half a step.
package netcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PackedVector3Size is the encoded size of one vector in bytes.
const PackedVector3Size = 6

const maxInt16 = math.MaxInt16

var (
	ErrShortBuffer = errors.New("netcodec: buffer too short")
	ErrInvalidMax  = errors.New("netcodec: maxAbs must be positive")
)

// Step returns the quantization step for a given range.
func Step(maxAbs float32) float32 {
	return maxAbs / maxInt16
}

// MaxError returns the largest round trip error for values inside the range.
func MaxError(maxAbs float32) float32 {
	return Step(maxAbs) / 2
}

func pack(v, maxAbs float32) int16 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	scaled := math.Round(float64(v) * maxInt16 / float64(maxAbs))
	scaled = math.Max(-maxInt16, math.Min(maxInt16, scaled))
	return int16(scaled)
}

func unpack(v int16, maxAbs float32) float32 {
	return float32(float64(v) * float64(maxAbs) / maxInt16)
}

// WritePackedVector3 appends the packed form of v to dst and returns the
// extended slice. Components outside [-maxAbs, maxAbs] are clamped.
// NaN components pack as zero and infinities clamp. A non-positive maxAbs
// writes zeros.
func WritePackedVector3(dst []byte, v rl.Vector3, maxAbs float32) []byte {
	if maxAbs <= 0 {
		return append(dst, make([]byte, PackedVector3Size)...)
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(pack(v.X, maxAbs)))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(pack(v.Y, maxAbs)))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(pack(v.Z, maxAbs)))
	return dst
}

// ReadPackedVector3 decodes the first PackedVector3Size bytes of src.
func ReadPackedVector3(src []byte, maxAbs float32) (rl.Vector3, error) {
	if maxAbs <= 0 {
		return rl.Vector3{}, ErrInvalidMax
	}
	if len(src) < PackedVector3Size {
		return rl.Vector3{}, fmt.Errorf("%w: got %d bytes, need %d", ErrShortBuffer, len(src), PackedVector3Size)
	}
	return rl.Vector3{
		X: unpack(int16(binary.LittleEndian.Uint16(src[0:])), maxAbs),
		Y: unpack(int16(binary.LittleEndian.Uint16(src[2:])), maxAbs),
		Z: unpack(int16(binary.LittleEndian.Uint16(src[4:])), maxAbs),
	}, nil
}
