package oto

import (
	"encoding/binary"
	"math"

	"github.com/mnglab/mng"
)

// floatBufferToLE encodes the buffer as interleaved 32-bit float samples,
// appending to out.
func floatBufferToLE(buffer mng.AudioBuffer, out []byte) []byte {
	for _, frame := range buffer {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(frame[0]))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(frame[1]))
	}
	return out
}

// floatBufferTo16BitLE encodes the buffer as interleaved 16-bit integer
// samples, clipping to [-1,1] and appending to out.
func floatBufferTo16BitLE(buffer mng.AudioBuffer, out []byte) []byte {
	for _, frame := range buffer {
		for _, v := range frame {
			var uv int16
			if v < -1.0 {
				uv = -math.MaxInt16
			} else if v > 1.0 {
				uv = math.MaxInt16
			} else {
				uv = int16(v * math.MaxInt16)
			}
			out = binary.LittleEndian.AppendUint16(out, uint16(uv))
		}
	}
	return out
}
