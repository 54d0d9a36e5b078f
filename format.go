package mixer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleFormat selects the storage representation of produced samples.
type SampleFormat int

const (
	// FormatInt16 stores signed 16-bit little-endian PCM, clipped.
	FormatInt16 SampleFormat = iota
	// FormatInt24 stores signed 24-bit little-endian PCM, clipped.
	FormatInt24
	// FormatFloat32 stores 32-bit IEEE floats, not clipped: downstream
	// stages may apply makeup gain.
	FormatFloat32
)

// Integer full-scale values.
const (
	maxInt16Scale = 32767.0
	maxInt24Scale = 8388607.0
)

// Byte widths per stored sample.
const (
	bytesPerInt16   = 2
	bytesPerInt24   = 3
	bytesPerFloat32 = 4
)

// BytesPerSample returns the storage width of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatInt16:
		return bytesPerInt16
	case FormatInt24:
		return bytesPerInt24
	default:
		return bytesPerFloat32
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatInt24:
		return "int24"
	case FormatFloat32:
		return "float32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// encodeSamples converts accumulated float64 samples to the storage format.
// dst must hold len(src)*f.BytesPerSample() bytes.
func encodeSamples(f SampleFormat, src []float64, dst []byte) {
	switch f {
	case FormatInt16:
		for i, v := range src {
			s := int16(math.Round(clip(v) * maxInt16Scale))
			binary.LittleEndian.PutUint16(dst[i*bytesPerInt16:], uint16(s))
		}
	case FormatInt24:
		for i, v := range src {
			s := int32(math.Round(clip(v) * maxInt24Scale))
			o := i * bytesPerInt24
			dst[o] = byte(s)
			dst[o+1] = byte(s >> 8)
			dst[o+2] = byte(s >> 16)
		}
	case FormatFloat32:
		for i, v := range src {
			binary.LittleEndian.PutUint32(dst[i*bytesPerFloat32:], math.Float32bits(float32(v)))
		}
	}
}

// DecodeSamples converts stored samples back to float64, the inverse of
// the mixer's output conversion. Integer formats scale back to [-1, 1].
// It returns the number of samples decoded. Sinks use this to consume
// Buffer contents without caring about the configured format.
func DecodeSamples(f SampleFormat, src []byte, dst []float64) int {
	n := len(src) / f.BytesPerSample()
	if n > len(dst) {
		n = len(dst)
	}
	switch f {
	case FormatInt16:
		for i := 0; i < n; i++ {
			s := int16(binary.LittleEndian.Uint16(src[i*bytesPerInt16:]))
			dst[i] = float64(s) / maxInt16Scale
		}
	case FormatInt24:
		for i := 0; i < n; i++ {
			o := i * bytesPerInt24
			s := int32(src[o]) | int32(src[o+1])<<8 | int32(int8(src[o+2]))<<16
			dst[i] = float64(s) / maxInt24Scale
		}
	case FormatFloat32:
		for i := 0; i < n; i++ {
			dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src[i*bytesPerFloat32:])))
		}
	}
	return n
}
