// Package pcm converts between raw PCM sample codecs:
// integer and float widths, G.711 companding, crude resampling
// and channel mixing. Good enough for voice tooling,
// not a replacement for a real resampler.
package pcm

import (
	"encoding/binary"
	"math"

	"github.com/reekpie/rkpi2/pkg/core"
)

// Codecs - every raw PCM codec a track can carry, preference order
func Codecs() []*core.Codec {
	return []*core.Codec{
		{Name: core.CodecS16},
		{Name: core.CodecS8},
		{Name: core.CodecU8},
		{Name: core.CodecS32},
		{Name: core.CodecS64},
		{Name: core.CodecF32},
		{Name: core.CodecF64},
		{Name: core.CodecPCMA},
		{Name: core.CodecPCMU},
	}
}

// Transcode - convert samples between two raw PCM codecs through a
// normalized float64 chain: reader, filters, writer. The returned
// function keeps resampling state, use one per stream.
func Transcode(dst, src *core.Codec) func([]byte) []byte {
	if dst.Name == src.Name && dst.ClockRate == src.ClockRate && dst.Channels == src.Channels {
		return func(b []byte) []byte { return b }
	}

	reader := readSamples(src.Name)
	writer := writeSamples(dst.Name)

	// filters work on a mono stream, so any rate or layout change
	// goes through a downmix, a format only change keeps the interleave
	mix := dst.ClockRate != src.ClockRate || dst.Channels != src.Channels

	var filters []func([]float64) []float64

	if mix && src.Channels > 1 {
		filters = append(filters, Downsample(float64(src.Channels)))
	}

	if src.ClockRate > dst.ClockRate {
		filters = append(filters, Downsample(float64(src.ClockRate)/float64(dst.ClockRate)))
	} else if src.ClockRate < dst.ClockRate {
		filters = append(filters, Upsample(float64(dst.ClockRate)/float64(src.ClockRate)))
	}

	if mix && dst.Channels > 1 {
		filters = append(filters, Upsample(float64(dst.Channels)))
	}

	return func(b []byte) []byte {
		samples := reader(b)
		for _, filter := range filters {
			samples = filter(samples)
		}
		return writer(samples)
	}
}

// Downsample - average every k samples into one, k may be fractional
func Downsample(k float64) func([]float64) []float64 {
	var sampleN, sampleSum float64

	return func(src []float64) (dst []float64) {
		var i int
		dst = make([]float64, ceil((float64(len(src))+sampleN)/k))
		for _, sample := range src {
			sampleSum += sample
			sampleN++
			if sampleN >= k {
				dst[i] = sampleSum / k
				i++

				sampleSum = 0
				sampleN -= k
			}
		}
		return dst[:i]
	}
}

// Upsample - repeat every sample k times, k may be fractional
func Upsample(k float64) func([]float64) []float64 {
	var sampleN float64

	return func(src []float64) (dst []float64) {
		var i int
		dst = make([]float64, ceil(k*float64(len(src))))
		for _, sample := range src {
			sampleN += k
			for sampleN > 0 {
				dst[i] = sample
				i++

				sampleN -= 1
			}
		}
		return dst[:i]
	}
}

func ceil(x float64) int {
	d, fract := math.Modf(x)
	if fract == 0 {
		return int(d)
	}
	return int(d) + 1
}

const scale64 = float64(1 << 63)

func readSamples(name string) func([]byte) []float64 {
	switch name {
	case core.CodecS8:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src))
			for i, b := range src {
				dst[i] = float64(int8(b)) / 128
			}
			return
		}
	case core.CodecU8:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src))
			for i, b := range src {
				dst[i] = (float64(b) - 128) / 128
			}
			return
		}
	case core.CodecS16:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src)/2)
			for i := range dst {
				s := int16(binary.LittleEndian.Uint16(src[i*2:]))
				dst[i] = float64(s) / 32768
			}
			return
		}
	case core.CodecS32:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src)/4)
			for i := range dst {
				s := int32(binary.LittleEndian.Uint32(src[i*4:]))
				dst[i] = float64(s) / 2147483648
			}
			return
		}
	case core.CodecS64:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src)/8)
			for i := range dst {
				s := int64(binary.LittleEndian.Uint64(src[i*8:]))
				dst[i] = float64(s) / scale64
			}
			return
		}
	case core.CodecF32:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src)/4)
			for i := range dst {
				dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:])))
			}
			return
		}
	case core.CodecF64:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src)/8)
			for i := range dst {
				dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
			}
			return
		}
	case core.CodecPCMA:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src))
			for i, b := range src {
				dst[i] = float64(PCMAtoPCM(b)) / 32768
			}
			return
		}
	case core.CodecPCMU:
		return func(src []byte) (dst []float64) {
			dst = make([]float64, len(src))
			for i, b := range src {
				dst[i] = float64(PCMUtoPCM(b)) / 32768
			}
			return
		}
	}
	return nil
}

func writeSamples(name string) func([]float64) []byte {
	switch name {
	case core.CodecS8:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src))
			for i, v := range src {
				dst[i] = byte(int8(clip(v*128, -128, 127)))
			}
			return
		}
	case core.CodecU8:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src))
			for i, v := range src {
				dst[i] = byte(clip(v*128+128, 0, 255))
			}
			return
		}
	case core.CodecS16:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src)*2)
			for i, v := range src {
				s := int16(clip(v*32768, -32768, 32767))
				binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
			}
			return
		}
	case core.CodecS32:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src)*4)
			for i, v := range src {
				s := int32(clip(v*2147483648, -2147483648, 2147483647))
				binary.LittleEndian.PutUint32(dst[i*4:], uint32(s))
			}
			return
		}
	case core.CodecS64:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src)*8)
			for i, v := range src {
				var s int64
				switch {
				case v >= 1:
					s = math.MaxInt64
				case v <= -1:
					s = math.MinInt64
				default:
					s = int64(v * scale64)
				}
				binary.LittleEndian.PutUint64(dst[i*8:], uint64(s))
			}
			return
		}
	case core.CodecF32:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src)*4)
			for i, v := range src {
				binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(float32(v)))
			}
			return
		}
	case core.CodecF64:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src)*8)
			for i, v := range src {
				binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(v))
			}
			return
		}
	case core.CodecPCMA:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src))
			for i, v := range src {
				// compander negates, keep away from MinInt16
				dst[i] = PCMtoPCMA(int16(clip(v*32768, -32767, 32767)))
			}
			return
		}
	case core.CodecPCMU:
		return func(src []float64) (dst []byte) {
			dst = make([]byte, len(src))
			for i, v := range src {
				dst[i] = PCMtoPCMU(int16(clip(v*32768, -32767, 32767)))
			}
			return
		}
	}
	return nil
}

func clip(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
