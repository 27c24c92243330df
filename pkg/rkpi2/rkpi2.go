// Package rkpi2 implements the Reekpie audio container:
// a 2 byte bit-packed header describing raw PCM audio,
// followed by one continuous sample stream,
// optionally passed through streaming zstd.
package rkpi2

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/reekpie/rkpi2/pkg/core"
)

const (
	// StartCode - constant 6 bit marker in the top bits of byte0
	StartCode = 0x3D

	HeaderSize  = 2
	MaxChannels = 8
)

// Format - sample format, ordinal value is the wire representation.
// Codes 6 and 7 are reserved and rejected on decode.
type Format byte

const (
	FormatS8 Format = iota
	FormatS16
	FormatS32
	FormatS64
	FormatF32
	FormatF64
)

// Size - bytes per single sample
func (f Format) Size() int {
	switch f {
	case FormatS8:
		return 1
	case FormatS16:
		return 2
	case FormatS32, FormatF32:
		return 4
	case FormatS64, FormatF64:
		return 8
	}
	return 0
}

// CodecName - track codec name for this format
func (f Format) CodecName() string {
	switch f {
	case FormatS8:
		return core.CodecS8
	case FormatS16:
		return core.CodecS16
	case FormatS32:
		return core.CodecS32
	case FormatS64:
		return core.CodecS64
	case FormatF32:
		return core.CodecF32
	case FormatF64:
		return core.CodecF64
	}
	return ""
}

func (f Format) String() string {
	return f.CodecName()
}

// ParseFormat - find format by codec name, ex. `s16le` or `S16LE`
func ParseFormat(name string) (Format, bool) {
	switch core.ParseCodecName(strings.ToLower(name)) {
	case core.CodecS8:
		return FormatS8, true
	case core.CodecS16:
		return FormatS16, true
	case core.CodecS32:
		return FormatS32, true
	case core.CodecS64:
		return FormatS64, true
	case core.CodecF32:
		return FormatF32, true
	case core.CodecF64:
		return FormatF64, true
	}
	return 0, false
}

// Rates - the fixed table of supported sampling rates,
// wire representation is the table index
var Rates = [8]uint32{8000, 12000, 22050, 32000, 44100, 64000, 96000, 192000}

func rateIndex(rate uint32) (byte, bool) {
	for i, r := range Rates {
		if r == rate {
			return byte(i), true
		}
	}
	return 0, false
}

// NearestRate - closest supported sampling rate, for transcoding
func NearestRate(rate uint32) uint32 {
	best := Rates[0]
	for _, r := range Rates[1:] {
		if diff(r, rate) < diff(best, rate) {
			best = r
		}
	}
	return best
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// Header - stream descriptor, passed by value, no state
type Header struct {
	Format   Format
	Rate     uint32 // Hz, one of Rates
	Channels uint8  // 1..8, interleaved
}

func (h Header) String() string {
	return fmt.Sprintf("%s/%d/%d", h.Format.CodecName(), h.Rate, h.Channels)
}

// Codec - track codec for this header
func (h Header) Codec() *core.Codec {
	return &core.Codec{
		Name:      h.Format.CodecName(),
		ClockRate: h.Rate,
		Channels:  uint16(h.Channels),
	}
}

// HeaderOf - header describing a raw PCM track codec
func HeaderOf(codec *core.Codec) (Header, error) {
	f, ok := ParseFormat(codec.Name)
	if !ok {
		return Header{}, ErrFormat
	}
	if _, ok = rateIndex(codec.ClockRate); !ok {
		return Header{}, ErrRate
	}
	if codec.Channels < 1 || codec.Channels > MaxChannels {
		return Header{}, ErrChannels
	}
	return Header{Format: f, Rate: codec.ClockRate, Channels: uint8(codec.Channels)}, nil
}

// Closed error taxonomy. Validation failures come plain,
// transport failures wrap both ErrIO and the cause,
// so errors.Is works on either.
var (
	ErrStartCode = errors.New("rkpi2: wrong start code")
	ErrFormat    = errors.New("rkpi2: unknown sample format")
	ErrRate      = errors.New("rkpi2: unsupported sampling rate")
	ErrChannels  = errors.New("rkpi2: unsupported channels count")
	ErrIO        = errors.New("rkpi2: io failure")
)

// Mux validates the header, writes the 2 wire bytes to w and returns
// the stream for the sample payload. Positive level enables zstd
// compression, the level range is left to the encoder itself.
// Close finalizes the compressed stream but never closes w.
func Mux(w io.Writer, h Header, level int) (io.WriteCloser, error) {
	b, err := packHeader(h, level > 0)
	if err != nil {
		return nil, err
	}

	if _, err = w.Write(b[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if level <= 0 {
		return nopWriteCloser{w}, nil
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return enc, nil
}

// Demux reads and validates the 2 wire bytes from r and returns the
// stream for the sample payload together with the recovered header.
// Close releases the zstd decoder but never closes r.
func Demux(r io.Reader) (io.ReadCloser, Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", ErrIO, err)
	}

	h, compressed, err := unpackHeader(b)
	if err != nil {
		return nil, Header{}, err
	}

	if !compressed {
		return io.NopCloser(r), h, nil
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return dec.IOReadCloser(), h, nil
}

// Probe reads the 2 wire bytes and returns the header and the
// compression flag without wrapping the payload.
func Probe(r io.Reader) (Header, bool, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return unpackHeader(b)
}

func packHeader(h Header, compressed bool) (b [HeaderSize]byte, err error) {
	idx, ok := rateIndex(h.Rate)
	if !ok {
		return b, ErrRate
	}
	if h.Channels < 1 || h.Channels > MaxChannels {
		return b, ErrChannels
	}
	if h.Format > FormatF64 {
		return b, ErrFormat
	}

	b[0] = StartCode << 2
	if compressed {
		b[0] |= 1 << 1
	}
	b[0] |= byte(h.Format) >> 2
	b[1] = byte(h.Format)<<6 | idx<<3 | (h.Channels - 1)
	return
}

func unpackHeader(b [HeaderSize]byte) (h Header, compressed bool, err error) {
	if b[0]>>2 != StartCode {
		return h, false, ErrStartCode
	}

	compressed = b[0]&2 != 0

	code := (b[0]&1)<<2 | b[1]>>6
	if code > byte(FormatF64) {
		return h, false, ErrFormat
	}

	h.Format = Format(code)
	h.Rate = Rates[(b[1]>>3)&7]
	h.Channels = (b[1] & 7) + 1
	return
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
