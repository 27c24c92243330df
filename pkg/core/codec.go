package core

import (
	"fmt"
	"strconv"
)

type Codec struct {
	Name      string // S16LE, F32LE, PCMA...
	ClockRate uint32 // 8000, 44100, 192000...
	Channels  uint16 // 1..8
}

func (c *Codec) String() string {
	s := c.Name
	if c.ClockRate != 0 {
		s = fmt.Sprintf("%s/%d", s, c.ClockRate)
	}
	if c.Channels > 0 {
		s = fmt.Sprintf("%s/%d", s, c.Channels)
	}
	return s
}

func (c *Codec) Clone() *Codec {
	clone := *c
	return &clone
}

func (c *Codec) Match(remote *Codec) bool {
	if remote.Name == CodecAny {
		return true
	}

	return c.Name == remote.Name &&
		(c.ClockRate == remote.ClockRate || remote.ClockRate == 0) &&
		(c.Channels == remote.Channels || remote.Channels == 0)
}

// ParseCodec - build codec from query-style params, ex. `s16le/48000/2`
// Empty or unknown name means ANY.
func ParseCodec(name, rate, channels string) *Codec {
	c := &Codec{Name: ParseCodecName(name)}
	if i, err := strconv.Atoi(rate); err == nil && i > 0 {
		c.ClockRate = uint32(i)
	}
	if i, err := strconv.Atoi(channels); err == nil && i > 0 {
		c.Channels = uint16(i)
	}
	return c
}

func ParseCodecName(name string) string {
	switch name {
	case "s8":
		return CodecS8
	case "u8":
		return CodecU8
	case "s16", "s16le":
		return CodecS16
	case "s32", "s32le":
		return CodecS32
	case "s64", "s64le":
		return CodecS64
	case "f32", "f32le", "flt":
		return CodecF32
	case "f64", "f64le", "dbl":
		return CodecF64
	case "alaw", "pcma":
		return CodecPCMA
	case "ulaw", "mulaw", "pcmu":
		return CodecPCMU
	}
	return CodecAny
}
