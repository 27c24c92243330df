package pcm

import (
	"time"

	"github.com/reekpie/rkpi2/pkg/core"
)

func BytesPerSample(codec *core.Codec) int {
	switch codec.Name {
	case core.CodecS8, core.CodecU8, core.CodecPCMA, core.CodecPCMU:
		return 1
	case core.CodecS16:
		return 2
	case core.CodecS32, core.CodecF32:
		return 4
	case core.CodecS64, core.CodecF64:
		return 8
	}
	return 0
}

func BytesPerFrame(codec *core.Codec) int {
	if codec.Channels <= 1 {
		return BytesPerSample(codec)
	}
	return int(codec.Channels) * BytesPerSample(codec)
}

func FramesPerDuration(codec *core.Codec, duration time.Duration) int {
	return int(time.Duration(codec.ClockRate) * duration / time.Second)
}

func BytesPerDuration(codec *core.Codec, duration time.Duration) int {
	return BytesPerFrame(codec) * FramesPerDuration(codec, duration)
}
