package wav

import (
	"io"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/pcm"
)

// Consumer packs a raw PCM track into a streaming WAV.
// Target should be set before the consumer is connected.
type Consumer struct {
	core.Connection
	wr *core.WriteBuffer

	// Target - wanted codec, zero fields inherit from the track
	Target *core.Codec
}

func NewConsumer() *Consumer {
	wr := core.NewWriteBuffer(nil)
	return &Consumer{
		Connection: core.Connection{
			ID:         core.NewID(),
			FormatName: "wav",
			Transport:  wr,
			Medias: []*core.Media{
				{
					Kind:      core.KindAudio,
					Direction: core.DirectionSendonly,
					Codecs:    pcm.Codecs(),
				},
			},
		},
		wr: wr,
	}
}

func (c *Consumer) AddTrack(media *core.Media, _ *core.Codec, track *core.Receiver) error {
	dst := WavCodec(track.Codec, c.Target)

	if _, err := c.wr.Write(Header(dst)); err != nil {
		return err
	}

	transcode := pcm.Transcode(dst, track.Codec)

	sender := core.NewSender(media, track.Codec)
	sender.Handler = func(packet *rtp.Packet) {
		if n, err := c.wr.Write(transcode(packet.Payload)); err == nil {
			c.Send += n
		}
	}
	sender.HandleRTP(track)
	c.Senders = append(c.Senders, sender)
	return nil
}

func (c *Consumer) WriteTo(wr io.Writer) (int64, error) {
	return c.wr.WriteTo(wr)
}

// WavCodec - codec closest to target that WAV can express.
// Nil or zero target fields inherit from src.
func WavCodec(src, target *core.Codec) *core.Codec {
	dst := src.Clone()
	if target != nil {
		if target.Name != "" && target.Name != core.CodecAny {
			dst.Name = target.Name
		}
		if target.ClockRate != 0 {
			dst.ClockRate = target.ClockRate
		}
		if target.Channels != 0 {
			dst.Channels = target.Channels
		}
	}

	switch dst.Name {
	case core.CodecS8:
		dst.Name = core.CodecU8 // WAV 8-bit is unsigned
	case core.CodecU8, core.CodecS16, core.CodecS32, core.CodecS64,
		core.CodecF32, core.CodecF64, core.CodecPCMA, core.CodecPCMU:
	default:
		dst.Name = core.CodecS16
	}

	if dst.Channels < 1 {
		dst.Channels = 1
	}
	return dst
}
