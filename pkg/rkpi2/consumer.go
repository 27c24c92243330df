package rkpi2

import (
	"io"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/pcm"
)

// Consumer muxes a raw PCM track into an rkpi2 stream.
// Level and Target should be set before the consumer is connected.
type Consumer struct {
	core.Connection
	wr *core.WriteBuffer

	// Level - zstd compression level, zero or below writes raw
	Level int
	// Target - wanted codec, zero fields inherit from the track,
	// the result is snapped to what the container can express
	Target *core.Codec

	mux io.WriteCloser
}

func NewConsumer() *Consumer {
	wr := core.NewWriteBuffer(nil)
	return &Consumer{
		Connection: core.Connection{
			ID:         core.NewID(),
			FormatName: "rkpi2",
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
	dst := ContainerCodec(track.Codec, c.Target)

	h, err := HeaderOf(dst)
	if err != nil {
		return err
	}

	mux, err := Mux(c.wr, h, c.Level)
	if err != nil {
		return err
	}
	c.mux = mux

	transcode := pcm.Transcode(dst, track.Codec)

	sender := core.NewSender(media, track.Codec)
	sender.Handler = func(packet *rtp.Packet) {
		if n, err := mux.Write(transcode(packet.Payload)); err == nil {
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

func (c *Consumer) Stop() error {
	err := c.Connection.Stop()
	if c.mux != nil {
		// finalize the zstd frame before releasing WriteTo
		if muxErr := c.mux.Close(); muxErr != nil {
			err = muxErr
		}
	}
	_ = c.wr.Close()
	return err
}

// ContainerCodec - codec closest to target that the container can
// express. Nil or zero target fields inherit from src.
func ContainerCodec(src, target *core.Codec) *core.Codec {
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

	if _, ok := ParseFormat(dst.Name); !ok {
		// U8 and G.711 land in S16LE
		dst.Name = core.CodecS16
	}
	dst.ClockRate = NearestRate(dst.ClockRate)
	if dst.Channels < 1 {
		dst.Channels = 1
	} else if dst.Channels > MaxChannels {
		dst.Channels = MaxChannels
	}
	return dst
}
