package rkpi2

import (
	"io"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/pkg/core"
)

// Open demuxes an rkpi2 stream and exposes it as a raw PCM producer.
func Open(r io.Reader) (*Producer, error) {
	rd, h, err := Demux(r)
	if err != nil {
		return nil, err
	}

	medias := []*core.Media{
		{
			Kind:      core.KindAudio,
			Direction: core.DirectionRecvonly,
			Codecs:    []*core.Codec{h.Codec()},
		},
	}
	return &Producer{
		Connection: core.Connection{
			ID:         core.NewID(),
			FormatName: "rkpi2",
			Medias:     medias,
			Transport:  r,
		},
		header: h,
		rd:     rd,
	}, nil
}

type Producer struct {
	core.Connection
	header Header
	rd     io.ReadCloser
}

func (c *Producer) Header() Header {
	return c.header
}

func (c *Producer) Start() error {
	var seq uint16
	var ts uint32

	frames := c.header.Rate * 40 / 1000 // 40ms per packet
	chunk := int(frames) * int(c.header.Channels) * c.header.Format.Size()

	for {
		payload := make([]byte, chunk)
		n, err := io.ReadFull(c.rd, payload)

		c.Recv += n

		if n > 0 && len(c.Receivers) > 0 {
			pkt := &rtp.Packet{
				Header: rtp.Header{
					Version:        2,
					Marker:         true,
					SequenceNumber: seq,
					Timestamp:      ts,
				},
				Payload: payload[:n],
			}
			c.Receivers[0].WriteRTP(pkt)
		}

		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			// the trailing partial packet is already sent
			return nil
		default:
			return err
		}

		seq++
		ts += frames
	}
}

func (c *Producer) Stop() error {
	_ = c.rd.Close()
	return c.Connection.Stop()
}
