package wav

import (
	"bufio"
	"errors"
	"io"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/pcm"
)

const FourCC = "RIFF"

func Open(r io.Reader) (*Producer, error) {
	// https://en.wikipedia.org/wiki/WAV
	// https://www.mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	rd := bufio.NewReader(r)

	codec, err := ReadHeader(rd)
	if err != nil {
		return nil, err
	}

	if codec.Name == "" {
		return nil, errors.New("wav: unsupported codec")
	}

	medias := []*core.Media{
		{
			Kind:      core.KindAudio,
			Direction: core.DirectionRecvonly,
			Codecs:    []*core.Codec{codec},
		},
	}
	return &Producer{
		Connection: core.Connection{
			ID:         core.NewID(),
			FormatName: "wav",
			Medias:     medias,
			Transport:  r,
		},
		rd: rd,
	}, nil
}

type Producer struct {
	core.Connection
	rd *bufio.Reader
}

func (c *Producer) Start() error {
	var seq uint16
	var ts uint32

	codec := c.Medias[0].Codecs[0]
	frames := codec.ClockRate * 40 / 1000 // 40ms per packet
	chunk := int(frames) * pcm.BytesPerFrame(codec)
	if chunk == 0 {
		return errors.New("wav: wrong codec")
	}

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
			return nil
		default:
			return err
		}

		seq++
		ts += frames
	}
}
