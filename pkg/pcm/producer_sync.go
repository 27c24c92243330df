package pcm

import (
	"io"
	"time"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/pkg/core"
)

// ProducerSync reads raw PCM in real time: packets are released at
// the pace of the audio clock, so a file behaves like a live source.
type ProducerSync struct {
	core.Connection
	src *core.Codec
	rd  io.Reader
}

func OpenSync(codec *core.Codec, rd io.Reader) *ProducerSync {
	medias := []*core.Media{
		{
			Kind:      core.KindAudio,
			Direction: core.DirectionRecvonly,
			Codecs:    []*core.Codec{codec},
		},
	}

	return &ProducerSync{
		Connection: core.Connection{
			ID:         core.NewID(),
			FormatName: "pcm",
			Medias:     medias,
			Transport:  rd,
		},
		src: codec,
		rd:  rd,
	}
}

func (p *ProducerSync) Start() error {
	if len(p.Receivers) == 0 {
		return nil
	}

	var pktSeq uint16
	var pktTS uint32          // time in frames
	var pktTime time.Duration // time in seconds

	t0 := time.Now()

	const chunkDuration = 20 * time.Millisecond
	chunkBytes := BytesPerDuration(p.src, chunkDuration)
	chunkFrames := uint32(FramesPerDuration(p.src, chunkDuration))

	for {
		buf := make([]byte, chunkBytes)
		n, _ := io.ReadFull(p.rd, buf)

		if n == 0 {
			break
		}

		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         true,
				SequenceNumber: pktSeq,
				Timestamp:      pktTS,
			},
			Payload: buf[:n],
		}

		if d := pktTime - time.Since(t0); d > 0 {
			time.Sleep(d)
		}

		p.Receivers[0].WriteRTP(pkt)
		p.Recv += n

		pktSeq++
		pktTS += chunkFrames
		pktTime += chunkDuration
	}

	return nil
}
