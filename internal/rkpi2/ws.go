package rkpi2

import (
	"errors"

	"github.com/pion/rtp"
	"github.com/reekpie/rkpi2/internal/api/ws"
	"github.com/reekpie/rkpi2/internal/streams"
	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/magic"
	"github.com/reekpie/rkpi2/pkg/pcm"
)

// wsRkpi2 streams raw PCM as binary frames at the audio clock pace.
// The first message announces the codec of the frames.
func wsRkpi2(tr *ws.Transport, msg *ws.Message) error {
	src := msg.String()
	if src == "" {
		return errors.New("rkpi2: no src")
	}

	rd, err := streams.Open(src)
	if err != nil {
		return err
	}

	codec, payload, err := magic.Unpack(rd)
	if err != nil {
		_ = rd.Close()
		return err
	}

	prod := pcm.OpenSync(codec, payload)
	prod.WithRequest(tr.Request)
	prod.SetSource(src)

	media := prod.GetMedias()[0]
	track, err := prod.GetTrack(media, media.Codecs[0])
	if err != nil {
		_ = rd.Close()
		return err
	}

	sender := core.NewSender(media, track.Codec)
	sender.Handler = func(packet *rtp.Packet) {
		tr.Write(packet.Payload)
	}
	sender.HandleRTP(track)

	tr.Write(&ws.Message{Type: "rkpi2", Value: map[string]any{
		"codec":    codec.Name,
		"rate":     codec.ClockRate,
		"channels": codec.Channels,
	}})

	tr.OnClose(func() {
		_ = prod.Stop()
	})

	go func() {
		if err := prod.Start(); err != nil {
			log.Warn().Err(err).Caller().Send()
		}
		sender.Close()
		_ = rd.Close()
	}()

	return nil
}
