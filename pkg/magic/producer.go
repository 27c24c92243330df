package magic

import (
	"encoding/hex"
	"errors"
	"io"

	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/rkpi2"
	"github.com/reekpie/rkpi2/pkg/wav"
)

// Open sniffs the container format and returns a packetized producer.
func Open(r io.Reader) (core.Producer, error) {
	rd := core.NewReadBuffer(r)

	// a Reekpie file can be two bytes total, so peek those first
	b, err := rd.Peek(2)
	if err != nil {
		return nil, err
	}

	if b[0]>>2 == rkpi2.StartCode {
		return rkpi2.Open(rd)
	}

	if b, err = rd.Peek(4); err != nil {
		return nil, err
	}

	if string(b) == wav.FourCC {
		return wav.Open(rd)
	}

	return nil, errors.New("magic: unsupported header: " + hex.EncodeToString(b))
}

// Unpack sniffs the container format and returns the source codec
// together with the demuxed PCM stream.
func Unpack(r io.Reader) (*core.Codec, io.ReadCloser, error) {
	rd := core.NewReadBuffer(r)

	b, err := rd.Peek(2)
	if err != nil {
		return nil, nil, err
	}

	if b[0]>>2 == rkpi2.StartCode {
		payload, header, err := rkpi2.Demux(rd)
		if err != nil {
			return nil, nil, err
		}
		return header.Codec(), payload, nil
	}

	if b, err = rd.Peek(4); err != nil {
		return nil, nil, err
	}

	if string(b) == wav.FourCC {
		codec, err := wav.ReadHeader(rd)
		if err != nil {
			return nil, nil, err
		}
		if codec.Name == "" {
			return nil, nil, errors.New("magic: unsupported codec")
		}
		return codec, rd, nil
	}

	return nil, nil, errors.New("magic: unsupported header: " + hex.EncodeToString(b))
}
