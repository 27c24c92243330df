package wav

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/reekpie/rkpi2/pkg/core"
)

// Header - streaming WAV header for a raw PCM codec, sizes are left
// at 0xFFFFFFFF because the total length is unknown in advance
func Header(codec *core.Codec) []byte {
	var format, size, extra byte

	switch codec.Name {
	case core.CodecU8:
		format = 1
		size = 1
	case core.CodecS16:
		format = 1
		size = 2
	case core.CodecS32:
		format = 1
		size = 4
	case core.CodecS64:
		format = 1
		size = 8
	case core.CodecF32:
		format = 3
		size = 4
		extra = 2
	case core.CodecF64:
		format = 3
		size = 8
		extra = 2
	case core.CodecPCMA:
		format = 6
		size = 1
		extra = 2
	case core.CodecPCMU:
		format = 7
		size = 1
		extra = 2
	default:
		return nil
	}

	channels := byte(codec.Channels)
	if channels == 0 {
		channels = 1
	}

	b := make([]byte, 0, 46) // cap with extra
	b = append(b, "RIFF\xFF\xFF\xFF\xFFWAVEfmt "...)

	b = append(b, 0x10+extra, 0, 0, 0)
	b = append(b, format, 0)
	b = append(b, channels, 0)
	b = binary.LittleEndian.AppendUint32(b, codec.ClockRate)
	b = binary.LittleEndian.AppendUint32(b, uint32(size)*uint32(channels)*codec.ClockRate)
	b = binary.LittleEndian.AppendUint16(b, uint16(size)*uint16(channels))
	b = append(b, size*8, 0)
	if extra > 0 {
		b = append(b, 0, 0) // ExtraParamSize (if PCM, then doesn't exist)
	}

	b = append(b, "data\xFF\xFF\xFF\xFF"...)

	return b
}

// ReadHeader walks the RIFF chunks until the data chunk and maps the
// fmt chunk to a raw PCM codec. Unsupported formats come back with an
// empty codec name.
func ReadHeader(r io.Reader) (*core.Codec, error) {
	// skip Master RIFF chunk
	if _, err := io.ReadFull(r, make([]byte, 12)); err != nil {
		return nil, err
	}

	var codec core.Codec

	for {
		chunkID, data, err := readChunk(r)
		if err != nil {
			return nil, err
		}

		if chunkID == "data" {
			break
		}

		if chunkID == "fmt " {
			// https://audiocoding.cc/articles/2008-05-22-wav-file-structure/wav_formats.txt
			if len(data) < 16 {
				return nil, errors.New("wav: wrong fmt chunk")
			}

			bits := data[14]

			switch data[0] {
			case 1: // integer PCM
				switch bits {
				case 8:
					codec.Name = core.CodecU8
				case 16:
					codec.Name = core.CodecS16
				case 32:
					codec.Name = core.CodecS32
				case 64:
					codec.Name = core.CodecS64
				}
			case 3: // IEEE float
				switch bits {
				case 32:
					codec.Name = core.CodecF32
				case 64:
					codec.Name = core.CodecF64
				}
			case 6:
				codec.Name = core.CodecPCMA
			case 7:
				codec.Name = core.CodecPCMU
			}

			codec.Channels = uint16(data[2])
			codec.ClockRate = binary.LittleEndian.Uint32(data[4:])
		}
	}

	return &codec, nil
}

func readChunk(r io.Reader) (chunkID string, data []byte, err error) {
	b := make([]byte, 8)
	if _, err = io.ReadFull(r, b); err != nil {
		return
	}

	if chunkID = string(b[:4]); chunkID != "data" {
		size := binary.LittleEndian.Uint32(b[4:])
		if size > 0x100000 {
			return "", nil, errors.New("wav: chunk too big")
		}
		data = make([]byte, size)
		_, err = io.ReadFull(r, data)
	}

	return
}
