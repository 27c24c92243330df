package rkpi2

import (
	"bytes"
	"io"
	"testing"

	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/stretchr/testify/require"
)

func muxFile(t *testing.T, h Header, level int, payload []byte) []byte {
	buf := bytes.NewBuffer(nil)
	wr, err := Mux(buf, h, level)
	require.Nil(t, err)
	_, err = wr.Write(payload)
	require.Nil(t, err)
	require.Nil(t, wr.Close())
	return buf.Bytes()
}

func runPipeline(t *testing.T, src []byte, cons *Consumer) []byte {
	prod, err := Open(bytes.NewReader(src))
	require.Nil(t, err)
	require.Nil(t, core.Connect(prod, cons))

	dst := bytes.NewBuffer(nil)
	done := make(chan struct{})
	go func() {
		_, _ = cons.WriteTo(dst)
		close(done)
	}()

	require.Nil(t, prod.Start())
	require.Nil(t, cons.Stop())
	<-done

	return dst.Bytes()
}

func TestPipeline(t *testing.T) {
	h := Header{Format: FormatS16, Rate: 8000, Channels: 1}

	payload := make([]byte, 1280) // two packets of 40ms
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	src := muxFile(t, h, 0, payload)

	dst := runPipeline(t, src, NewConsumer())
	require.Equal(t, src, dst)
}

func TestPipelineCompressed(t *testing.T) {
	h := Header{Format: FormatF32, Rate: 44100, Channels: 2}

	payload := make([]byte, 2*14112+100) // two packets plus a tail
	for i := range payload {
		payload[i] = byte(i)
	}
	src := muxFile(t, h, 0, payload)

	cons := NewConsumer()
	cons.Level = 5
	dst := runPipeline(t, src, cons)

	_, compressed, err := Probe(bytes.NewReader(dst))
	require.Nil(t, err)
	require.True(t, compressed)

	rd, h2, err := Demux(bytes.NewReader(dst))
	require.Nil(t, err)
	require.Equal(t, h, h2)

	data, err := io.ReadAll(rd)
	require.Nil(t, err)
	require.Nil(t, rd.Close())
	require.Equal(t, payload, data)
}

func TestPipelineTranscode(t *testing.T) {
	src := muxFile(
		t,
		Header{Format: FormatS16, Rate: 8000, Channels: 1}, 0,
		[]byte{0x00, 0x00, 0x00, 0x80, 0xFF, 0x7F},
	)

	cons := NewConsumer()
	cons.Target = &core.Codec{Name: core.CodecF32}
	dst := runPipeline(t, src, cons)

	rd, h, err := Demux(bytes.NewReader(dst))
	require.Nil(t, err)
	require.Equal(t, Header{Format: FormatF32, Rate: 8000, Channels: 1}, h)

	data, err := io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(
		t,
		[]byte{
			0x00, 0x00, 0x00, 0x00, // 0
			0x00, 0x00, 0x80, 0xBF, // -1
			0x00, 0xFE, 0x7F, 0x3F, // 32767/32768
		},
		data,
	)
}

func TestContainerCodec(t *testing.T) {
	// G.711 and U8 have no container format, S16 is the house default
	src := &core.Codec{Name: core.CodecPCMA, ClockRate: 8000, Channels: 1}
	require.Equal(t, &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}, ContainerCodec(src, nil))

	src = &core.Codec{Name: core.CodecU8, ClockRate: 8000, Channels: 1}
	require.Equal(t, core.CodecS16, ContainerCodec(src, nil).Name)

	// off-table rates snap to the nearest entry
	src = &core.Codec{Name: core.CodecS16, ClockRate: 48000, Channels: 2}
	require.Equal(t, uint32(44100), ContainerCodec(src, nil).ClockRate)

	// target fills only the fields it names
	src = &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}
	dst := ContainerCodec(src, &core.Codec{Name: core.CodecF64, ClockRate: 96000})
	require.Equal(t, &core.Codec{Name: core.CodecF64, ClockRate: 96000, Channels: 1}, dst)
}
