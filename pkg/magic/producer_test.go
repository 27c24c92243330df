package magic

import (
	"bytes"
	"io"
	"testing"

	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/rkpi2"
	"github.com/reekpie/rkpi2/pkg/wav"
	"github.com/stretchr/testify/require"
)

func rkpi2File(t *testing.T, payload []byte) []byte {
	buf := bytes.NewBuffer(nil)
	wr, err := rkpi2.Mux(buf, rkpi2.Header{Format: rkpi2.FormatS16, Rate: 8000, Channels: 1}, 0)
	require.Nil(t, err)
	_, err = wr.Write(payload)
	require.Nil(t, err)
	require.Nil(t, wr.Close())
	return buf.Bytes()
}

func wavFile(payload []byte) []byte {
	b := wav.Header(&core.Codec{Name: core.CodecU8, ClockRate: 8000, Channels: 1})
	return append(b, payload...)
}

func TestOpen(t *testing.T) {
	prod, err := Open(bytes.NewReader(rkpi2File(t, []byte{1, 2})))
	require.Nil(t, err)
	require.Equal(t, core.CodecS16, prod.GetMedias()[0].Codecs[0].Name)

	prod, err = Open(bytes.NewReader(wavFile([]byte{1, 2})))
	require.Nil(t, err)
	require.Equal(t, core.CodecU8, prod.GetMedias()[0].Codecs[0].Name)

	_, err = Open(bytes.NewReader([]byte("OggS....")))
	require.NotNil(t, err)
}

func TestUnpack(t *testing.T) {
	payload := []byte{10, 20, 30, 40}

	codec, rd, err := Unpack(bytes.NewReader(rkpi2File(t, payload)))
	require.Nil(t, err)
	require.Equal(t, &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}, codec)
	data, err := io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, payload, data)

	codec, rd, err = Unpack(bytes.NewReader(wavFile(payload)))
	require.Nil(t, err)
	require.Equal(t, &core.Codec{Name: core.CodecU8, ClockRate: 8000, Channels: 1}, codec)
	data, err = io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, payload, data)
}
