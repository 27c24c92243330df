package rkpi2

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/pcm"
	"github.com/reekpie/rkpi2/pkg/rkpi2"
	"github.com/reekpie/rkpi2/pkg/wav"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, data, 0644))
	return path
}

func rkpi2File(t *testing.T, h rkpi2.Header, level int, payload []byte) []byte {
	buf := bytes.NewBuffer(nil)
	wr, err := rkpi2.Mux(buf, h, level)
	require.Nil(t, err)
	_, err = wr.Write(payload)
	require.Nil(t, err)
	require.Nil(t, wr.Close())
	return buf.Bytes()
}

func wavFile(codec *core.Codec, payload []byte) []byte {
	return append(wav.Header(codec), payload...)
}

func TestApiProbe(t *testing.T) {
	h := rkpi2.Header{Format: rkpi2.FormatS16, Rate: 44100, Channels: 2}
	path := writeFile(t, "src.rkpi2", rkpi2File(t, h, 3, make([]byte, 1764*4)))

	r := httptest.NewRequest("GET", "/api/probe?src="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	apiProbe(w, r)
	require.Equal(t, 200, w.Code)

	var info map[string]any
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.Equal(t, "rkpi2", info["container"])
	require.Equal(t, "S16LE", info["codec"])
	require.Equal(t, float64(44100), info["rate"])
	require.Equal(t, float64(2), info["channels"])
	require.Equal(t, true, info["compressed"])

	codec := &core.Codec{Name: core.CodecPCMA, ClockRate: 8000, Channels: 1}
	path = writeFile(t, "src.wav", wavFile(codec, make([]byte, 320)))

	r = httptest.NewRequest("GET", "/api/probe?src="+url.QueryEscape(path), nil)
	w = httptest.NewRecorder()
	apiProbe(w, r)
	require.Equal(t, 200, w.Code)

	var info2 map[string]any
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &info2))
	require.Equal(t, "wav", info2["container"])
	require.Equal(t, "PCMA", info2["codec"])
	require.Equal(t, float64(8000), info2["rate"])

	path = writeFile(t, "src.ogg", []byte("OggS\x00\x00\x00\x00"))
	r = httptest.NewRequest("GET", "/api/probe?src="+url.QueryEscape(path), nil)
	w = httptest.NewRecorder()
	apiProbe(w, r)
	require.Equal(t, 400, w.Code)
}

func TestApiStreamWav(t *testing.T) {
	codec := &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}
	payload := make([]byte, 1280)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	h := rkpi2.Header{Format: rkpi2.FormatS16, Rate: 8000, Channels: 1}
	path := writeFile(t, "src.rkpi2", rkpi2File(t, h, 0, payload))

	r := httptest.NewRequest("GET", "/api/stream.wav?src="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	apiStreamWav(w, r)

	require.Equal(t, 200, w.Code)
	require.Equal(t, MimeWav, w.Header().Get("Content-Type"))
	require.Equal(t, wavFile(codec, payload), w.Body.Bytes())

	// F32 target
	r = httptest.NewRequest("GET", "/api/stream.wav?format=f32&src="+url.QueryEscape(path), nil)
	w = httptest.NewRecorder()
	apiStreamWav(w, r)

	require.Equal(t, 200, w.Code)
	dst := &core.Codec{Name: core.CodecF32, ClockRate: 8000, Channels: 1}
	require.Equal(t, wavFile(dst, pcm.Transcode(dst, codec)(payload)), w.Body.Bytes())
}

func TestApiStreamWavSync(t *testing.T) {
	codec := &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}
	payload := make([]byte, 1280)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	h := rkpi2.Header{Format: rkpi2.FormatS16, Rate: 8000, Channels: 1}
	path := writeFile(t, "src.rkpi2", rkpi2File(t, h, 0, payload))

	r := httptest.NewRequest("GET", "/api/stream.wav?sync=1&src="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	apiStreamWav(w, r)

	require.Equal(t, 200, w.Code)
	require.Equal(t, wavFile(codec, payload), w.Body.Bytes())
}

func TestApiStreamRkpi2(t *testing.T) {
	codec := &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}
	payload := make([]byte, 1280)
	for i := range payload {
		payload[i] = byte(i * 5)
	}
	path := writeFile(t, "src.wav", wavFile(codec, payload))

	// identity target, raw level
	r := httptest.NewRequest("GET", "/api/stream.rkpi2?src="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	apiStreamRkpi2(w, r)

	require.Equal(t, 200, w.Code)
	require.Equal(t, MimeRkpi2, w.Header().Get("Content-Type"))

	rd, h, err := rkpi2.Demux(bytes.NewReader(w.Body.Bytes()))
	require.Nil(t, err)
	require.Equal(t, rkpi2.Header{Format: rkpi2.FormatS16, Rate: 8000, Channels: 1}, h)
	data, err := io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, payload, data)

	// F32 target with compression
	r = httptest.NewRequest("GET", "/api/stream.rkpi2?format=f32&level=3&src="+url.QueryEscape(path), nil)
	w = httptest.NewRecorder()
	apiStreamRkpi2(w, r)
	require.Equal(t, 200, w.Code)

	_, compressed, err := rkpi2.Probe(bytes.NewReader(w.Body.Bytes()))
	require.Nil(t, err)
	require.True(t, compressed)

	rd, h, err = rkpi2.Demux(bytes.NewReader(w.Body.Bytes()))
	require.Nil(t, err)
	require.Equal(t, rkpi2.Header{Format: rkpi2.FormatF32, Rate: 8000, Channels: 1}, h)
	data, err = io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, pcm.Transcode(h.Codec(), codec)(payload), data)
}

func TestApiStreamRkpi2BadQuery(t *testing.T) {
	for _, q := range []string{"rate=11025", "format=mp3", "channels=9", "level=x"} {
		r := httptest.NewRequest("GET", "/api/stream.rkpi2?src=whatever&"+q, nil)
		w := httptest.NewRecorder()
		apiStreamRkpi2(w, r)
		require.Equal(t, 400, w.Code, q)
	}
}

func TestApiPostRkpi2(t *testing.T) {
	codec := &core.Codec{Name: core.CodecS16, ClockRate: 8000, Channels: 1}
	payload := make([]byte, 1000) // not a whole number of chunks
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	dst := filepath.Join(t.TempDir(), "out.rkpi2")

	body := bytes.NewReader(wavFile(codec, payload))
	r := httptest.NewRequest("POST", "/api/stream.rkpi2?level=1&dst="+url.QueryEscape(dst), body)
	w := httptest.NewRecorder()
	apiStreamRkpi2(w, r)

	require.Equal(t, 200, w.Code)

	var res map[string]any
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, float64(1000), res["bytes"])

	data, err := os.ReadFile(dst)
	require.Nil(t, err)

	_, compressed, err := rkpi2.Probe(bytes.NewReader(data))
	require.Nil(t, err)
	require.True(t, compressed)

	rd, h, err := rkpi2.Demux(bytes.NewReader(data))
	require.Nil(t, err)
	require.Equal(t, rkpi2.Header{Format: rkpi2.FormatS16, Rate: 8000, Channels: 1}, h)

	got, err := io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, payload, got)

	// garbage body
	r = httptest.NewRequest("POST", "/api/stream.rkpi2?dst="+url.QueryEscape(dst), bytes.NewReader([]byte("MP3.....")))
	w = httptest.NewRecorder()
	apiStreamRkpi2(w, r)
	require.Equal(t, 400, w.Code)
}
