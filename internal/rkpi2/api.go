package rkpi2

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reekpie/rkpi2/internal/api"
	"github.com/reekpie/rkpi2/internal/streams"
	"github.com/reekpie/rkpi2/pkg/core"
	"github.com/reekpie/rkpi2/pkg/magic"
	"github.com/reekpie/rkpi2/pkg/pcm"
	"github.com/reekpie/rkpi2/pkg/rkpi2"
	"github.com/reekpie/rkpi2/pkg/wav"
)

const (
	MimeWav   = "audio/wav"
	MimeRkpi2 = "audio/x-rkpi2"
)

func apiProbe(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "no src", http.StatusBadRequest)
		return
	}

	rd, err := streams.Open(src)
	if err != nil {
		api.Error(w, err)
		return
	}
	defer rd.Close()

	rb := core.NewReadBuffer(rd)

	b, err := rb.Peek(2)
	if err != nil {
		api.Error(w, err)
		return
	}

	info := map[string]any{"source": src}

	if b[0]>>2 == rkpi2.StartCode {
		header, compressed, err := rkpi2.Probe(rb)
		if err != nil {
			api.Error(w, err)
			return
		}

		info["container"] = "rkpi2"
		info["codec"] = header.Format.CodecName()
		info["rate"] = header.Rate
		info["channels"] = header.Channels
		info["compressed"] = compressed
	} else {
		if b, err = rb.Peek(4); err != nil {
			api.Error(w, err)
			return
		}
		if string(b) != wav.FourCC {
			http.Error(w, "unsupported container", http.StatusBadRequest)
			return
		}

		codec, err := wav.ReadHeader(rb)
		if err != nil {
			api.Error(w, err)
			return
		}
		if codec.Name == "" {
			http.Error(w, "unsupported wav codec", http.StatusBadRequest)
			return
		}

		info["container"] = "wav"
		info["codec"] = codec.Name
		info["rate"] = codec.ClockRate
		info["channels"] = codec.Channels
	}

	api.ResponseJSON(w, info)
}

func apiStreamWav(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	src := query.Get("src")
	if src == "" {
		http.Error(w, "no src", http.StatusBadRequest)
		return
	}

	rd, err := streams.Open(src)
	if err != nil {
		api.Error(w, err)
		return
	}
	defer rd.Close()

	prod, err := openProducer(rd, query)
	if err != nil {
		api.Error(w, err)
		return
	}

	// wav bends any requested codec to what it can express,
	// so the target params are parsed without complaint
	cons := wav.NewConsumer()
	cons.Target = core.ParseCodec(strings.ToLower(query.Get("format")), query.Get("rate"), query.Get("channels"))
	cons.WithRequest(r)

	if err = core.Connect(prod, cons); err != nil {
		api.Error(w, err)
		return
	}

	// stop producing when the client goes away
	go func() {
		<-r.Context().Done()
		_ = prod.Stop()
	}()

	w.Header().Set("Content-Type", MimeWav)

	done := make(chan struct{})
	go func() {
		if err := prod.Start(); err != nil {
			log.Warn().Err(err).Caller().Send()
		}
		_ = cons.Stop()
		close(done)
	}()

	_, _ = cons.WriteTo(w)
	<-done
	_ = prod.Stop()
}

func apiStreamRkpi2(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		getStreamRkpi2(w, r)
	case "POST":
		postStreamRkpi2(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusBadRequest)
	}
}

func getStreamRkpi2(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	src := query.Get("src")
	if src == "" {
		http.Error(w, "no src", http.StatusBadRequest)
		return
	}

	target, level, err := parseTarget(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rd, err := streams.Open(src)
	if err != nil {
		api.Error(w, err)
		return
	}
	defer rd.Close()

	prod, err := openProducer(rd, query)
	if err != nil {
		api.Error(w, err)
		return
	}

	cons := rkpi2.NewConsumer()
	cons.Level = level
	cons.Target = target
	cons.WithRequest(r)

	if err = core.Connect(prod, cons); err != nil {
		api.Error(w, err)
		return
	}

	// stop producing when the client goes away
	go func() {
		<-r.Context().Done()
		_ = prod.Stop()
	}()

	w.Header().Set("Content-Type", MimeRkpi2)

	done := make(chan struct{})
	go func() {
		if err := prod.Start(); err != nil {
			log.Warn().Err(err).Caller().Send()
		}
		_ = cons.Stop()
		close(done)
	}()

	_, _ = cons.WriteTo(w)
	<-done
	_ = prod.Stop()
}

func postStreamRkpi2(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dst := query.Get("dst")
	if dst == "" {
		http.Error(w, "no dst", http.StatusBadRequest)
		return
	}

	target, level, err := parseTarget(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	codec, payload, err := magic.Unpack(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer payload.Close()

	wr, err := streams.Create(dst)
	if err != nil {
		api.Error(w, err)
		return
	}

	n, err := pack(wr, codec, payload, target, level)
	if closeErr := wr.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		api.Error(w, err)
		return
	}

	api.ResponseJSON(w, map[string]any{"dst": streams.Location(dst), "bytes": n})
}

// openProducer - sync=1 releases packets at the audio clock pace,
// like a live source, everything else reads as fast as possible
func openProducer(rd io.Reader, query url.Values) (core.Producer, error) {
	if query.Get("sync") == "1" {
		codec, payload, err := magic.Unpack(rd)
		if err != nil {
			return nil, err
		}
		return pcm.OpenSync(codec, payload), nil
	}

	return magic.Open(rd)
}

// pack muxes a demuxed PCM stream straight into w, no packetization
// in between, so ingest keeps every byte
func pack(w io.Writer, src *core.Codec, payload io.Reader, target *core.Codec, level int) (int64, error) {
	dst := rkpi2.ContainerCodec(src, target)

	header, err := rkpi2.HeaderOf(dst)
	if err != nil {
		return 0, err
	}

	mux, err := rkpi2.Mux(w, header, level)
	if err != nil {
		return 0, err
	}

	transcode := pcm.Transcode(dst, src)

	buf := make([]byte, pcm.BytesPerDuration(src, 40*time.Millisecond))
	if len(buf) == 0 {
		return 0, errors.New("rkpi2: wrong codec: " + src.String())
	}

	var total int64
	for {
		n, err := io.ReadFull(payload, buf)
		if n > 0 {
			b := transcode(buf[:n])
			if _, werr := mux.Write(b); werr != nil {
				_ = mux.Close()
				return total, werr
			}
			total += int64(len(b))
		}

		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return total, mux.Close()
		default:
			_ = mux.Close()
			return total, err
		}
	}
}

func parseTarget(query url.Values) (*core.Codec, int, error) {
	level := defaultLevel
	if s := query.Get("level"); s != "" {
		var err error
		if level, err = strconv.Atoi(s); err != nil {
			return nil, 0, errors.New("rkpi2: wrong level: " + s)
		}
	}

	var target core.Codec

	if s := query.Get("format"); s != "" {
		f, ok := rkpi2.ParseFormat(s)
		if !ok {
			return nil, 0, errors.New("rkpi2: unsupported format: " + s)
		}
		target.Name = f.CodecName()
	}

	if s := query.Get("rate"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, 0, errors.New("rkpi2: wrong rate: " + s)
		}
		if rate := uint32(n); rkpi2.NearestRate(rate) == rate {
			target.ClockRate = rate
		} else {
			return nil, 0, errors.New("rkpi2: unsupported rate: " + s)
		}
	}

	if s := query.Get("channels"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > rkpi2.MaxChannels {
			return nil, 0, errors.New("rkpi2: wrong channels: " + s)
		}
		target.Channels = uint16(n)
	}

	if target == (core.Codec{}) {
		return nil, level, nil
	}
	return &target, level, nil
}
