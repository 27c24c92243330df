package app

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	Logger = zerolog.New(nil).Level(zerolog.InfoLevel)

	modules["rkpi2"] = "debug"
	defer delete(modules, "rkpi2")

	require.Equal(t, zerolog.DebugLevel, GetLogger("rkpi2").GetLevel())
	require.Equal(t, zerolog.InfoLevel, GetLogger("unknown").GetLevel())
}

func TestCircularBuffer(t *testing.T) {
	buf := newBuffer(2)

	_, err := buf.Write([]byte("hello"))
	require.Nil(t, err)
	_, err = buf.Write([]byte("world"))
	require.Nil(t, err)

	require.Equal(t, []byte("helloworld"), buf.Bytes())

	buf.Reset()
	require.Empty(t, buf.Bytes())
}

func TestCircularBufferWrap(t *testing.T) {
	buf := newBuffer(2)

	big := bytes.Repeat([]byte("x"), chunkSize-4)
	_, _ = buf.Write(big)
	_, _ = buf.Write([]byte("AAAAA")) // does not fit, opens the second chunk
	_, _ = buf.Write(big)            // wraps, drops the first chunk

	b := buf.Bytes()
	require.True(t, bytes.HasPrefix(b, []byte("AAAAA")))
	require.Len(t, b, 5+chunkSize-4)
}
