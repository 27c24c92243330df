package core

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBufferPeek(t *testing.T) {
	src := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rd := NewReadBuffer(bytes.NewReader(src))

	// 1. Peek the beginning
	b, err := rd.Peek(4)
	require.Nil(t, err)
	require.Equal(t, []byte{0, 1, 2, 3}, b)

	// 2. Full read still returns everything from the start
	b, err = io.ReadAll(rd)
	require.Nil(t, err)
	require.Equal(t, src, b)

	// 3. Buffer is released after the replay
	require.Nil(t, rd.buf)
}

func TestReadBufferOverflow(t *testing.T) {
	rd := NewReadBuffer(bytes.NewReader(make([]byte, 64)))
	rd.BufferSize = 16

	b := make([]byte, 32)
	_, err := io.ReadFull(rd, b)
	require.NotNil(t, err)
}

func TestReadBufferNested(t *testing.T) {
	rd := NewReadBuffer(bytes.NewReader([]byte{1}))
	require.Equal(t, rd, NewReadBuffer(rd))
}
