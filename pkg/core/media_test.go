package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClone(t *testing.T) {
	media1 := &Media{
		Kind:      KindAudio,
		Direction: DirectionRecvonly,
		Codecs: []*Codec{
			{Name: CodecPCMU, ClockRate: 8000},
		},
	}
	media2 := media1.Clone()

	p1 := fmt.Sprintf("%p", media1)
	p2 := fmt.Sprintf("%p", media2)
	require.NotEqualValues(t, p1, p2)

	p3 := fmt.Sprintf("%p", media1.Codecs[0])
	p4 := fmt.Sprintf("%p", media2.Codecs[0])
	require.NotEqualValues(t, p3, p4)
}

func TestMatchMedia(t *testing.T) {
	prod := &Media{
		Kind: KindAudio, Direction: DirectionRecvonly,
		Codecs: []*Codec{
			{Name: CodecS16, ClockRate: 44100, Channels: 2},
		},
	}

	// consumer accepts anything
	cons := &Media{
		Kind: KindAudio, Direction: DirectionSendonly,
		Codecs: []*Codec{{Name: CodecAny}},
	}
	prodCodec, consCodec := prod.MatchMedia(cons)
	require.NotNil(t, prodCodec)
	require.Equal(t, CodecS16, prodCodec.Name)
	require.Equal(t, CodecAny, consCodec.Name)

	// consumer wants exact codec
	cons = &Media{
		Kind: KindAudio, Direction: DirectionSendonly,
		Codecs: []*Codec{
			{Name: CodecPCMA, ClockRate: 8000},
			{Name: CodecS16, ClockRate: 44100, Channels: 2},
		},
	}
	prodCodec, consCodec = prod.MatchMedia(cons)
	require.NotNil(t, prodCodec)
	require.Equal(t, CodecS16, consCodec.Name)

	// same direction shouldn't match
	cons = &Media{
		Kind: KindAudio, Direction: DirectionRecvonly,
		Codecs: []*Codec{{Name: CodecAny}},
	}
	prodCodec, _ = prod.MatchMedia(cons)
	require.Nil(t, prodCodec)
}
