package core

const (
	DirectionRecvonly = "recvonly"
	DirectionSendonly = "sendonly"
)

const KindAudio = "audio"

// Raw PCM codec names. Payload byte order is little endian everywhere,
// same as RKPI2 and WAV payloads.
const (
	CodecS8  = "S8"
	CodecU8  = "U8" // WAV 8-bit is unsigned
	CodecS16 = "S16LE"
	CodecS32 = "S32LE"
	CodecS64 = "S64LE"
	CodecF32 = "F32LE"
	CodecF64 = "F64LE"

	CodecPCMA = "PCMA" // G.711 A-law
	CodecPCMU = "PCMU" // G.711 mu-law

	CodecAny = "ANY"
)

type Producer interface {
	// GetMedias - return Media(s) with local Media.Direction:
	// - recvonly for Producer audio
	GetMedias() []*Media

	// GetTrack - return Receiver, that can only produce rtp.Packet(s)
	GetTrack(media *Media, codec *Codec) (*Receiver, error)

	Start() error
	Stop() error
}

type Consumer interface {
	// GetMedias - return Media(s) with local Media.Direction:
	// - sendonly for Consumer audio
	GetMedias() []*Media

	AddTrack(media *Media, codec *Codec, track *Receiver) error

	Stop() error
}
