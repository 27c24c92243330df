package core

import (
	"io"
	"net/http"
	"sync/atomic"
)

func NewID() uint32 {
	return id.Add(1)
}

var id atomic.Uint32

// Connection - base struct for all producers and consumers
// - ID and RemoteAddr used for info about Connection
// - FormatName and Protocol has FFmpeg compatible names
// - Transport used for auto closing on Stop
type Connection struct {
	ID         uint32 `json:"id,omitempty"`
	FormatName string `json:"format_name,omitempty"` // rkpi2, wav, pcm...
	Protocol   string `json:"protocol,omitempty"`    // file, pipe, http, ws...
	RemoteAddr string `json:"remote_addr,omitempty"`
	Source     string `json:"source,omitempty"`
	URL        string `json:"url,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`

	Medias    []*Media    `json:"medias,omitempty"`
	Receivers []*Receiver `json:"receivers,omitempty"`
	Senders   []*Sender   `json:"senders,omitempty"`
	Recv      int         `json:"bytes_recv,omitempty"`
	Send      int         `json:"bytes_send,omitempty"`

	Transport any `json:"-"`
}

func (c *Connection) GetMedias() []*Media {
	return c.Medias
}

func (c *Connection) GetTrack(media *Media, codec *Codec) (*Receiver, error) {
	for _, receiver := range c.Receivers {
		if receiver.Codec == codec {
			return receiver, nil
		}
	}
	receiver := NewReceiver(media, codec)
	c.Receivers = append(c.Receivers, receiver)
	return receiver, nil
}

func (c *Connection) Stop() error {
	for _, receiver := range c.Receivers {
		receiver.Close()
	}
	for _, sender := range c.Senders {
		sender.Close()
	}
	if closer, ok := c.Transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Connection) SetProtocol(s string) {
	c.Protocol = s
}

func (c *Connection) SetSource(s string) {
	c.Source = s
}

func (c *Connection) WithRequest(r *http.Request) {
	if r.Header.Get("Upgrade") == "websocket" {
		c.Protocol = "ws"
	} else {
		c.Protocol = "http"
	}

	c.RemoteAddr = r.RemoteAddr
	if remote := r.Header.Get("X-Forwarded-For"); remote != "" {
		c.RemoteAddr += " forwarded " + remote
	}

	c.UserAgent = r.UserAgent()
}
