package core

import (
	"bytes"
	"io"
	"sync"
)

// WriteBuffer collects consumer output until the destination is known.
// Write goes to memory until Reset swaps in the real writer,
// WriteTo blocks until the first write error or Close.
type WriteBuffer struct {
	io.Writer
	buf    *bytes.Buffer // scratch until Reset
	err    error
	n      int64
	mu     sync.Mutex
	wg     sync.WaitGroup
	state  byte
	closed bool
}

func NewWriteBuffer(wr io.Writer) *WriteBuffer {
	w := &WriteBuffer{}
	if wr == nil {
		w.buf = bytes.NewBuffer(nil)
		wr = w.buf
	}
	w.Writer = wr
	return w
}

func (w *WriteBuffer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	if w.err != nil {
		err = w.err
	} else if n, err = w.Writer.Write(p); err != nil {
		w.err = err
		w.done()
	} else {
		w.n += int64(n)
	}
	w.mu.Unlock()
	return
}

func (w *WriteBuffer) WriteTo(wr io.Writer) (n int64, err error) {
	w.Reset(wr)
	w.mu.Lock()
	if w.closed {
		w.done() // closed before WriteTo, nothing left to wait for
	}
	w.mu.Unlock()
	w.wg.Wait()
	w.mu.Lock()
	n = w.n
	err = w.err
	w.mu.Unlock()
	return
}

func (w *WriteBuffer) Close() error {
	w.mu.Lock()
	w.closed = true
	w.done()
	w.mu.Unlock()
	if closer, ok := w.Writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Reset swaps the destination and flushes everything buffered so far.
func (w *WriteBuffer) Reset(wr io.Writer) {
	w.mu.Lock()
	w.add()
	if w.buf != nil {
		if _, err := io.Copy(wr, w.buf); err != nil {
			w.err = err
			w.done()
		}
		w.buf = nil
	}
	w.Writer = wr
	w.mu.Unlock()
}

const (
	none = iota
	start
	end
)

func (w *WriteBuffer) add() {
	if w.state == none {
		w.state = start
		w.wg.Add(1)
	}
}

func (w *WriteBuffer) done() {
	if w.state == start {
		w.state = end
		w.wg.Done()
	}
}
