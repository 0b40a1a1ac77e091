// Package stream implements a framed duplex stream: a lazy inbound
// sequence plus an outbound sink layered over any bidirectional byte
// stream (net.Conn, TLS conn, or an in-memory pipe for tests).
//
// A Stream owns plain byte buffers, not slices into itself, so it is
// never self-referential and stays safely movable before first use. A
// single Stream is owned by exactly one goroutine; two independent
// Streams over two independent transports are fully independent.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package stream

import (
	"bytes"
	"io"

	"github.com/kvbus/kvbus/frame"
)

// Conn is the minimal duplex byte-stream capability a Stream needs.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Stream adapts Conn into a duplex sequence of typed In/Out messages.
type Stream[In any, Out any] struct {
	conn Conn

	// write side: plain owned buffer + partial-write counter, reset on
	// every successful flush.
	wbuf    bytes.Buffer
	written int
}

// New wraps conn as a framed duplex stream.
func New[In any, Out any](conn Conn) *Stream[In, Out] {
	return &Stream[In, Out]{conn: conn}
}

// Recv reads exactly one frame and decodes it as In. Returns io.EOF on a
// clean end-of-stream, io.ErrUnexpectedEOF on a truncated frame, or any
// other I/O/decode error. The read buffer (internal to frame.ReadFrame)
// is always empty when Recv is called and when it returns: callers never
// observe partial frames.
func (s *Stream[In, Out]) Recv() (In, error) {
	var zero In
	payload, compressed, err := frame.ReadFrame(s.conn)
	if err != nil {
		return zero, err
	}
	return frame.DecodeFrame[In](payload, compressed)
}

// Send encodes msg into the write buffer and flushes it to completion.
// No application-level backpressure is applied; Send always accepts.
func (s *Stream[In, Out]) Send(msg Out) error {
	s.wbuf.Reset()
	if err := frame.EncodeFrame(msg, &s.wbuf); err != nil {
		return err
	}
	return s.flush()
}

// flush writes the buffer to completion, tolerating partial writes via
// the written counter; on completion both reset.
func (s *Stream[In, Out]) flush() error {
	buf := s.wbuf.Bytes()
	for s.written < len(buf) {
		n, err := s.conn.Write(buf[s.written:])
		if n > 0 {
			s.written += n
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	s.wbuf.Reset()
	s.written = 0
	return nil
}

// Close flushes (best-effort) and shuts down the underlying transport.
func (s *Stream[In, Out]) Close() error {
	_ = s.flush()
	return s.conn.Close()
}
