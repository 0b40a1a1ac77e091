// Package frame implements the wire frame format: a 4-byte big-endian
// header (high bit = compression flag, low 31 bits = payload length)
// followed by the payload, optionally gzip-compressed via
// klauspost/compress when the payload exceeds CompressionThreshold.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	jsoniter "github.com/json-iterator/go"

	"github.com/kvbus/kvbus/cmn"
)

const (
	headerSize = 4

	compressionFlag uint32 = 1 << 31
	lengthMask      uint32 = 1<<31 - 1

	// CompressionThreshold is the payload size (bytes) above which the
	// frame body is compressed. Conservative Ethernet-MTU-minus-headers
	// figure. Bodies of exactly CompressionThreshold bytes are left
	// uncompressed; only bodies strictly larger are compressed.
	CompressionThreshold = 1436

	// MaxPayloadLen is the largest payload a frame header can describe:
	// 2^31-1 bytes.
	MaxPayloadLen = int(lengthMask)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeFrame serialises msg to its canonical binary form (JSON via
// json-iterator), compresses it if it exceeds CompressionThreshold, and
// writes the 4-byte header followed by the body into out.
func EncodeFrame[T any](msg T, out *bytes.Buffer) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return &cmn.EncodeError{Err: err}
	}

	compressed := false
	if len(body) > CompressionThreshold {
		var gzBuf bytes.Buffer
		gw := gzip.NewWriter(&gzBuf)
		if _, err := gw.Write(body); err != nil {
			return &cmn.EncodeError{Err: fmt.Errorf("gzip write: %w", err)}
		}
		if err := gw.Close(); err != nil {
			return &cmn.EncodeError{Err: fmt.Errorf("gzip close: %w", err)}
		}
		body = gzBuf.Bytes()
		compressed = true
	}

	if len(body) > MaxPayloadLen {
		return &cmn.EncodeError{Err: fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))}
	}

	header := uint32(len(body))
	if compressed {
		header |= compressionFlag
	}

	var hdr [headerSize]byte
	binary.BigEndian.PutUint32(hdr[:], header)
	out.Write(hdr[:])
	out.Write(body)
	return nil
}

// DecodeFrame parses a complete frame payload (header already stripped by
// ReadFrame) into T, decompressing first if compressed is set.
func DecodeFrame[T any](payload []byte, compressed bool) (T, error) {
	var zero T
	if compressed {
		gr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return zero, &cmn.DecodeError{Err: fmt.Errorf("gzip reader: %w", err)}
		}
		defer gr.Close()
		decompressed, err := io.ReadAll(gr)
		if err != nil {
			return zero, &cmn.DecodeError{Err: fmt.Errorf("gzip read: %w", err)}
		}
		payload = decompressed
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, &cmn.DecodeError{Err: err}
	}
	return out, nil
}

// ReadFrame reads exactly one frame from r: a 4-byte header followed by
// the declared payload length. It returns the raw (still-compressed, if
// flagged) payload bytes and whether the compression flag was set.
//
// End-of-stream before any header byte returns io.EOF; end-of-stream
// mid-header or mid-payload returns io.ErrUnexpectedEOF; any other I/O
// error propagates unchanged.
func ReadFrame(r io.Reader) (payload []byte, compressed bool, err error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, false, io.ErrUnexpectedEOF
		}
		return nil, false, err
	}

	header := binary.BigEndian.Uint32(hdr[:])
	compressed = header&compressionFlag != 0
	length := header & lengthMask
	if length > uint32(MaxPayloadLen) {
		return nil, false, &cmn.FrameError{Op: "read-header", Err: ErrFrameTooLarge}
	}

	payload = make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, false, io.ErrUnexpectedEOF
			}
			return nil, false, err
		}
	}
	return payload, compressed, nil
}

// WriteRaw writes a pre-built frame (header+body) verbatim.
func WriteRaw(w io.Writer, buf *bytes.Buffer) error {
	_, err := w.Write(buf.Bytes())
	return err
}
