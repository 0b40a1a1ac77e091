/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package frame_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvbus/kvbus/cmn"
	"github.com/kvbus/kvbus/frame"
	"github.com/kvbus/kvbus/wire"
)

func roundTrip(t *testing.T, req *wire.CommandRequest) *wire.CommandRequest {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, frame.EncodeFrame(req, &buf))

	payload, compressed, err := frame.ReadFrame(&buf)
	require.NoError(t, err)

	got, err := frame.DecodeFrame[*wire.CommandRequest](payload, compressed)
	require.NoError(t, err)
	return got
}

// TestRoundTripSmallUncompressed round-trips a payload below the
// compression threshold.
func TestRoundTripSmallUncompressed(t *testing.T) {
	req := wire.NewHGet("table1", "hello")
	got := roundTrip(t, req)
	assert.Equal(t, req, got)
}

// TestRoundTripLargeCompressed round-trips a payload large enough to
// trigger compression.
func TestRoundTripLargeCompressed(t *testing.T) {
	big := strings.Repeat("y", 2048)
	req := wire.NewHSet("table1", "big", cmn.StringValue(big))
	got := roundTrip(t, req)
	assert.Equal(t, req, got)
}

// TestHeaderFlagSetAboveThreshold checks the compression flag is set in
// the header once the payload crosses the threshold.
func TestHeaderFlagSetAboveThreshold(t *testing.T) {
	big := strings.Repeat("x", 4096)
	req := wire.NewHSet("t", "k", cmn.StringValue(big))

	var buf bytes.Buffer
	require.NoError(t, frame.EncodeFrame(req, &buf))

	header := binary.BigEndian.Uint32(buf.Bytes()[:4])
	assert.NotZero(t, header&0x80000000, "compression flag should be set for payloads > threshold")

	payload, compressed, err := frame.ReadFrame(&buf)
	require.NoError(t, err)
	require.True(t, compressed)

	got, err := frame.DecodeFrame[*wire.CommandRequest](payload, compressed)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

// TestHeaderFlagClearBelowThreshold checks the compression flag stays
// clear for a payload under the threshold.
func TestHeaderFlagClearBelowThreshold(t *testing.T) {
	req := wire.NewHGet("t", "k")
	var buf bytes.Buffer
	require.NoError(t, frame.EncodeFrame(req, &buf))

	header := binary.BigEndian.Uint32(buf.Bytes()[:4])
	assert.Zero(t, header&0x80000000)
}

func TestReadFrameUnexpectedEOFMidHeader(t *testing.T) {
	_, _, err := frame.ReadFrame(bytes.NewReader([]byte{0x00, 0x01}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrameUnexpectedEOFMidPayload(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], 10)
	buf := append(hdr[:], []byte("short")...)
	_, _, err := frame.ReadFrame(bytes.NewReader(buf))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, _, err := frame.ReadFrame(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

// TestTwoKilobytePayloadRoundTrips round-trips a multi-kilobyte payload
// through compression and back.
func TestTwoKilobytePayloadRoundTrips(t *testing.T) {
	payload := strings.Repeat("z", 2048)
	req := wire.NewHSet("t", "k", cmn.StringValue(payload))

	var buf bytes.Buffer
	require.NoError(t, frame.EncodeFrame(req, &buf))
	header := binary.BigEndian.Uint32(buf.Bytes()[:4])
	require.NotZero(t, header&0x80000000)

	got := roundTripFromBuf(t, &buf)
	assert.Equal(t, req, got)
}

func roundTripFromBuf(t *testing.T, buf *bytes.Buffer) *wire.CommandRequest {
	t.Helper()
	payload, compressed, err := frame.ReadFrame(buf)
	require.NoError(t, err)
	got, err := frame.DecodeFrame[*wire.CommandRequest](payload, compressed)
	require.NoError(t, err)
	return got
}
