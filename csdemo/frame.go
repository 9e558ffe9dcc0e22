package csdemo

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/snappy"
)

// DemoCommand is the outer frame command tag, the low 6 bits of the frame's
// leading varint (the high bit flags Snappy compression).
type DemoCommand uint32

const (
	CmdStop               DemoCommand = 0
	CmdFileHeader         DemoCommand = 1
	CmdFileInfo           DemoCommand = 2
	CmdSyncTick           DemoCommand = 3
	CmdSendTables         DemoCommand = 4
	CmdClassInfo          DemoCommand = 5
	CmdStringTables       DemoCommand = 6
	CmdPacket             DemoCommand = 7
	CmdSignonPacket       DemoCommand = 8
	CmdConsoleCmd         DemoCommand = 9
	CmdCustomData         DemoCommand = 10
	CmdCustomDataCallback DemoCommand = 11
	CmdUserCmd            DemoCommand = 12
	CmdFullPacket         DemoCommand = 13
	CmdSaveGame           DemoCommand = 14
	CmdSpawnGroups        DemoCommand = 15
	CmdAnimationData      DemoCommand = 16
)

const demoCompressedFlag DemoCommand = 0x40

var demoMagicPBDEMS2 = []byte("PBDEMS2\x00")
var demoMagicHL2DEMO = []byte("HL2DEMO\x00")

const demoHeaderSize = 16

// Frame is one decoded {cmd, tick, payload} record from the frame stream.
type Frame struct {
	Cmd        DemoCommand
	Compressed bool
	Tick       int32
	Payload    []byte
	Offset     int64 // byte offset of this frame's cmd varint, for keyframe sharding
}

// FrameReader splits a demo file's body into a stream of Frames, transparently
// Snappy-decompressing any frame whose cmd varint has the high bit set. A
// single reusable scratch buffer bounds decompression: a frame whose
// decompressed size would exceed maxDecompressedSize fails with
// ErrCodeDecompressionFailure rather than growing unbounded.
type FrameReader struct {
	data                 []byte
	pos                  int
	maxDecompressedSize  int
	scratch              []byte
}

// NewFrameReader wraps the demo body (everything after the 16-byte file
// header) for frame iteration.
func NewFrameReader(body []byte, maxDecompressedSize int) *FrameReader {
	if maxDecompressedSize <= 0 {
		maxDecompressedSize = 64 << 20
	}
	return &FrameReader{data: body, maxDecompressedSize: maxDecompressedSize}
}

// ParseFileHeader validates and decodes the fixed 16-byte demo file header,
// returning the expected total file length encoded in it.
func ParseFileHeader(data []byte) (expectedLen uint32, err error) {
	if len(data) < demoHeaderSize {
		return 0, newParseError(ErrCodeOutOfBytes, "file shorter than header")
	}
	magic := data[:8]
	if bytes.Equal(magic, demoMagicHL2DEMO) {
		return 0, newParseError(ErrCodeSource1Demo, "Source 1 (HL2DEMO) demo is not supported")
	}
	if !bytes.Equal(magic, demoMagicPBDEMS2) {
		return 0, newParseError(ErrCodeUnknownFile, "unrecognized demo magic %q", magic)
	}
	raw := binary.LittleEndian.Uint32(data[8:12])
	return raw + 18, nil
}

// CheckDemoLength reports ErrCodeDemoEndsEarly when actualLen covers less
// than 90% of expectedLen.
func CheckDemoLength(actualLen int, expectedLen uint32) error {
	if expectedLen == 0 {
		return nil
	}
	pct := float64(actualLen) / float64(expectedLen) * 100
	if pct < 90 {
		return &ParseError{Code: ErrCodeDemoEndsEarly, Pct: pct}
	}
	return nil
}

// Next reads the next frame, or returns (nil, nil) at end of stream.
func (r *FrameReader) Next() (*Frame, error) {
	if r.pos >= len(r.data) {
		return nil, nil
	}
	start := r.pos

	b := NewBitReader(r.data[r.pos:])
	rawCmd, err := b.ReadVarint()
	if err != nil {
		return nil, newParseError(ErrCodeOutOfBytes, "truncated frame at offset %d", start)
	}
	compressed := rawCmd&uint32(demoCompressedFlag) != 0
	cmd := DemoCommand(rawCmd &^ uint32(demoCompressedFlag))

	tickRaw, err := b.ReadVarint()
	if err != nil {
		return nil, newParseError(ErrCodeOutOfBytes, "truncated frame tick at offset %d", start)
	}
	tick := int32(tickRaw)
	size, err := b.ReadVarint()
	if err != nil {
		return nil, newParseError(ErrCodeOutOfBytes, "truncated frame size at offset %d", start)
	}

	remainingSlice := r.data[r.pos:]
	headerLen := len(remainingSlice) - b.BitsLeft()/8
	payloadStart := r.pos + headerLen
	payloadEnd := payloadStart + int(size)
	if payloadEnd > len(r.data) {
		return nil, newParseError(ErrCodeOutOfBytes, "frame payload exceeds buffer at offset %d", start)
	}
	payload := r.data[payloadStart:payloadEnd]
	r.pos = payloadEnd

	if compressed {
		decoded, err := r.decompress(payload)
		if err != nil {
			return nil, err
		}
		payload = decoded
	}

	return &Frame{Cmd: cmd, Compressed: compressed, Tick: tick, Payload: payload, Offset: int64(start)}, nil
}

func (r *FrameReader) decompress(compressed []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(compressed)
	if err != nil {
		return nil, newParseError(ErrCodeDecompressionFailure, "snappy decoded-len: %v", err)
	}
	if n > r.maxDecompressedSize {
		return nil, newParseError(ErrCodeDecompressionFailure, "decompressed frame too large: %d bytes", n)
	}
	if cap(r.scratch) < n {
		r.scratch = make([]byte, n)
	}
	out, err := snappy.Decode(r.scratch[:n], compressed)
	if err != nil {
		return nil, newParseError(ErrCodeDecompressionFailure, "snappy decode: %v", err)
	}
	return out, nil
}
