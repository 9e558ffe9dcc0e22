package csdemo

import "testing"

func TestHuffmanStopSymbol(t *testing.T) {
	// Stop symbol 39 has code "10" (2 bits, MSB-first in consumption
	// order): first bit 1, second bit 0. Packed LSB-first as a byte that's
	// bit0=1, bit1=0 -> 0x01.
	b := NewBitReader([]byte{0x01})
	peek, err := b.Peek(huffmanPeekBits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, codeLen := huffmanLookup(uint32(peek))
	if sym != fieldPathStopSymbol {
		t.Errorf("got symbol %d, want stop symbol %d", sym, fieldPathStopSymbol)
	}
	if codeLen != 2 {
		t.Errorf("got code length %d, want 2", codeLen)
	}
}

func TestHuffmanZeroSymbol(t *testing.T) {
	// Symbol 0 has code "0": a single zero bit.
	b := NewBitReader([]byte{0x00})
	peek, err := b.Peek(huffmanPeekBits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, codeLen := huffmanLookup(uint32(peek))
	if sym != 0 {
		t.Errorf("got symbol %d, want 0", sym)
	}
	if codeLen != 1 {
		t.Errorf("got code length %d, want 1", codeLen)
	}
}

func TestDecodeFieldPathsStopsImmediately(t *testing.T) {
	// A stream that is just the stop symbol should decode to zero paths.
	b := NewBitReader([]byte{0x01})
	paths, err := DecodeFieldPaths(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("got %d paths, want 0", len(paths))
	}
}

func TestFieldPathPlusOneOp(t *testing.T) {
	fp := newFieldPath()
	if err := fpPlusOne(nil, &fp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.Path[0] != 0 {
		t.Errorf("got %d, want 0", fp.Path[0])
	}
}

func TestFieldPathPushOneLeftDeltaZeroRightZero(t *testing.T) {
	fp := newFieldPath()
	if err := fpPushOneLeftDeltaZeroRightZero(nil, &fp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.Last != 1 {
		t.Errorf("got last=%d, want 1", fp.Last)
	}
	if fp.Path[1] != 0 {
		t.Errorf("got path[1]=%d, want 0", fp.Path[1])
	}
}

func TestFieldPathPopAllButOnePlusOne(t *testing.T) {
	fp := newFieldPath()
	fp.Last = 3
	fp.Path[0] = 5
	if err := fpPopAllButOnePlusOne(nil, &fp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.Last != 0 {
		t.Errorf("got last=%d, want 0", fp.Last)
	}
	if fp.Path[0] != 6 {
		t.Errorf("got path[0]=%d, want 6", fp.Path[0])
	}
}
