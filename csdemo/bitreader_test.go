package csdemo

import "testing"

func TestBitReaderEOF(t *testing.T) {
	b := NewBitReader([]byte{})
	if !b.EOF() {
		t.Error("EOF falsely NOT reported.")
	}

	b = NewBitReader([]byte{1, 2, 3})
	if b.EOF() {
		t.Error("EOF falsely reported.")
	}
	if _, err := b.ReadNBits(24); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.EOF() {
		t.Error("EOF falsely NOT reported.")
	}
}

func TestReadNBitsLittleEndian(t *testing.T) {
	// 0xAA = 1010_1010, bit 0 first (LSB first): 0,1,0,1,0,1,0,1
	b := NewBitReader([]byte{0xAA})
	for _, want := range []bool{false, true, false, true, false, true, false, true} {
		got, err := b.ReadBoolean()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestReadNBitsAcrossBytes(t *testing.T) {
	b := NewBitReader([]byte{0xFF, 0x01})
	v, err := b.ReadNBits(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1FF {
		t.Errorf("got %#x, want %#x", v, 0x1FF)
	}
}

func TestReadVarint(t *testing.T) {
	// 300 encoded as varint: 0xAC 0x02
	b := NewBitReader([]byte{0xAC, 0x02})
	v, err := b.ReadVarint()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 300 {
		t.Errorf("got %d, want 300", v)
	}
}

func TestReadVarint32ZigZag(t *testing.T) {
	cases := []struct {
		raw  []byte
		want int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, -1},
		{[]byte{0x02}, 1},
		{[]byte{0x03}, -2},
	}
	for _, c := range cases {
		b := NewBitReader(c.raw)
		v, err := b.ReadVarint32()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != c.want {
			t.Errorf("got %d, want %d", v, c.want)
		}
	}
}

func TestReadUBitVarBranch00(t *testing.T) {
	// pattern "00 xxxx": top 2 bits of the 6-bit read are the mantissa
	// selector (0 => no extra bits), low 4 bits xxxx are the mantissa,
	// and since bits come out LSB-first the byte 0b00_1101 == 0x0D
	// yields selector 00 and mantissa 1101 = 13.
	b := NewBitReader([]byte{0x0D})
	v, err := b.ReadUBitVar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 13 {
		t.Errorf("got %d, want 13", v)
	}
}

func TestReadUBitVarFPBranches(t *testing.T) {
	// First branch: leading 1 bit then 2 bits -> 3 bit stream 1,0,1 (LSB first); the 2-bit read is 0b10 = 2
	b := NewBitReader([]byte{0b00000_101})
	v, err := b.ReadUBitVarFP()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2 {
		t.Errorf("got %d, want 2", v)
	}
}

func TestAmmoDecoderZero(t *testing.T) {
	b := NewBitReader([]byte{0x00})
	v, err := decodeAmmo(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Errorf("ammo decoder must return 0 for raw varint 0, got %d", v)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	b := NewBitReader([]byte{0xAA, 0x55})
	p1, err := b.Peek(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := b.Peek(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Errorf("peek must not consume: got %#x then %#x", p1, p2)
	}
	b.Consume(8)
	p3, err := b.Peek(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p3 != 0x55 {
		t.Errorf("got %#x, want 0x55", p3)
	}
}
