package csdemo

import "testing"

// packBits packs single bits LSB-first into bytes, the order BitReader
// consumes them.
func packBits(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func TestDecodeVectorNormalPresenceBitsFirst(t *testing.T) {
	// has_x=1, has_y=1, then the x body (sign + 11 bits, raw=1 negated),
	// then the y body (raw=2), then neg_z.
	bits := []byte{
		1, 1, // has_x, has_y
		1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // x: neg=1, 11-bit raw=1
		0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, // y: neg=0, 11-bit raw=2
		1, // neg_z
	}
	if len(bits) != 2+12+12+1 {
		t.Fatalf("test stream is %d bits, want 27", len(bits))
	}
	b := NewBitReader(packBits(bits))

	v, err := decodeVectorNormal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scale := 1.0/(1<<11) - 1.0
	wantX := -float32(1 * scale)
	wantY := float32(2 * scale)
	if v[0] != wantX {
		t.Errorf("x = %v, want %v", v[0], wantX)
	}
	if v[1] != wantY {
		t.Errorf("y = %v, want %v", v[1], wantY)
	}
	// x^2 + y^2 > 1 clamps z to 0; neg_z makes it -0.
	if v[2] != 0 {
		t.Errorf("z = %v, want 0", v[2])
	}
}

func TestDecodeVectorNormalAbsentComponents(t *testing.T) {
	// Neither component present: only three bits total are consumed.
	b := NewBitReader(packBits([]byte{0, 0, 1}))

	v, err := decodeVectorNormal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v[0] != 0 || v[1] != 0 {
		t.Errorf("got x=%v y=%v, want both 0", v[0], v[1])
	}
	if v[2] != -1 {
		t.Errorf("z = %v, want -1", v[2])
	}
}

func TestDecodeQanglePresPresenceBitsFirst(t *testing.T) {
	// has_x=1, has_y=0, has_z=1, then a 20-bit angle per present component.
	bits := []byte{1, 0, 1}
	for i := 0; i < 40; i++ { // two 20-bit bodies, all zero -> -180.0
		bits = append(bits, 0)
	}
	b := NewBitReader(packBits(bits))

	v, err := decodeQanglePres(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v[0] != -180.0 {
		t.Errorf("x = %v, want -180", v[0])
	}
	if v[1] != 0 {
		t.Errorf("y = %v, want 0 (absent)", v[1])
	}
	if v[2] != -180.0 {
		t.Errorf("z = %v, want -180", v[2])
	}
}
