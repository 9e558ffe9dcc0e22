package csdemo

import "math"

// DecoderKind identifies which bit-level decoding routine a Value field
// uses, per the base-type/encoder table in the flattened-serializer builder.
type DecoderKind int

const (
	DecodeUnsigned DecoderKind = iota
	DecodeSigned
	DecodeBoolean
	DecodeString
	DecodeNoscale
	DecodeFloatCoord
	DecodeFloatSimulationTime
	DecodeUnsigned64
	DecodeFixed64
	DecodeAmmo
	DecodeQuantizedFloat // carries a QF table index, see Decoder.QFIndex
	DecodeVectorNoscale
	DecodeVectorFloatCoord
	DecodeVectorNormal
	DecodeQanglePitchYaw
	DecodeQangle3
	DecodeQangleVar
	DecodeQanglePres
	DecodeGameModeRules
)

// Decoder is the concrete decode instruction attached to a Value field.
// QFIndex is only meaningful when Kind == DecodeQuantizedFloat, mirroring the
// side-table indirection the design notes call for: decoders stay cheap to
// copy and the hot field-path loop never carries 40+ bytes of QF config.
type Decoder struct {
	Kind    DecoderKind
	QFIndex int
}

// DecodeValue reads the next value for a leaf field from b, given its
// Decoder and (for quantized floats) the owning QFTable.
func DecodeValue(b *BitReader, d Decoder, qf *QFTable) (Variant, error) {
	switch d.Kind {
	case DecodeUnsigned:
		v, err := b.ReadVarint()
		return VarU32(v), err
	case DecodeSigned:
		v, err := b.ReadVarint32()
		return VarI32(v), err
	case DecodeBoolean:
		v, err := b.ReadBoolean()
		return VarBool(v), err
	case DecodeString:
		v, err := b.ReadString()
		return VarString(v), err
	case DecodeNoscale:
		v, err := decodeNoscale(b)
		return VarF32(v), err
	case DecodeFloatCoord:
		v, err := b.ReadBitCoord()
		return VarF32(v), err
	case DecodeFloatSimulationTime:
		v, err := b.ReadVarint()
		if err != nil {
			return nil, err
		}
		return VarF32(float32(v) / 30.0), nil
	case DecodeUnsigned64:
		v, err := b.ReadVarintU64()
		return VarU64(v), err
	case DecodeFixed64:
		buf, err := b.ReadBytes(8)
		if err != nil {
			return nil, err
		}
		var v uint64
		for i := 7; i >= 0; i-- {
			v = (v << 8) | uint64(buf[i])
		}
		return VarU64(v), nil
	case DecodeAmmo:
		v, err := decodeAmmo(b)
		return VarU32(v), err
	case DecodeQuantizedFloat:
		cfg, err := qf.Get(d.QFIndex)
		if err != nil {
			return nil, err
		}
		v, err := cfg.Decode(b)
		return VarF32(v), err
	case DecodeVectorNoscale:
		v, err := decodeVectorOf(b, qf, Decoder{Kind: DecodeNoscale})
		return v, err
	case DecodeVectorFloatCoord:
		v, err := decodeVectorOf(b, qf, Decoder{Kind: DecodeFloatCoord})
		return v, err
	case DecodeVectorNormal:
		v, err := decodeVectorNormal(b)
		return v, err
	case DecodeQanglePitchYaw:
		v, err := decodeQanglePitchYaw(b)
		return v, err
	case DecodeQangle3:
		v, err := decodeQangle3(b)
		return v, err
	case DecodeQangleVar:
		v, err := decodeQangleVar(b)
		return v, err
	case DecodeQanglePres:
		v, err := decodeQanglePres(b)
		return v, err
	case DecodeGameModeRules:
		v, err := b.ReadNBits(7)
		return VarU32(v), err
	default:
		return nil, newParseError(ErrCodeMalformedMessage, "unknown decoder kind %d", d.Kind)
	}
}

func decodeNoscale(b *BitReader) (float32, error) {
	bits, err := b.ReadNBits(32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// decodeAmmo reads a varint and subtracts 1 if the raw value is positive; a
// raw value of 0 decodes to 0, not -1.
func decodeAmmo(b *BitReader) (uint32, error) {
	v, err := b.ReadVarint()
	if err != nil {
		return 0, err
	}
	if v > 0 {
		return v - 1, nil
	}
	return 0, nil
}

func decodeVectorOf(b *BitReader, qf *QFTable, elem Decoder) (VarVec3, error) {
	var out VarVec3
	for i := 0; i < 3; i++ {
		v, err := DecodeValue(b, elem, qf)
		if err != nil {
			return out, err
		}
		f, _ := AsF32(v)
		out[i] = f
	}
	return out, nil
}

// decodeVectorNormal reconstructs a unit vector: both presence bits come
// first, then each present component's sign + 11-bit body, then the z-sign
// bit.
func decodeVectorNormal(b *BitReader) (VarVec3, error) {
	var out VarVec3

	hasX, err := b.ReadBoolean()
	if err != nil {
		return out, err
	}
	hasY, err := b.ReadBoolean()
	if err != nil {
		return out, err
	}
	if hasX {
		out[0], err = decodeNormalComponent(b)
		if err != nil {
			return out, err
		}
	}
	if hasY {
		out[1], err = decodeNormalComponent(b)
		if err != nil {
			return out, err
		}
	}
	zNeg, err := b.ReadBoolean()
	if err != nil {
		return out, err
	}

	zSq := 1 - out[0]*out[0] - out[1]*out[1]
	if zSq < 0 {
		zSq = 0
	}
	z := float32(math.Sqrt(float64(zSq)))
	if zNeg {
		z = -z
	}
	out[2] = z
	return out, nil
}

// decodeNormalComponent reads one signed 11-bit normal component. The
// len*(1.0/2048 - 1.0) scale is bit-for-bit what the engine's consumers
// reproduce, odd as it reads; do not "fix" it to 1/2047 without demos
// proving otherwise.
func decodeNormalComponent(b *BitReader) (float32, error) {
	neg, err := b.ReadBoolean()
	if err != nil {
		return 0, err
	}
	raw, err := b.ReadNBits(11)
	if err != nil {
		return 0, err
	}
	v := float32(float64(raw) * (1.0/(1<<11) - 1.0))
	if neg {
		v = -v
	}
	return v, nil
}

func decodeQanglePitchYaw(b *BitReader) (VarVec3, error) {
	var out VarVec3
	for i := 0; i < 3; i++ {
		bits, err := b.ReadNBits(32)
		if err != nil {
			return out, err
		}
		out[i] = math.Float32frombits(bits) / float32(uint64(1)<<32)
	}
	return out, nil
}

func decodeQangle3(b *BitReader) (VarVec3, error) {
	var out VarVec3
	for i := 0; i < 3; i++ {
		v, err := decodeNoscale(b)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeQangleVar(b *BitReader) (VarVec3, error) {
	var out VarVec3
	present := [3]bool{}
	for i := 0; i < 3; i++ {
		p, err := b.ReadBoolean()
		if err != nil {
			return out, err
		}
		present[i] = p
	}
	for i := 0; i < 3; i++ {
		if !present[i] {
			continue
		}
		v, err := b.ReadBitCoord()
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeQanglePres reads the three presence bits up front, then a 20-bit
// angle for each present component.
func decodeQanglePres(b *BitReader) (VarVec3, error) {
	var out VarVec3
	present := [3]bool{}
	for i := 0; i < 3; i++ {
		p, err := b.ReadBoolean()
		if err != nil {
			return out, err
		}
		present[i] = p
	}
	for i := 0; i < 3; i++ {
		if !present[i] {
			continue
		}
		v, err := b.ReadBitCoordPres()
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
