package csdemo

// FieldPath addresses a leaf inside a serializer tree: a 7-slot index path
// plus the index of its last valid slot.
type FieldPath struct {
	Path [7]int32
	Last int
}

// newFieldPath returns the initial field path state: {-1,0,0,0,0,0,0}, last=0.
func newFieldPath() FieldPath {
	return FieldPath{Path: [7]int32{-1, 0, 0, 0, 0, 0, 0}}
}

func (fp *FieldPath) entry(idx int) (*int32, error) {
	if idx < 0 || idx >= len(fp.Path) {
		return nil, newParseError(ErrCodeIllegalPathOp, "field path index %d out of range", idx)
	}
	return &fp.Path[idx], nil
}

// popSpecial pops n levels off the path, zeroing each popped slot as it
// unwinds.
func (fp *FieldPath) popSpecial(n int) error {
	for i := 0; i < n; i++ {
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e = 0
		fp.Last--
	}
	return nil
}

// fieldPathOp is one of the 39 field-path ops (index 0..38); the stop
// symbol 39 never reaches an op body.
type fieldPathOp func(b *BitReader, fp *FieldPath) error

// fieldPathOps preserves every bit-width and pack-width choice of the
// engine's field-path encoding, in the https://github.com/dotabuff/manta
// field_path.go lineage; nobody involved claims to know why these
// particular op shapes were chosen, only that they compress well.
var fieldPathOps = [39]fieldPathOp{
	0:  fpPlusOne,
	1:  fpPlusTwo,
	2:  fpPlusThree,
	3:  fpPlusFour,
	4:  fpPlusN,
	5:  fpPushOneLeftDeltaZeroRightZero,
	6:  fpPushOneLeftDeltaZeroRightNonZero,
	7:  fpPushOneLeftDeltaOneRightZero,
	8:  fpPushOneLeftDeltaOneRightNonZero,
	9:  fpPushOneLeftDeltaNRightZero,
	10: fpPushOneLeftDeltaNRightNonZero,
	11: fpPushOneLeftDeltaNRightNonZeroPack6Bits,
	12: fpPushOneLeftDeltaNRightNonZeroPack8Bits,
	13: fpPushTwoLeftDeltaZero,
	14: fpPushTwoPack5LeftDeltaZero,
	15: fpPushThreeLeftDeltaZero,
	16: fpPushThreePack5LeftDeltaZero,
	17: fpPushTwoLeftDeltaOne,
	18: fpPushTwoPack5LeftDeltaOne,
	19: fpPushThreeLeftDeltaOne,
	20: fpPushThreePack5LeftDeltaOne,
	21: fpPushTwoLeftDeltaN,
	22: fpPushTwoPack5LeftDeltaN,
	23: fpPushThreeLeftDeltaN,
	24: fpPushThreePack5LeftDeltaN,
	25: fpPushN,
	26: fpPushNAndNonTopological,
	27: fpPopOnePlusOne,
	28: fpPopOnePlusN,
	29: fpPopAllButOnePlusOne,
	30: fpPopAllButOnePlusN,
	31: fpPopAllButOnePlusNPack3Bits,
	32: fpPopAllButOnePlusNPack6Bits,
	33: fpPopNPlusOne,
	34: fpPopNPlusN,
	35: fpPopNAndNonTopological,
	36: fpNonTopoComplex,
	37: fpNonTopoPenultimatePlusOne,
	38: fpNonTopoComplexPack4Bits,
}

// fieldPathStopSymbol is the Huffman symbol terminating a field-path run.
const fieldPathStopSymbol = 39

func fpPlusOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	return nil
}

func fpPlusTwo(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += 2
	return nil
}

func fpPlusThree(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += 3
	return nil
}

func fpPlusFour(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += 4
	return nil
}

func fpPlusN(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n) + 5
	return nil
}

func fpPushOneLeftDeltaZeroRightZero(b *BitReader, fp *FieldPath) error {
	fp.Last++
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = 0
	return nil
}

func fpPushOneLeftDeltaZeroRightNonZero(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	fp.Last++
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n)
	return nil
}

func fpPushOneLeftDeltaOneRightZero(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = 0
	return nil
}

func fpPushOneLeftDeltaOneRightNonZero(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = int32(n)
	return nil
}

func fpPushOneLeftDeltaNRightZero(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n)
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = 0
	return nil
}

func fpPushOneLeftDeltaNRightNonZero(b *BitReader, fp *FieldPath) error {
	n1, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n1) + 2
	n2, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = int32(n2) + 1
	return nil
}

func fpPushOneLeftDeltaNRightNonZeroPack6Bits(b *BitReader, fp *FieldPath) error {
	n1, err := b.ReadNBits(3)
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n1) + 2
	n2, err := b.ReadNBits(3)
	if err != nil {
		return err
	}
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = int32(n2) + 1
	return nil
}

func fpPushOneLeftDeltaNRightNonZeroPack8Bits(b *BitReader, fp *FieldPath) error {
	n1, err := b.ReadNBits(4)
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n1) + 2
	n2, err := b.ReadNBits(4)
	if err != nil {
		return err
	}
	fp.Last++
	e, err = fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e = int32(n2) + 1
	return nil
}

func fpPushTwoLeftDeltaZero(b *BitReader, fp *FieldPath) error {
	for i := 0; i < 2; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushTwoPack5LeftDeltaZero(b *BitReader, fp *FieldPath) error {
	for i := 0; i < 2; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e = int32(n)
	}
	return nil
}

func fpPushThreeLeftDeltaZero(b *BitReader, fp *FieldPath) error {
	for i := 0; i < 3; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushThreePack5LeftDeltaZero(b *BitReader, fp *FieldPath) error {
	for i := 0; i < 3; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e = int32(n)
	}
	return nil
}

func fpPushTwoLeftDeltaOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	for i := 0; i < 2; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushTwoPack5LeftDeltaOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	for i := 0; i < 2; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushThreeLeftDeltaOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	for i := 0; i < 3; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushThreePack5LeftDeltaOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	for i := 0; i < 3; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushTwoLeftDeltaN(b *BitReader, fp *FieldPath) error {
	n0, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n0) + 2
	for i := 0; i < 2; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushTwoPack5LeftDeltaN(b *BitReader, fp *FieldPath) error {
	n0, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n0) + 2
	for i := 0; i < 2; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushThreeLeftDeltaN(b *BitReader, fp *FieldPath) error {
	n0, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n0) + 2
	for i := 0; i < 3; i++ {
		n, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushThreePack5LeftDeltaN(b *BitReader, fp *FieldPath) error {
	n0, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n0) + 2
	for i := 0; i < 3; i++ {
		n, err := b.ReadNBits(5)
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(n)
	}
	return nil
}

func fpPushN(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	delta, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(delta)
	for i := uint32(0); i < n; i++ {
		v, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		fp.Last++
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e += int32(v)
	}
	return nil
}

func fpPushNAndNonTopological(b *BitReader, fp *FieldPath) error {
	for i := 0; i <= fp.Last; i++ {
		hit, err := b.ReadBoolean()
		if err != nil {
			return err
		}
		if hit {
			v, err := b.ReadVarint32()
			if err != nil {
				return err
			}
			e, err := fp.entry(i)
			if err != nil {
				return err
			}
			*e += v + 1
		}
	}
	count, err := b.ReadUBitVar()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		fp.Last++
		v, err := b.ReadUBitVarFP()
		if err != nil {
			return err
		}
		e, err := fp.entry(fp.Last)
		if err != nil {
			return err
		}
		*e = int32(v)
	}
	return nil
}

func fpPopOnePlusOne(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(1); err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	return nil
}

func fpPopOnePlusN(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(1); err != nil {
		return err
	}
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += int32(n) + 1
	return nil
}

func fpPopAllButOnePlusOne(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(fp.Last); err != nil {
		return err
	}
	e, err := fp.entry(0)
	if err != nil {
		return err
	}
	*e++
	return nil
}

func fpPopAllButOnePlusN(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(fp.Last); err != nil {
		return err
	}
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	e, err := fp.entry(0)
	if err != nil {
		return err
	}
	*e += int32(n) + 1
	return nil
}

func fpPopAllButOnePlusNPack3Bits(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(fp.Last); err != nil {
		return err
	}
	n, err := b.ReadNBits(3)
	if err != nil {
		return err
	}
	e, err := fp.entry(0)
	if err != nil {
		return err
	}
	*e += int32(n) + 1
	return nil
}

func fpPopAllButOnePlusNPack6Bits(b *BitReader, fp *FieldPath) error {
	if err := fp.popSpecial(fp.Last); err != nil {
		return err
	}
	n, err := b.ReadNBits(6)
	if err != nil {
		return err
	}
	e, err := fp.entry(0)
	if err != nil {
		return err
	}
	*e += int32(n) + 1
	return nil
}

func fpPopNPlusOne(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	if err := fp.popSpecial(int(n)); err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e++
	return nil
}

func fpPopNPlusN(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	if err := fp.popSpecial(int(n)); err != nil {
		return err
	}
	v, err := b.ReadVarint32()
	if err != nil {
		return err
	}
	e, err := fp.entry(fp.Last)
	if err != nil {
		return err
	}
	*e += v
	return nil
}

func fpPopNAndNonTopological(b *BitReader, fp *FieldPath) error {
	n, err := b.ReadUBitVarFP()
	if err != nil {
		return err
	}
	if err := fp.popSpecial(int(n)); err != nil {
		return err
	}
	for i := 0; i <= fp.Last; i++ {
		hit, err := b.ReadBoolean()
		if err != nil {
			return err
		}
		if hit {
			v, err := b.ReadVarint32()
			if err != nil {
				return err
			}
			e, err := fp.entry(i)
			if err != nil {
				return err
			}
			*e += v
		}
	}
	return nil
}

func fpNonTopoComplex(b *BitReader, fp *FieldPath) error {
	for i := 0; i <= fp.Last; i++ {
		hit, err := b.ReadBoolean()
		if err != nil {
			return err
		}
		if hit {
			v, err := b.ReadVarint32()
			if err != nil {
				return err
			}
			e, err := fp.entry(i)
			if err != nil {
				return err
			}
			*e += v
		}
	}
	return nil
}

func fpNonTopoPenultimatePlusOne(b *BitReader, fp *FieldPath) error {
	e, err := fp.entry(fp.Last - 1)
	if err != nil {
		return err
	}
	*e++
	return nil
}

func fpNonTopoComplexPack4Bits(b *BitReader, fp *FieldPath) error {
	for i := 0; i <= fp.Last; i++ {
		hit, err := b.ReadBoolean()
		if err != nil {
			return err
		}
		if hit {
			v, err := b.ReadNBits(4)
			if err != nil {
				return err
			}
			e, err := fp.entry(i)
			if err != nil {
				return err
			}
			*e += int32(v) - 7
		}
	}
	return nil
}

// DecodeFieldPaths decodes a full sequence of field paths from b using the
// precomputed Huffman table, returning each decoded path in traversal
// order. The stream ends when the stop symbol (39) is read.
func DecodeFieldPaths(b *BitReader) ([]FieldPath, error) {
	fp := newFieldPath()
	var out []FieldPath

	for {
		peek, err := b.Peek(17)
		if err != nil {
			return nil, err
		}
		sym, codeLen := huffmanLookup(uint32(peek))
		b.Consume(uint(codeLen))

		if sym == fieldPathStopSymbol {
			break
		}
		if int(sym) >= len(fieldPathOps) {
			return nil, newParseError(ErrCodeUnknownPathOP, "unknown field path op %d", sym)
		}
		op := fieldPathOps[sym]
		if op == nil {
			return nil, newParseError(ErrCodeUnknownPathOP, "unbound field path op %d", sym)
		}
		if err := op(b, &fp); err != nil {
			return nil, err
		}
		if fp.Last > 6 {
			return nil, newParseError(ErrCodeIllegalPathOp, "field path depth exceeded 6")
		}

		pathCopy := fp
		out = append(out, pathCopy)
	}

	return out, nil
}
