package csdemo

import "math"

// QFFlag are the quantized-float encode flags, read off the
// CNetworkedQuantizedFloat field's encoder annotation.
type QFFlag uint32

const (
	QFFRoundDown QFFlag = 1 << iota
	QFFRoundUp
	QFFEncodeZero
	QFFEncodeIntegers
)

// QuantizedFloat is a compact per-field float encoding parameterized by
// bit-width, range and flags. Construction and decode follow dotabuff/
// manta's quantizedfloat lineage, preserving the exact flag-normalization
// order and the multiplier retry ladder.
type QuantizedFloat struct {
	Low, High      float32
	HighLowMul     float32
	DecMul         float32
	Offset         float32
	BitCount       uint32
	Flags          QFFlag
	NoScale        bool
}

// NewQuantizedFloat builds a QuantizedFloat from the raw encoder parameters.
// bitCount of 0 or >=32 produces a no-scale (32-raw-bit) float.
func NewQuantizedFloat(bitCount uint32, flags QFFlag, low, high *float32) QuantizedFloat {
	if bitCount == 0 || bitCount >= 32 {
		return QuantizedFloat{NoScale: true, BitCount: 32}
	}

	qf := QuantizedFloat{BitCount: bitCount, Flags: flags}
	if low != nil {
		qf.Low = *low
	}
	if high != nil {
		qf.High = *high
	} else {
		qf.High = 1.0
	}

	qf.validateFlags()
	steps := uint32(1) << qf.BitCount

	if qf.Flags&QFFRoundDown != 0 {
		r := qf.High - qf.Low
		qf.Offset = r / float32(steps)
		qf.High -= qf.Offset
	} else if qf.Flags&QFFRoundUp != 0 {
		r := qf.High - qf.Low
		qf.Offset = r / float32(steps)
		qf.Low += qf.Offset
	}

	if qf.Flags&QFFEncodeIntegers != 0 {
		delta := qf.High - qf.Low
		if delta < 1.0 {
			delta = 1.0
		}
		deltaLog2 := float32(math.Ceil(math.Log2(float64(delta))))
		range2 := uint32(1) << uint32(deltaLog2)
		bitCount := qf.BitCount
		for (uint32(1) << bitCount) <= range2 {
			bitCount++
		}
		if bitCount > qf.BitCount {
			qf.BitCount = bitCount
			steps = uint32(1) << qf.BitCount
		}
		qf.Offset = float32(range2) / float32(steps)
		qf.High = qf.Low + (float32(range2) - qf.Offset)
	}

	qf.assignMultipliers(steps)

	if qf.Flags&QFFRoundDown != 0 {
		if qf.quantize(qf.Low) == qf.Low {
			qf.Flags &^= QFFRoundDown
		}
	}
	if qf.Flags&QFFRoundUp != 0 {
		if qf.quantize(qf.High) == qf.High {
			qf.Flags &^= QFFRoundUp
		}
	}
	if qf.Flags&QFFEncodeZero != 0 {
		if qf.quantize(0) == 0 {
			qf.Flags &^= QFFEncodeZero
		}
	}

	return qf
}

func (qf *QuantizedFloat) validateFlags() {
	if qf.Flags == 0 {
		return
	}
	if (qf.Low == 0 && qf.Flags&QFFRoundDown != 0) || (qf.High == 0 && qf.Flags&QFFRoundUp != 0) {
		qf.Flags &^= QFFEncodeZero
	}
	if qf.Low == 0 && qf.Flags&QFFEncodeZero != 0 {
		qf.Flags |= QFFRoundDown
		qf.Flags &^= QFFEncodeZero
	}
	if qf.High == 0 && qf.Flags&QFFEncodeZero != 0 {
		qf.Flags |= QFFRoundUp
		qf.Flags &^= QFFEncodeZero
	}
	if qf.Low > 0 || qf.High < 0 {
		qf.Flags &^= QFFEncodeZero
	}
	if qf.Flags&QFFEncodeIntegers != 0 {
		qf.Flags &^= QFFRoundUp | QFFRoundDown | QFFEncodeZero
	}
}

func (qf *QuantizedFloat) assignMultipliers(steps uint32) {
	qf.HighLowMul = 0
	r := qf.High - qf.Low

	var high uint32
	if qf.BitCount == 32 {
		high = 0xFFFFFFFE
	} else {
		high = (uint32(1) << qf.BitCount) - 1
	}

	var highMul float32
	if float32(math.Abs(float64(r))) <= 0 {
		highMul = float32(high)
	} else {
		highMul = float32(high) / r
	}

	if highMul*r > float32(high) || float64(highMul*r) > float64(float32(high)) {
		for _, m := range []float32{0.9999, 0.99, 0.9, 0.8, 0.7} {
			highMul = float32(high) / r * m
			if highMul*r > float32(high) || float64(highMul*r) > float64(float32(high)) {
				continue
			}
			break
		}
	}
	qf.HighLowMul = highMul
	qf.DecMul = 1.0 / float32(steps-1)
}

func (qf *QuantizedFloat) quantize(val float32) float32 {
	if val < qf.Low {
		return qf.Low
	}
	if val > qf.High {
		return qf.High
	}
	i := uint32((val - qf.Low) * qf.HighLowMul)
	return qf.Low + (qf.High-qf.Low)*(float32(i)*qf.DecMul)
}

// Decode reads the next quantized float value from b.
func (qf *QuantizedFloat) Decode(b *BitReader) (float32, error) {
	if qf.NoScale {
		return decodeNoscale(b)
	}
	if qf.Flags&QFFRoundDown != 0 {
		hit, err := b.ReadBoolean()
		if err != nil {
			return 0, err
		}
		if hit {
			return qf.Low, nil
		}
	}
	if qf.Flags&QFFRoundUp != 0 {
		hit, err := b.ReadBoolean()
		if err != nil {
			return 0, err
		}
		if hit {
			return qf.High, nil
		}
	}
	if qf.Flags&QFFEncodeZero != 0 {
		hit, err := b.ReadBoolean()
		if err != nil {
			return 0, err
		}
		if hit {
			return 0, nil
		}
	}
	bits, err := b.ReadNBits(uint(qf.BitCount))
	if err != nil {
		return 0, err
	}
	return qf.Low + (qf.High-qf.Low)*float32(bits)*qf.DecMul, nil
}

// QFTable is the side table mapping a small Decoder.QFIndex to its
// QuantizedFloat configuration, keeping decoders cheap to copy.
type QFTable struct {
	configs []QuantizedFloat
}

// Add appends cfg and returns its index.
func (t *QFTable) Add(cfg QuantizedFloat) int {
	t.configs = append(t.configs, cfg)
	return len(t.configs) - 1
}

// Get returns the config at idx.
func (t *QFTable) Get(idx int) (*QuantizedFloat, error) {
	if idx < 0 || idx >= len(t.configs) {
		return nil, newParseError(ErrCodeMalformedMessage, "quantized float index %d out of range", idx)
	}
	return &t.configs[idx], nil
}
