package csdemo

import "google.golang.org/protobuf/encoding/protowire"

// ProtoField is one raw (field number, wire value) pair extracted from an
// embedded protobuf message without generated message types. Exported so
// the higher-level demo package can pull fields out of CSVCMsg_*/CDemo*
// envelopes using the same walker this package uses internally.
type ProtoField struct {
	Num protowire.Number
	Typ protowire.Type
	// exactly one of these is populated, per Typ
	Varint  uint64
	Bytes   []byte
	Fixed32 uint32
	Fixed64 uint64
}

// ParseProtoFields walks data as a flat sequence of protobuf wire-format
// fields, the way protowire.ConsumeField is meant to be driven, without any
// generated .pb.go types. Used to pull the handful of fields this module
// cares about out of CSVCMsg_* / CDemo* messages.
func ParseProtoFields(data []byte) ([]ProtoField, error) {
	var out []ProtoField
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf tag")
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf varint")
			}
			out = append(out, ProtoField{Num: num, Typ: typ, Varint: v})
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf bytes")
			}
			out = append(out, ProtoField{Num: num, Typ: typ, Bytes: v})
			data = data[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf fixed32")
			}
			out = append(out, ProtoField{Num: num, Typ: typ, Fixed32: v})
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf fixed64")
			}
			out = append(out, ProtoField{Num: num, Typ: typ, Fixed64: v})
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, newParseError(ErrCodeMalformedMessage, "bad protobuf field")
			}
			data = data[n:]
		}
	}
	return out, nil
}

// FirstString returns the first bytes-typed field num as a string.
func FirstString(fields []ProtoField, num protowire.Number) (string, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.BytesType {
			return string(f.Bytes), true
		}
	}
	return "", false
}

// FirstBytes returns the first bytes-typed field num verbatim.
func FirstBytes(fields []ProtoField, num protowire.Number) ([]byte, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.BytesType {
			return f.Bytes, true
		}
	}
	return nil, false
}

// FirstVarint returns the first varint-typed field num.
func FirstVarint(fields []ProtoField, num protowire.Number) (uint64, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.VarintType {
			return f.Varint, true
		}
	}
	return 0, false
}

// FirstFixed32 returns the first fixed32-typed field num.
func FirstFixed32(fields []ProtoField, num protowire.Number) (uint32, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.Fixed32Type {
			return f.Fixed32, true
		}
	}
	return 0, false
}

// FirstFixed64 returns the first fixed64-typed field num.
func FirstFixed64(fields []ProtoField, num protowire.Number) (uint64, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.Fixed64Type {
			return f.Fixed64, true
		}
	}
	return 0, false
}

// AllBytes returns every bytes-typed field num, in wire order.
func AllBytes(fields []ProtoField, num protowire.Number) [][]byte {
	var out [][]byte
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.BytesType {
			out = append(out, f.Bytes)
		}
	}
	return out
}

// AllVarints returns every varint-typed field num, in wire order.
func AllVarints(fields []ProtoField, num protowire.Number) []uint64 {
	var out []uint64
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.VarintType {
			out = append(out, f.Varint)
		}
	}
	return out
}
