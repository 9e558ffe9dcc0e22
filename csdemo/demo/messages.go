package demo

import (
	"math"

	"github.com/csdemo/csdemo"
	"github.com/klauspost/compress/snappy"
	"google.golang.org/protobuf/encoding/protowire"
)

// innerMsgKind identifies one of the handful of embedded net/svc messages
// this module recognizes inside a DemPacket/DemSignonPacket envelope.
type innerMsgKind int

const (
	msgUnknown innerMsgKind = iota
	msgCreateStringTable
	msgUpdateStringTable
	msgClearAllStringTables
	msgPacketEntities
	msgGameEventList
	msgGameEvent
	msgSetConVar
	msgServerRankUpdate
)

// netMessageIDs maps the wire ubit_var message-type id (the public CS2
// NET_Messages/SVC_Messages/CS_UM enum) to the kinds this module acts on;
// everything else is skipped without decoding its payload.
var netMessageIDs = map[uint32]innerMsgKind{
	6:   msgSetConVar,
	44:  msgCreateStringTable,
	45:  msgUpdateStringTable,
	51:  msgClearAllStringTables,
	55:  msgPacketEntities,
	58:  msgGameEventList,
	68:  msgGameEvent,
	205: msgServerRankUpdate,
}

type innerMsg struct {
	Kind innerMsgKind
	Data []byte
}

// splitInnerMessages walks a DemPacket/DemSignonPacket payload as a
// sequence of {ubit_var type, varint size, size bytes} frames.
func splitInnerMessages(payload []byte) []innerMsg {
	var out []innerMsg
	b := csdemo.NewBitReader(payload)
	for b.BitsLeft() > 0 {
		typ, err := b.ReadUBitVar()
		if err != nil {
			return out
		}
		size, err := b.ReadVarint()
		if err != nil {
			return out
		}
		data, err := b.ReadBytes(int(size))
		if err != nil {
			return out
		}
		if kind, ok := netMessageIDs[typ]; ok {
			out = append(out, innerMsg{Kind: kind, Data: data})
		}
	}
	return out
}

// decodeFlattenedSerializer extracts CSVCMsg_FlattenedSerializer's symbol
// table plus its `serializers` and `fields` repeated messages (field numbers
// per the public CS2 netmessages proto: 1=serializers, 2=symbols, 3=fields).
func decodeFlattenedSerializer(data []byte) ([]csdemo.RawSerializerField, []csdemo.RawSerializer, error) {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil, nil, err
	}
	symbols := csdemo.AllBytes(top, 2)
	symbolStrings := make([]string, len(symbols))
	for i, s := range symbols {
		symbolStrings[i] = string(s)
	}
	sym := func(idx uint64) string {
		if int(idx) < len(symbolStrings) {
			return symbolStrings[idx]
		}
		return ""
	}

	// ProtoFlattenedSerializerField_t: 1=var_type_sym 2=var_name_sym
	// 3=bit_count 4=low_value 5=high_value 6=encode_flags
	// 7=field_serializer_name_sym 10=var_encoder_sym.
	var fields []csdemo.RawSerializerField
	for _, raw := range csdemo.AllBytes(top, 3) {
		ff, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			return nil, nil, err
		}
		f := csdemo.RawSerializerField{}
		if v, ok := csdemo.FirstVarint(ff, 1); ok {
			f.VarType = sym(v)
		}
		if v, ok := csdemo.FirstVarint(ff, 2); ok {
			f.VarName = sym(v)
		}
		if v, ok := csdemo.FirstVarint(ff, 3); ok {
			f.BitCount = int32(v)
		}
		if v, ok := csdemo.FirstFixed32(ff, 4); ok {
			f.LowValue = math.Float32frombits(v)
		}
		if v, ok := csdemo.FirstFixed32(ff, 5); ok {
			f.HighValue = math.Float32frombits(v)
		}
		if v, ok := csdemo.FirstVarint(ff, 6); ok {
			f.EncodeFlags = int32(v)
		}
		if v, ok := csdemo.FirstVarint(ff, 7); ok {
			f.SerializerName = sym(v)
			f.HasSerializer = true
		}
		if v, ok := csdemo.FirstVarint(ff, 10); ok {
			f.Encoder = sym(v)
		}
		fields = append(fields, f)
	}

	// ProtoFlattenedSerializer_t: 1=serializer_name_sym 3=fields_index.
	var defs []csdemo.RawSerializer
	for _, raw := range csdemo.AllBytes(top, 1) {
		sf, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			return nil, nil, err
		}
		def := csdemo.RawSerializer{}
		if v, ok := csdemo.FirstVarint(sf, 1); ok {
			def.Name = sym(v)
		}
		for _, idx := range csdemo.AllVarints(sf, 3) {
			def.FieldIndex = append(def.FieldIndex, int32(idx))
		}
		defs = append(defs, def)
	}
	return fields, defs, nil
}

// classInfoEntry is one {class_id, class_name} pair from DemClassInfo.
type classInfoEntry struct {
	ID   uint32
	Name string
}

func decodeClassInfoMessage(data []byte) []classInfoEntry {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil
	}
	var out []classInfoEntry
	for _, raw := range csdemo.AllBytes(top, 1) {
		cf, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			continue
		}
		var e classInfoEntry
		if v, ok := csdemo.FirstVarint(cf, 1); ok {
			e.ID = uint32(v)
		}
		if s, ok := csdemo.FirstString(cf, 2); ok {
			e.Name = s
		}
		out = append(out, e)
	}
	return out
}

// stringTableEntry is one decoded row out of a string-table message or
// snapshot, tagged with which table it belongs to.
type stringTableEntry struct {
	TableName string
	Index     int32
	Key       string
	Value     []byte
}

// stringTableMeta remembers the decode parameters svc_CreateStringTable
// establishes for one table; svc_UpdateStringTable refers back to its table
// by creation-order id and reuses them.
type stringTableMeta struct {
	name              string
	userDataFixedSize bool
	userDataSizeBits  int
	flags             uint32
	varintBitCounts   bool
}

// decodeCreateStringTable decodes svc_CreateStringTable (1=name
// 3=num_entries 4=user_data_fixed_size 6=user_data_size_bits 7=flags
// 8=string_data 10=data_compressed 11=using_varint_bitcounts) and walks its
// entry blob.
func decodeCreateStringTable(data []byte) (stringTableMeta, []stringTableEntry) {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return stringTableMeta{}, nil
	}
	var meta stringTableMeta
	meta.name, _ = csdemo.FirstString(top, 1)
	var numEntries int32
	if v, ok := csdemo.FirstVarint(top, 3); ok {
		numEntries = int32(v)
	}
	if v, ok := csdemo.FirstVarint(top, 4); ok {
		meta.userDataFixedSize = v != 0
	}
	if v, ok := csdemo.FirstVarint(top, 6); ok {
		meta.userDataSizeBits = int(v)
	}
	if v, ok := csdemo.FirstVarint(top, 7); ok {
		meta.flags = uint32(v)
	}
	if v, ok := csdemo.FirstVarint(top, 11); ok {
		meta.varintBitCounts = v != 0
	}
	blob, ok := csdemo.FirstBytes(top, 8)
	if !ok {
		return meta, nil
	}
	if v, ok := csdemo.FirstVarint(top, 10); ok && v != 0 {
		decoded, err := snappy.Decode(nil, blob)
		if err != nil {
			return meta, nil
		}
		blob = decoded
	}
	return meta, parseStringTableEntries(meta, numEntries, blob)
}

// decodeUpdateStringTable decodes svc_UpdateStringTable (1=table_id
// 2=num_changed_entries 3=string_data) against the creation-order table
// registry.
func decodeUpdateStringTable(data []byte, tables []stringTableMeta) (string, []stringTableEntry) {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return "", nil
	}
	id, ok := csdemo.FirstVarint(top, 1)
	if !ok || int(id) >= len(tables) {
		return "", nil
	}
	meta := tables[id]
	var numEntries int32
	if v, ok := csdemo.FirstVarint(top, 2); ok {
		numEntries = int32(v)
	}
	blob, ok := csdemo.FirstBytes(top, 3)
	if !ok {
		return meta.name, nil
	}
	return meta.name, parseStringTableEntries(meta, numEntries, blob)
}

// parseStringTableEntries walks the delta-encoded entry bitstream: per
// entry, a 1-bit index-increment flag (else varint gap + 2), an optional key
// (with a 32-slot rolling history of 5-bit position / 5-bit prefix-length
// back-references), and an optional value (fixed bit width, or a
// 17-bit/ubit-var byte length with a per-entry snappy flag when the table's
// flags request it).
func parseStringTableEntries(meta stringTableMeta, numEntries int32, blob []byte) []stringTableEntry {
	var out []stringTableEntry
	var history []string
	b := csdemo.NewBitReader(blob)
	idx := int32(-1)

	for i := int32(0); i < numEntries; i++ {
		inc, err := b.ReadBoolean()
		if err != nil {
			break
		}
		if inc {
			idx++
		} else {
			gap, err := b.ReadVarint()
			if err != nil {
				break
			}
			idx += int32(gap) + 2
		}

		var key string
		hasKey, err := b.ReadBoolean()
		if err != nil {
			break
		}
		if hasKey {
			useHistory, err := b.ReadBoolean()
			if err != nil {
				break
			}
			if useHistory {
				pos, err := b.ReadNBits(5)
				if err != nil {
					break
				}
				length, err := b.ReadNBits(5)
				if err != nil {
					break
				}
				rest, err := b.ReadString()
				if err != nil {
					break
				}
				if int(pos) < len(history) {
					h := history[pos]
					if int(length) < len(h) {
						h = h[:length]
					}
					key = h + rest
				} else {
					key = rest
				}
			} else {
				key, err = b.ReadString()
				if err != nil {
					break
				}
			}
			history = append(history, key)
			if len(history) > 32 {
				history = history[1:]
			}
		}

		var value []byte
		hasValue, err := b.ReadBoolean()
		if err != nil {
			break
		}
		if hasValue {
			if meta.userDataFixedSize {
				value, err = readBitSizedValue(b, meta.userDataSizeBits)
				if err != nil {
					break
				}
			} else {
				compressed := false
				if meta.flags&0x1 != 0 {
					compressed, err = b.ReadBoolean()
					if err != nil {
						break
					}
				}
				var size uint32
				if meta.varintBitCounts {
					size, err = b.ReadUBitVar()
				} else {
					size, err = b.ReadNBits(17)
				}
				if err != nil {
					break
				}
				value, err = b.ReadBytes(int(size))
				if err != nil {
					break
				}
				if compressed {
					decoded, err := snappy.Decode(nil, value)
					if err != nil {
						break
					}
					value = decoded
				}
			}
		}
		out = append(out, stringTableEntry{TableName: meta.name, Index: idx, Key: key, Value: value})
	}
	return out
}

func readBitSizedValue(b *csdemo.BitReader, bits int) ([]byte, error) {
	out := make([]byte, 0, (bits+7)/8)
	for bits > 0 {
		take := bits
		if take > 8 {
			take = 8
		}
		v, err := b.ReadNBits(uint(take))
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
		bits -= take
	}
	return out, nil
}

// decodeStringTableSnapshot decodes a CDemoStringTables snapshot (the
// DemStringTables frame and DemFullPacket's string_table field): tables=1,
// each {table_name=1, items=2 {str=1, data=2}}.
func decodeStringTableSnapshot(data []byte) []stringTableEntry {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil
	}
	var out []stringTableEntry
	for _, rawTable := range csdemo.AllBytes(top, 1) {
		tf, err := csdemo.ParseProtoFields(rawTable)
		if err != nil {
			continue
		}
		name, ok := csdemo.FirstString(tf, 1)
		if !ok || (name != "userinfo" && name != "instancebaseline") {
			continue
		}
		idx := int32(0)
		for _, rawItem := range csdemo.AllBytes(tf, 2) {
			itf, err := csdemo.ParseProtoFields(rawItem)
			if err != nil {
				continue
			}
			e := stringTableEntry{TableName: name, Index: idx}
			if s, ok := csdemo.FirstString(itf, 1); ok {
				e.Key = s
			}
			if v, ok := csdemo.FirstBytes(itf, 2); ok {
				e.Value = v
			}
			out = append(out, e)
			idx++
		}
	}
	return out
}

// decodeGameEventList decodes GE_Source1LegacyGameEventList's repeated
// descriptor field 1: {eventid=1, name=2, keys=3{type=1,name=2}}.
func decodeGameEventList(data []byte) []*csdemo.GameEventDescriptor {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil
	}
	var out []*csdemo.GameEventDescriptor
	for _, raw := range csdemo.AllBytes(top, 1) {
		df, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			continue
		}
		d := &csdemo.GameEventDescriptor{}
		if v, ok := csdemo.FirstVarint(df, 1); ok {
			d.EventID = uint32(v)
		}
		if s, ok := csdemo.FirstString(df, 2); ok {
			d.Name = s
		}
		for _, kraw := range csdemo.AllBytes(df, 3) {
			kf, err := csdemo.ParseProtoFields(kraw)
			if err != nil {
				continue
			}
			kd := csdemo.GameEventKeyDescriptor{}
			if v, ok := csdemo.FirstVarint(kf, 1); ok {
				kd.Type = csdemo.GameEventKeyType(v)
			}
			if s, ok := csdemo.FirstString(kf, 2); ok {
				kd.Name = s
			}
			d.Keys = append(d.Keys, kd)
		}
		out = append(out, d)
	}
	return out
}

// gameEventFields is svc_GameEvent's decoded shape: an event id plus a
// positional list of typed key values, matched against the descriptor's
// key list by the caller.
type gameEventFields struct {
	id    uint32
	hasID bool
	keys  []csdemo.Variant
}

func (g gameEventFields) eventID() (uint32, bool)     { return g.id, g.hasID }
func (g gameEventFields) keyValues() []csdemo.Variant { return g.keys }

// parseProtoFieldsForGameEvent decodes svc_GameEvent's {event_name=1,
// eventid=2, keys=3} shape, where each keys entry is itself a key_t oneof —
// decoded as ordinary protobuf fields, not bit-packed, since svc_GameEvent
// ships its values as a nested message's oneof rather than a raw bitstream.
func parseProtoFieldsForGameEvent(data []byte) (gameEventFields, error) {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return gameEventFields{}, err
	}
	var g gameEventFields
	if v, ok := csdemo.FirstVarint(top, 2); ok {
		g.id = uint32(v)
		g.hasID = true
	}
	for _, raw := range csdemo.AllBytes(top, 3) {
		kf, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			continue
		}
		g.keys = append(g.keys, decodeKeyTValue(kf))
	}
	return g, nil
}

// decodeKeyTValue picks the populated oneof branch of one key_t entry:
// 1=type, 2=val_string, 3=val_float, 4=val_long, 5=val_short, 6=val_byte,
// 7=val_bool, 8=val_uint64.
func decodeKeyTValue(kf []csdemo.ProtoField) csdemo.Variant {
	if s, ok := csdemo.FirstString(kf, 2); ok {
		return csdemo.VarString(s)
	}
	if v, ok := firstFixed32(kf, 3); ok {
		return csdemo.VarF32(float32frombits(v))
	}
	if v, ok := csdemo.FirstVarint(kf, 4); ok {
		return csdemo.VarI32(int32(v))
	}
	if v, ok := csdemo.FirstVarint(kf, 5); ok {
		return csdemo.VarI32(int32(v))
	}
	if v, ok := csdemo.FirstVarint(kf, 6); ok {
		return csdemo.VarI32(int32(v))
	}
	if v, ok := csdemo.FirstVarint(kf, 7); ok {
		return csdemo.VarBool(v != 0)
	}
	if v, ok := csdemo.FirstVarint(kf, 8); ok {
		return csdemo.VarU64(v)
	}
	return nil
}

// unwrapDemoPacket extracts the inner message stream from a
// DemPacket/DemSignonPacket frame's CDemoPacket envelope (data=3).
func unwrapDemoPacket(payload []byte) []byte {
	top, err := csdemo.ParseProtoFields(payload)
	if err != nil {
		return nil
	}
	data, _ := csdemo.FirstBytes(top, 3)
	return data
}

// unwrapFullPacket splits a DemFullPacket frame's CDemoFullPacket envelope
// into its string-table snapshot (string_table=1, a CDemoStringTables) and
// its embedded CDemoPacket (packet=2).
func unwrapFullPacket(payload []byte) (stringTables []byte, packet []byte) {
	top, err := csdemo.ParseProtoFields(payload)
	if err != nil {
		return nil, nil
	}
	stringTables, _ = csdemo.FirstBytes(top, 1)
	if raw, ok := csdemo.FirstBytes(top, 2); ok {
		packet = unwrapDemoPacket(raw)
	}
	return stringTables, packet
}

// unwrapSendTables extracts CDemoSendTables' data blob (field 1), itself a
// varint-length-prefixed CSVCMsg_FlattenedSerializer.
func unwrapSendTables(payload []byte) ([]byte, error) {
	top, err := csdemo.ParseProtoFields(payload)
	if err != nil {
		return nil, err
	}
	data, ok := csdemo.FirstBytes(top, 1)
	if !ok {
		return nil, &csdemo.ParseError{Code: csdemo.ErrCodeNoSendTableMessage}
	}
	b := csdemo.NewBitReader(data)
	size, err := b.ReadVarint()
	if err != nil {
		return nil, err
	}
	return b.ReadBytes(int(size))
}

// entityIDTracker holds the handful of bits of state a single demo's worth
// of packet-entities frames need to carry across calls: nothing about a
// given entity survives past its own CreateAndUpdate/Update/Delete, so this
// is mostly a placeholder for future per-run diagnostics (e.g. counting
// skipped-via-PVS updates) rather than decode-critical state.
type entityIDTracker struct {
	skippedByPVS int
}

func newEntityIDTracker() *entityIDTracker {
	return &entityIDTracker{}
}

// decodePacketEntitiesMsg extracts CSVCMsg_PacketEntities' updated_entries
// count, the has_pvs_vis_bits flag and the raw entity-delta bitstream
// (field numbers per the public CS2 netmessages proto: 1=max_entries,
// 2=updated_entries, 3=is_delta, 4=update_baseline, 5=baseline,
// 7=entity_data, 14=has_pvs_vis_bits).
func decodePacketEntitiesMsg(data []byte) (entityData []byte, hasPVS bool, updatedEntries int32) {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil, false, 0
	}
	if v, ok := csdemo.FirstVarint(top, 2); ok {
		updatedEntries = int32(v)
	}
	if v, ok := csdemo.FirstVarint(top, 14); ok {
		hasPVS = v != 0
	}
	entityData, _ = csdemo.FirstBytes(top, 7)
	return entityData, hasPVS, updatedEntries
}

// applyPacketEntities runs the entity_id/2-bit-op delta-decode loop over one
// packet-entities message: Delete removes the slot, CreateAndUpdate applies
// the class's baseline before its own delta, and Update applies a delta to
// an already-live entity (optionally skipped via the PVS bit). Each touched
// PlayerController/Team entity refreshes the collector's PlayerMetaData.
func (d *Demo) applyPacketEntities(data []byte, tick int32, tracker *entityIDTracker) {
	entityData, hasPVS, updated := decodePacketEntitiesMsg(data)
	if entityData == nil {
		return
	}
	b := csdemo.NewBitReader(entityData)
	entityID := int32(-1)

	for i := int32(0); i < updated; i++ {
		delta, err := b.ReadUBitVar()
		if err != nil {
			return
		}
		entityID += 1 + int32(delta)

		op, err := b.ReadNBits(2)
		if err != nil {
			return
		}

		switch op {
		case 0b01, 0b11:
			d.classes.Delete(entityID)

		case 0b10:
			classID, err := b.ReadNBits(8)
			if err != nil {
				return
			}
			serial, err := b.ReadNBits(17)
			if err != nil {
				return
			}
			if _, err := b.ReadVarint(); err != nil {
				return
			}
			entity, err := d.classes.Create(entityID, classID, serial)
			if err != nil {
				d.stats.EntityDecodeErrors++
				continue
			}
			if bl, ok := d.classes.Baseline(classID); ok {
				applyDecodedFields(entity, bl.Paths, bl.Values)
			}
			// Snapshot trigger props after the baseline so a baseline-seeded
			// value never reads as a transition.
			prevWinReason := d.triggerSnapshot(entity)
			if err := d.applyEntityDelta(entity, b); err != nil {
				d.stats.EntityDecodeErrors++
				continue
			}
			d.emitTriggerEvents(entity, prevWinReason, tick)
			d.refreshIfController(entity)

		case 0b00:
			if hasPVS {
				skip, err := b.ReadNBits(2)
				if err != nil {
					return
				}
				if skip&1 == 1 {
					tracker.skippedByPVS++
					continue
				}
			}
			entity, ok := d.classes.Get(entityID)
			if !ok {
				continue
			}
			prevWinReason := d.triggerSnapshot(entity)
			if err := d.applyEntityDelta(entity, b); err != nil {
				d.stats.EntityDecodeErrors++
				continue
			}
			d.emitTriggerEvents(entity, prevWinReason, tick)
			d.refreshIfController(entity)
		}
	}
}

// applyEntityDelta decodes one entity's field-path list off b, resolves
// each leaf against the entity's serializer and stores should_parse values
// (vector elements merge into their typed slice slot).
func (d *Demo) applyEntityDelta(entity *csdemo.Entity, b *csdemo.BitReader) error {
	paths, err := csdemo.DecodeFieldPaths(b)
	if err != nil {
		return err
	}
	for _, fp := range paths {
		leaf, err := csdemo.ResolvePathLeaf(entity.Serializer, fp)
		if err != nil {
			return err
		}
		v, err := csdemo.DecodeValue(b, leaf.Decoder, d.qf)
		if err != nil {
			return err
		}
		csdemo.StoreLeaf(entity, leaf, v)
	}
	return nil
}

// applyDecodedFields stores an already-resolved {path, value} baseline onto
// entity, re-resolving each path only for its storage shape and
// should_parse gate.
func applyDecodedFields(entity *csdemo.Entity, paths []csdemo.FieldPath, values []csdemo.Variant) {
	for i, fp := range paths {
		if values[i] == nil {
			continue
		}
		leaf, err := csdemo.ResolvePathLeaf(entity.Serializer, fp)
		if err != nil {
			continue
		}
		csdemo.StoreLeaf(entity, leaf, values[i])
	}
}

// triggerSnapshot captures the current round-win-reason of a Rules entity,
// so emitTriggerEvents can detect its transition after the delta commits.
func (d *Demo) triggerSnapshot(entity *csdemo.Entity) csdemo.Variant {
	if entity.Kind != csdemo.EntityKindRules {
		return nil
	}
	return entity.Props[d.propCtl.Special.RoundWin]
}

// emitTriggerEvents synthesizes a round_end event when the rules proxy's
// round-win reason transitions to a new non-zero value.
func (d *Demo) emitTriggerEvents(entity *csdemo.Entity, prev csdemo.Variant, tick int32) {
	if entity.Kind != csdemo.EntityKindRules || !d.wantsEvent("round_end") {
		return
	}
	cur, ok := csdemo.AsU32(entity.Props[d.propCtl.Special.RoundWin])
	if !ok || cur == 0 {
		return
	}
	if prevVal, ok := csdemo.AsU32(prev); ok && prevVal == cur {
		return
	}
	d.gameEvents = append(d.gameEvents, csdemo.GameEvent{
		Name: "round_end",
		Tick: tick,
		Fields: map[string]csdemo.Variant{
			"reason": csdemo.VarU32(cur),
		},
	})
	d.stats.GameEventCounts["round_end"]++
}

func (d *Demo) refreshIfController(entity *csdemo.Entity) {
	if entity.Kind == csdemo.EntityKindPlayerController || entity.Kind == csdemo.EntityKindTeam {
		d.collector.RefreshPlayerMetaData(entity)
	}
}

func firstFixed32(fields []csdemo.ProtoField, num protowire.Number) (uint32, bool) {
	for _, f := range fields {
		if f.Num == num && f.Typ == protowire.Fixed32Type {
			return f.Fixed32, true
		}
	}
	return 0, false
}

func float32frombits(v uint32) float32 {
	return math.Float32frombits(v)
}
