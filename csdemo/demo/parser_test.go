package demo

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/csdemo/csdemo"
)

// bitWriter packs values LSB-first, matching the little-endian bit order
// BitReader consumes.
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) write(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		w.bits = append(w.bits, v>>i&1 == 1)
	}
}

func (w *bitWriter) writeBytes(data []byte) {
	for _, b := range data {
		w.write(uint64(b), 8)
	}
}

func (w *bitWriter) writeString(s string) {
	w.writeBytes(append([]byte(s), 0))
}

// writeUBitVar emits the 6-bit mantissa/selector encoding ReadUBitVar
// expects.
func (w *bitWriter) writeUBitVar(v uint32) {
	switch {
	case v < 1<<4:
		w.write(uint64(v), 6)
	case v < 1<<8:
		w.write(uint64(v&0xf|1<<4), 6)
		w.write(uint64(v>>4), 4)
	case v < 1<<12:
		w.write(uint64(v&0xf|2<<4), 6)
		w.write(uint64(v>>4), 8)
	default:
		w.write(uint64(v&0xf|3<<4), 6)
		w.write(uint64(v>>4), 28)
	}
}

func (w *bitWriter) writeVarint(v uint64) {
	for {
		if v < 0x80 {
			w.write(v, 8)
			return
		}
		w.write(v&0x7f|0x80, 8)
		v >>= 7
	}
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, bit := range w.bits {
		if bit {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func appendFrame(file []byte, cmd csdemo.DemoCommand, tick int32, payload []byte) []byte {
	file = protowire.AppendVarint(file, uint64(cmd))
	file = protowire.AppendVarint(file, uint64(tick))
	file = protowire.AppendVarint(file, uint64(len(payload)))
	return append(file, payload...)
}

// buildDemoFile wraps frames in the 16-byte PBDEMS2 header with a matching
// expected-length field.
func buildDemoFile(frames []byte) []byte {
	file := make([]byte, 16)
	copy(file, "PBDEMS2\x00")
	file = append(file, frames...)
	binary.LittleEndian.PutUint32(file[8:12], uint32(len(file)-18))
	return file
}

func TestParseHeaderOnlyEndToEnd(t *testing.T) {
	var hdr []byte
	hdr = protowire.AppendTag(hdr, 3, protowire.BytesType)
	hdr = protowire.AppendString(hdr, "test")
	hdr = protowire.AppendTag(hdr, 5, protowire.BytesType)
	hdr = protowire.AppendString(hdr, "de_mirage")

	var frames []byte
	frames = appendFrame(frames, csdemo.CmdFileHeader, 0, hdr)
	frames = appendFrame(frames, csdemo.CmdStop, 0, nil)

	d, err := NewFromBytes(buildDemoFile(frames), ParserConfig{OnlyHeader: true})
	require.NoError(t, err)
	require.Equal(t, csdemo.VarString("de_mirage"), d.Header()["map_name"])
	require.Equal(t, csdemo.VarString("test"), d.Header()["server_name"])
	require.Nil(t, d.Columns())
}

func TestParseSource1MagicFails(t *testing.T) {
	file := buildDemoFile(nil)
	copy(file, "HL2DEMO\x00")

	_, err := NewFromBytes(file, ParserConfig{OnlyHeader: true})
	var pe *csdemo.ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, csdemo.ErrCodeSource1Demo, pe.Code)
}

func TestParseStringTableEntriesBitstream(t *testing.T) {
	w := &bitWriter{}
	w.write(1, 1) // index increments
	w.write(1, 1) // has key
	w.write(0, 1) // no history
	w.writeString("44")
	w.write(1, 1) // has value
	w.write(1, 17)
	w.writeBytes([]byte{0xab})

	meta := stringTableMeta{name: "instancebaseline"}
	entries := parseStringTableEntries(meta, 1, w.bytes())
	require.Len(t, entries, 1)
	require.Equal(t, "44", entries[0].Key)
	require.EqualValues(t, 0, entries[0].Index)
	require.Equal(t, []byte{0xab}, entries[0].Value)
}

func TestParseStringTableEntriesKeyHistory(t *testing.T) {
	w := &bitWriter{}
	// First entry establishes "player_one" in the history.
	w.write(1, 1)
	w.write(1, 1)
	w.write(0, 1)
	w.writeString("player_one")
	w.write(0, 1) // no value
	// Second entry reuses the first 7 chars ("player_") plus "two".
	w.write(1, 1)
	w.write(1, 1)
	w.write(1, 1) // use history
	w.write(0, 5) // position 0
	w.write(7, 5) // prefix length
	w.writeString("two")
	w.write(0, 1)

	entries := parseStringTableEntries(stringTableMeta{name: "userinfo"}, 2, w.bytes())
	require.Len(t, entries, 2)
	require.Equal(t, "player_one", entries[0].Key)
	require.Equal(t, "player_two", entries[1].Key)
	require.EqualValues(t, 1, entries[1].Index)
}

func TestDecodeUpdateStringTableUsesRegistry(t *testing.T) {
	w := &bitWriter{}
	w.write(1, 1)
	w.write(1, 1)
	w.write(0, 1)
	w.writeString("7")
	w.write(1, 1)
	w.write(2, 17)
	w.writeBytes([]byte{0x01, 0x02})

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 0)
	msg = protowire.AppendTag(msg, 2, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 1)
	msg = protowire.AppendTag(msg, 3, protowire.BytesType)
	msg = protowire.AppendBytes(msg, w.bytes())

	registry := []stringTableMeta{{name: "instancebaseline"}}
	name, entries := decodeUpdateStringTable(msg, registry)
	require.Equal(t, "instancebaseline", name)
	require.Len(t, entries, 1)
	require.Equal(t, "7", entries[0].Key)
	require.Equal(t, []byte{0x01, 0x02}, entries[0].Value)
}

func TestDecodeUpdateStringTableUnknownIDIsDropped(t *testing.T) {
	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 5)

	name, entries := decodeUpdateStringTable(msg, nil)
	require.Empty(t, name)
	require.Nil(t, entries)
}

func newTestDemo() *Demo {
	return &Demo{
		cfg:       ParserConfig{},
		header:    make(map[string]csdemo.Variant),
		classes:   csdemo.NewEntityTable(),
		events:    csdemo.NewGameEventRegistry(),
		strings:   csdemo.NewStringTables(),
		convars:   make(map[string]string),
		allEvents: true,
		stats:     Stats{GameEventCounts: make(map[string]int)},
	}
}

func gameEventMsg(eventID uint32) []byte {
	var data []byte
	data = protowire.AppendTag(data, 2, protowire.VarintType)
	data = protowire.AppendVarint(data, uint64(eventID))
	return data
}

func innerMessageStream(msgs ...struct {
	typ  uint32
	data []byte
}) []byte {
	w := &bitWriter{}
	for _, m := range msgs {
		w.writeUBitVar(m.typ)
		w.writeVarint(uint64(len(m.data)))
		w.writeBytes(m.data)
	}
	return w.bytes()
}

func demoPacketPayload(inner []byte) []byte {
	var payload []byte
	payload = protowire.AppendTag(payload, 3, protowire.BytesType)
	payload = protowire.AppendBytes(payload, inner)
	return payload
}

func TestProcessPacketDefersInfernoStartburn(t *testing.T) {
	d := newTestDemo()
	d.events.Register(&csdemo.GameEventDescriptor{EventID: 1, Name: "inferno_startburn"})
	d.events.Register(&csdemo.GameEventDescriptor{EventID: 2, Name: "player_death"})

	type msg = struct {
		typ  uint32
		data []byte
	}
	inner := innerMessageStream(
		msg{68, gameEventMsg(1)},
		msg{68, gameEventMsg(2)},
	)
	frame := &csdemo.Frame{Cmd: csdemo.CmdPacket, Tick: 50, Payload: demoPacketPayload(inner)}
	d.processPacket(frame, newEntityIDTracker())

	evs := d.GameEvents()
	require.Len(t, evs, 2)
	require.Equal(t, "player_death", evs[0].Name)
	require.Equal(t, "inferno_startburn", evs[1].Name)
	require.EqualValues(t, 50, evs[1].Tick)
	require.Equal(t, map[string]int{"player_death": 1, "inferno_startburn": 1}, d.stats.GameEventCounts)
}

func TestProcessPacketSkipsUnwantedEvents(t *testing.T) {
	d := newTestDemo()
	d.allEvents = false
	d.wantedEvents = map[string]bool{"round_end": true}
	d.events.Register(&csdemo.GameEventDescriptor{EventID: 2, Name: "player_death"})

	type msg = struct {
		typ  uint32
		data []byte
	}
	inner := innerMessageStream(msg{68, gameEventMsg(2)})
	frame := &csdemo.Frame{Cmd: csdemo.CmdPacket, Tick: 1, Payload: demoPacketPayload(inner)}
	d.processPacket(frame, newEntityIDTracker())

	require.Empty(t, d.GameEvents())
}

func TestHandleSetConVarRecordsAndSynthesizes(t *testing.T) {
	var cvar []byte
	cvar = protowire.AppendTag(cvar, 1, protowire.BytesType)
	cvar = protowire.AppendString(cvar, "mp_maxrounds")
	cvar = protowire.AppendTag(cvar, 2, protowire.BytesType)
	cvar = protowire.AppendString(cvar, "24")

	var cvars []byte
	cvars = protowire.AppendTag(cvars, 1, protowire.BytesType)
	cvars = protowire.AppendBytes(cvars, cvar)

	var data []byte
	data = protowire.AppendTag(data, 1, protowire.BytesType)
	data = protowire.AppendBytes(data, cvars)

	d := newTestDemo()
	d.handleSetConVar(data, 99)

	require.Equal(t, "24", d.ConVars()["mp_maxrounds"])
	require.Len(t, d.GameEvents(), 1)
	ev := d.GameEvents()[0]
	require.Equal(t, "server_cvar", ev.Name)
	require.EqualValues(t, 99, ev.Tick)
	require.Equal(t, csdemo.VarString("mp_maxrounds"), ev.Fields["cvar_name"])
	require.Equal(t, csdemo.VarString("24"), ev.Fields["cvar_value"])
}

func TestHandleRankUpdateSynthesizesPerEntry(t *testing.T) {
	var upd []byte
	upd = protowire.AppendTag(upd, 1, protowire.VarintType)
	upd = protowire.AppendVarint(upd, 40000000)
	upd = protowire.AppendTag(upd, 2, protowire.VarintType)
	upd = protowire.AppendVarint(upd, 12)
	upd = protowire.AppendTag(upd, 3, protowire.VarintType)
	upd = protowire.AppendVarint(upd, 13)

	var data []byte
	data = protowire.AppendTag(data, 1, protowire.BytesType)
	data = protowire.AppendBytes(data, upd)

	d := newTestDemo()
	d.handleRankUpdate(data, 7)

	require.Len(t, d.GameEvents(), 1)
	ev := d.GameEvents()[0]
	require.Equal(t, "rank_update", ev.Name)
	require.Equal(t, csdemo.VarU64(40000000+uint64(steamID64Base)), ev.Fields["user_steamid"])
	require.Equal(t, csdemo.VarI32(12), ev.Fields["rank_old"])
	require.Equal(t, csdemo.VarI32(13), ev.Fields["rank_new"])
}

func TestUnwrapSendTablesStripsVarintPrefix(t *testing.T) {
	serialized := []byte{0xaa, 0xbb, 0xcc}
	var blob []byte
	blob = protowire.AppendVarint(blob, uint64(len(serialized)))
	blob = append(blob, serialized...)

	var payload []byte
	payload = protowire.AppendTag(payload, 1, protowire.BytesType)
	payload = protowire.AppendBytes(payload, blob)

	inner, err := unwrapSendTables(payload)
	require.NoError(t, err)
	require.Equal(t, serialized, inner)
}

func TestUnwrapSendTablesMissingDataFails(t *testing.T) {
	_, err := unwrapSendTables(nil)
	var pe *csdemo.ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, csdemo.ErrCodeNoSendTableMessage, pe.Code)
}

func TestUnwrapFullPacketSplitsSnapshotAndPacket(t *testing.T) {
	inner := []byte{0x01, 0x02}
	packet := demoPacketPayload(inner)
	snapshot := []byte{0x07}

	var payload []byte
	payload = protowire.AppendTag(payload, 1, protowire.BytesType)
	payload = protowire.AppendBytes(payload, snapshot)
	payload = protowire.AppendTag(payload, 2, protowire.BytesType)
	payload = protowire.AppendBytes(payload, packet)

	st, pkt := unwrapFullPacket(payload)
	require.Equal(t, snapshot, st)
	require.Equal(t, inner, pkt)
}
