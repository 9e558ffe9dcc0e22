package demo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/csdemo/csdemo"
)

func TestDecodeKeyTValueOneofBranches(t *testing.T) {
	cases := []struct {
		name string
		in   []csdemo.ProtoField
		want csdemo.Variant
	}{
		{"string", []csdemo.ProtoField{{Num: 2, Typ: protowire.BytesType, Bytes: []byte("bomb_planted")}}, csdemo.VarString("bomb_planted")},
		{"bool", []csdemo.ProtoField{{Num: 7, Typ: protowire.VarintType, Varint: 1}}, csdemo.VarBool(true)},
		{"uint64", []csdemo.ProtoField{{Num: 8, Typ: protowire.VarintType, Varint: 76561198000000001}}, csdemo.VarU64(76561198000000001)},
		{"long", []csdemo.ProtoField{{Num: 4, Typ: protowire.VarintType, Varint: 42}}, csdemo.VarI32(42)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, decodeKeyTValue(c.in))
		})
	}
}

func appendSubmessage(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}

func TestParseProtoFieldsForGameEventDecodesIDAndKeys(t *testing.T) {
	var key1, key2 []byte
	key1 = protowire.AppendTag(key1, 2, protowire.BytesType)
	key1 = protowire.AppendBytes(key1, []byte("userid"))
	key2 = protowire.AppendTag(key2, 7, protowire.VarintType)
	key2 = protowire.AppendVarint(key2, 1)

	var data []byte
	data = protowire.AppendTag(data, 2, protowire.VarintType)
	data = protowire.AppendVarint(data, 7) // event id
	data = appendSubmessage(data, 3, key1)
	data = appendSubmessage(data, 3, key2)

	got, err := parseProtoFieldsForGameEvent(data)
	require.NoError(t, err)
	id, ok := got.eventID()
	require.True(t, ok)
	require.EqualValues(t, 7, id)
	require.Equal(t, []csdemo.Variant{csdemo.VarString("userid"), csdemo.VarBool(true)}, got.keyValues())
}

func TestDecodeGameEventListBuildsDescriptors(t *testing.T) {
	var keyName []byte
	keyName = protowire.AppendTag(keyName, 1, protowire.VarintType)
	keyName = protowire.AppendVarint(keyName, uint64(csdemo.EventKeyShort))
	keyName = protowire.AppendTag(keyName, 2, protowire.BytesType)
	keyName = protowire.AppendBytes(keyName, []byte("userid"))

	var desc []byte
	desc = protowire.AppendTag(desc, 1, protowire.VarintType)
	desc = protowire.AppendVarint(desc, 12)
	desc = protowire.AppendTag(desc, 2, protowire.BytesType)
	desc = protowire.AppendBytes(desc, []byte("player_death"))
	desc = appendSubmessage(desc, 3, keyName)

	var data []byte
	data = appendSubmessage(data, 1, desc)

	descs := decodeGameEventList(data)
	require.Len(t, descs, 1)
	require.EqualValues(t, 12, descs[0].EventID)
	require.Equal(t, "player_death", descs[0].Name)
	require.Len(t, descs[0].Keys, 1)
	require.Equal(t, "userid", descs[0].Keys[0].Name)
	require.Equal(t, csdemo.EventKeyShort, descs[0].Keys[0].Type)
}

func TestDecodePacketEntitiesMsgFieldNumbers(t *testing.T) {
	var data []byte
	data = protowire.AppendTag(data, 1, protowire.VarintType) // max_entries
	data = protowire.AppendVarint(data, 16384)
	data = protowire.AppendTag(data, 2, protowire.VarintType) // updated_entries
	data = protowire.AppendVarint(data, 3)
	data = protowire.AppendTag(data, 5, protowire.VarintType) // baseline
	data = protowire.AppendVarint(data, 0)
	data = protowire.AppendTag(data, 7, protowire.BytesType) // entity_data
	data = protowire.AppendBytes(data, []byte{0xff, 0x01})
	data = protowire.AppendTag(data, 14, protowire.VarintType) // has_pvs_vis_bits
	data = protowire.AppendVarint(data, 1)

	entityData, hasPVS, updated := decodePacketEntitiesMsg(data)
	require.Equal(t, []byte{0xff, 0x01}, entityData)
	require.True(t, hasPVS)
	require.EqualValues(t, 3, updated)
}

func TestDecodeClassInfoMessageBuildsEntries(t *testing.T) {
	var entry []byte
	entry = protowire.AppendTag(entry, 1, protowire.VarintType)
	entry = protowire.AppendVarint(entry, 40)
	entry = protowire.AppendTag(entry, 2, protowire.BytesType)
	entry = protowire.AppendBytes(entry, []byte("CCSPlayerController"))

	var data []byte
	data = appendSubmessage(data, 1, entry)

	classes := decodeClassInfoMessage(data)
	require.Len(t, classes, 1)
	require.EqualValues(t, 40, classes[0].ID)
	require.Equal(t, "CCSPlayerController", classes[0].Name)
}

func TestParseClassIDKey(t *testing.T) {
	id, ok := parseClassIDKey("42")
	require.True(t, ok)
	require.EqualValues(t, 42, id)

	_, ok = parseClassIDKey("not-a-number")
	require.False(t, ok)

	_, ok = parseClassIDKey("")
	require.False(t, ok)
}

func TestWantsTickEmptyMeansEveryTick(t *testing.T) {
	d := &Demo{cfg: ParserConfig{}}
	require.True(t, d.wantsTick(1234))
}

func TestWantsTickHonorsExplicitList(t *testing.T) {
	d := &Demo{cfg: ParserConfig{WantedTicks: []int32{10, 20}}}
	require.True(t, d.wantsTick(10))
	require.False(t, d.wantsTick(15))
}
