package csdemo

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// userInfoBytes builds a CMsgPlayerInfo payload: name=1, xuid=2 (fixed64),
// userid=3.
func userInfoBytes(userID int32, steamID uint64, name string) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, name)
	b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, steamID)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(userID))
	return b
}

func TestApplyUserInfoDecodesSteamIDAndName(t *testing.T) {
	tables := NewStringTables()
	ApplyUserInfo(tables, 0, userInfoBytes(3, 76561198000000001, "flusha"))

	ui, ok := tables.UserInfo[3]
	if !ok {
		t.Fatal("expected userinfo entry keyed by the message's own userid")
	}
	if ui.SteamID != 76561198000000001 {
		t.Errorf("SteamID = %d, want 76561198000000001", ui.SteamID)
	}
	if ui.Name != "flusha" {
		t.Errorf("Name = %q, want %q", ui.Name, "flusha")
	}
}

func TestApplyUserInfoIgnoresEmptyRecord(t *testing.T) {
	tables := NewStringTables()
	ApplyUserInfo(tables, 1, nil)

	if len(tables.UserInfo) != 0 {
		t.Errorf("expected no entry for an empty payload, got %+v", tables.UserInfo)
	}
}

func TestApplyUserInfoFallsBackToTableIndex(t *testing.T) {
	tables := NewStringTables()
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "bot")
	ApplyUserInfo(tables, 9, b)

	ui, ok := tables.UserInfo[9]
	if !ok || ui.Name != "bot" {
		t.Fatalf("UserInfo[9] = %+v, %v; want table-index fallback", ui, ok)
	}
}

func TestApplyInstanceBaselineRecordsRawBytes(t *testing.T) {
	tables := NewStringTables()
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	ApplyInstanceBaseline(tables, 7, raw)

	got, ok := tables.Baselines[7]
	if !ok || len(got) != 4 {
		t.Fatalf("Baselines[7] = %v, %v", got, ok)
	}
}

func TestLookupUserInfoFallsBackToLowByte(t *testing.T) {
	tables := NewStringTables()
	ApplyUserInfo(tables, 0, userInfoBytes(0, 1, "low-byte-match"))

	ui, ok := tables.LookupUserInfo(0x200)
	if !ok || ui.Name != "low-byte-match" {
		t.Fatalf("LookupUserInfo(0x200) = %+v, %v; want fallback to id 0 (0x200 & 0xff)", ui, ok)
	}
}

func TestLookupUserInfoExactMatchPreferred(t *testing.T) {
	tables := NewStringTables()
	ApplyUserInfo(tables, 0, userInfoBytes(5, 1, "exact"))
	ApplyUserInfo(tables, 0, userInfoBytes(0, 2, "fallback"))

	ui, ok := tables.LookupUserInfo(5)
	if !ok || ui.Name != "exact" {
		t.Fatalf("LookupUserInfo(5) = %+v, %v; want the exact match", ui, ok)
	}
}

func TestClearDropsBothTables(t *testing.T) {
	tables := NewStringTables()
	ApplyUserInfo(tables, 0, userInfoBytes(1, 42, "gone"))
	ApplyInstanceBaseline(tables, 3, []byte{1})

	tables.Clear()
	if len(tables.UserInfo) != 0 || len(tables.Baselines) != 0 {
		t.Errorf("Clear left entries behind: %+v %+v", tables.UserInfo, tables.Baselines)
	}
}
