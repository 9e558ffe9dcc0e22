package csdemo

// StringTableEntry is one materialized row of the userinfo or
// instancebaseline string tables.
type StringTableEntry struct {
	Index int32
	Key   string
	Value []byte
}

// PlayerUserInfo is the decoded fixed-layout userinfo record keyed by
// user-id, giving steam identity and name for game-event
// enrichment before the player's controller entity even exists.
type PlayerUserInfo struct {
	UserID  int32
	Name    string
	SteamID uint64
}

// StringTables tracks only the two tables this parser materializes:
// per-user-id identity (userinfo) and per-class baseline bytes
// (instancebaseline). Every other table is skipped entirely.
type StringTables struct {
	UserInfo   map[int32]*PlayerUserInfo
	Baselines  map[uint32][]byte
}

// NewStringTables returns empty tables.
func NewStringTables() *StringTables {
	return &StringTables{
		UserInfo:  make(map[int32]*PlayerUserInfo),
		Baselines: make(map[uint32][]byte),
	}
}

// ApplyUserInfo decodes one userinfo entry's CMsgPlayerInfo payload
// (1=name, 2=xuid, 3=userid, 4=steamid — the two id fields are fixed64) and
// records it by user id, falling back to the table index when the message
// carries no userid of its own.
func ApplyUserInfo(tables *StringTables, index int32, value []byte) {
	fields, err := ParseProtoFields(value)
	if err != nil {
		return
	}
	ui := &PlayerUserInfo{UserID: index}
	if s, ok := FirstString(fields, 1); ok {
		ui.Name = s
	}
	if v, ok := FirstFixed64(fields, 2); ok {
		ui.SteamID = v
	}
	if v, ok := FirstVarint(fields, 3); ok {
		ui.UserID = int32(v)
	}
	if v, ok := FirstFixed64(fields, 4); ok && v != 0 {
		ui.SteamID = v
	}
	if ui.SteamID == 0 && ui.Name == "" {
		return
	}
	tables.UserInfo[ui.UserID] = ui
}

// ApplyInstanceBaseline records classID's baseline delta payload, later
// decoded by the entity-create path into a FieldPath/Variant list.
func ApplyInstanceBaseline(tables *StringTables, classID uint32, value []byte) {
	tables.Baselines[classID] = value
}

// Clone deep-copies both tables for a Pass 2 shard, which replays updates
// against its own copy rather than racing siblings on the shared one.
func (t *StringTables) Clone() *StringTables {
	out := NewStringTables()
	for id, ui := range t.UserInfo {
		cp := *ui
		out.UserInfo[id] = &cp
	}
	for classID, raw := range t.Baselines {
		out.Baselines[classID] = append([]byte(nil), raw...)
	}
	return out
}

// Clear drops every materialized entry, for svc_ClearAllStringTables;
// subsequent create/update messages repopulate both tables.
func (t *StringTables) Clear() {
	t.UserInfo = make(map[int32]*PlayerUserInfo)
	t.Baselines = make(map[uint32][]byte)
}

// LookupUserInfo returns the userinfo record for id, falling back to the
// low byte of id if the full id isn't present (per the enrichment rule:
// "look up by the id's low byte, fallback: full id" — here applied in
// reverse since ids already arrive full-width off the wire and only
// event-key values are byte-truncated).
func (t *StringTables) LookupUserInfo(id int32) (*PlayerUserInfo, bool) {
	if ui, ok := t.UserInfo[id]; ok {
		return ui, true
	}
	low := id & 0xff
	ui, ok := t.UserInfo[low]
	return ui, ok
}
