// Package demo is the high-level modeling layer: it wires BitReader, the
// frame reader, the send-table/serializer builder, the prop controller,
// the entity table, string tables and the game-event registry into the
// two-pass decode pipeline and exposes the resulting columns, events,
// projectile table and header map.
package demo

import (
	"io"
	"sort"
	"sync"

	"github.com/csdemo/csdemo"
	"github.com/csdemo/csdemo/collect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protowire"
)

// ParserConfig controls what a Demo collects.
type ParserConfig struct {
	WantedPlayerProps []string
	WantedOtherProps  []string
	WantedEvents      []string // "all" is a sentinel meaning every descriptor
	WantedTicks       []int32  // empty means every tick
	ParseEntities     bool
	ParseProjectiles  bool
	OnlyHeader        bool
	OnlyConVars       bool
	DebugNulls        bool

	// Parallel opts into keyframe-sharded Pass 2; MaxShards bounds
	// concurrency (0 = unbounded, one shard per keyframe).
	Parallel  bool
	MaxShards int
}

// Stats is per-run bookkeeping the collector/entity pipeline accumulates,
// exposed for diagnostics and the end-to-end test scenarios.
type Stats struct {
	EntityDecodeErrors int
	UnknownPropNames   int
	FramesDecompressed int
	GameEventCounts    map[string]int
}

// Demo is a fully parsed (or header-only) demo file.
type Demo struct {
	cfg ParserConfig

	header      map[string]csdemo.Variant
	serializers map[string]*csdemo.Serializer
	qf          *csdemo.QFTable
	classes     *csdemo.EntityTable
	propCtl     *csdemo.PropController
	events      *csdemo.GameEventRegistry
	strings     *csdemo.StringTables
	collector   *collect.Collector

	gameEvents   []csdemo.GameEvent
	convars      map[string]string
	wantedEvents map[string]bool
	allEvents    bool
	stats        Stats

	// stringTableRegistry records created tables in creation order; an
	// svc_UpdateStringTable addresses its table by this index. Built during
	// Pass 1 and read-only afterwards, like the other Pass 1 artifacts.
	stringTableRegistry []stringTableMeta
}

// NewFromBytes parses data in full according to cfg.
func NewFromBytes(data []byte, cfg ParserConfig) (*Demo, error) {
	expectedLen, err := csdemo.ParseFileHeader(data)
	if err != nil {
		return nil, err
	}
	if err := csdemo.CheckDemoLength(len(data), expectedLen); err != nil {
		return nil, err
	}

	d := &Demo{
		cfg:     cfg,
		header:  make(map[string]csdemo.Variant),
		classes: csdemo.NewEntityTable(),
		events:  csdemo.NewGameEventRegistry(),
		strings: csdemo.NewStringTables(),
		convars: make(map[string]string),
		stats:   Stats{GameEventCounts: make(map[string]int)},
	}
	d.wantedEvents = make(map[string]bool, len(cfg.WantedEvents))
	for _, name := range cfg.WantedEvents {
		if name == "all" {
			d.allEvents = true
		}
		d.wantedEvents[name] = true
	}

	body := data[16:]
	p1, err := d.pass1(body)
	if err != nil {
		return nil, err
	}
	if cfg.OnlyHeader || cfg.OnlyConVars {
		return d, nil
	}
	d.resolveBaselines()

	d.propCtl = csdemo.NewPropController(
		applyAliases(cfg.WantedPlayerProps),
		applyAliases(cfg.WantedOtherProps),
		defaultButtonNames(),
	)
	// Walk serializers in name order so prop IDs (and with them column
	// iteration order) are stable across runs.
	serNames := make([]string, 0, len(d.serializers))
	for name := range d.serializers {
		serNames = append(serNames, name)
	}
	sort.Strings(serNames)
	for _, name := range serNames {
		if err := d.propCtl.FindPropNamePaths(d.serializers[name]); err != nil {
			return nil, err
		}
	}
	d.propCtl.SetCustomPropInfos()

	d.collector = collect.NewCollector(d.classes, d.propCtl, d.strings)
	d.collector.ParseProjectiles = cfg.ParseProjectiles
	d.collector.DebugNulls = cfg.DebugNulls

	if cfg.ParseEntities {
		if err := d.pass2(body, p1); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// NewFromReaderAt parses a demo given as an io.ReaderAt of known size,
// reading the full byte range into memory (the parser operates over a flat
// byte slice either way; callers preferring a memory-mapped file can pass
// an io.ReaderAt backed by mmap without changing this contract).
func NewFromReaderAt(r io.ReaderAt, size int64, cfg ParserConfig) (*Demo, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return NewFromBytes(buf, cfg)
}

func applyAliases(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = csdemo.ResolveFriendlyName(n)
	}
	return out
}

func defaultButtonNames() []string {
	return []string{"FORWARD", "BACK", "USE", "JUMP", "DUCK", "LEFT", "RIGHT"}
}

// pass1Result carries everything Pass 1 discovers that Pass 2 (or a
// keyframe shard) needs to start decoding: keyframe byte offsets and the
// raw send-table/class-info/event-list bytes already folded into Demo.
type pass1Result struct {
	keyframeOffsets []int64
}

// pass1 scans send-tables, class info, full-packet offsets, string tables
// and the event list; it never touches packet-entities deltas.
func (d *Demo) pass1(body []byte) (*pass1Result, error) {
	fr := csdemo.NewFrameReader(body, 0)
	res := &pass1Result{}

	sawClassInfo := false
	sawEventList := false

	for {
		frame, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			break
		}
		if frame.Compressed {
			d.stats.FramesDecompressed++
		}

		switch frame.Cmd {
		case csdemo.CmdFileHeader:
			d.decodeFileHeader(frame.Payload)
		case csdemo.CmdSendTables:
			if err := d.decodeSendTables(frame.Payload); err != nil {
				return nil, err
			}
		case csdemo.CmdClassInfo:
			d.decodeClassInfo(frame.Payload)
			sawClassInfo = true
		case csdemo.CmdStringTables:
			d.decodeStringTableBlock(frame.Payload)
		case csdemo.CmdFullPacket:
			res.keyframeOffsets = append(res.keyframeOffsets, frame.Offset)
		case csdemo.CmdPacket, csdemo.CmdSignonPacket:
			d.scanInnerMessagesPass1(frame.Payload, &sawEventList)
		case csdemo.CmdStop:
			return res, nil
		}

		if d.cfg.OnlyHeader && len(d.header) > 0 {
			return res, nil
		}
		// Exit-early: once class info and the event list have both been
		// observed, an OnlyConVars parse stops scanning.
		if d.cfg.OnlyConVars && sawClassInfo && sawEventList {
			break
		}
	}
	return res, nil
}

func (d *Demo) decodeFileHeader(payload []byte) {
	fields, err := csdemo.ParseProtoFields(payload)
	if err != nil {
		return
	}
	// DemFileHeader field numbers per the public CS2 demo protocol:
	// 1=demo_file_stamp 2=network_protocol 3=server_name 4=client_name
	// 5=map_name 6=game_directory 7=fullpackets_version
	// 8=allow_clientside_entities 9=allow_clientside_particles
	// 10=addons 11=demo_version_guid 12=demo_version_name
	set := func(key string, num protowire.Number) {
		if s, ok := csdemo.FirstString(fields, num); ok {
			d.header[key] = csdemo.VarString(s)
		}
	}
	set("demo_file_stamp", 1)
	set("server_name", 3)
	set("client_name", 4)
	set("map_name", 5)
	set("game_directory", 6)
	set("addons", 10)
	set("demo_version_guid", 11)
	set("demo_version_name", 12)
	if v, ok := csdemo.FirstVarint(fields, 2); ok {
		d.header["network_protocol"] = csdemo.VarU32(uint32(v))
	}
	if v, ok := csdemo.FirstVarint(fields, 7); ok {
		d.header["fullpackets_version"] = csdemo.VarU32(uint32(v))
	}
}

func (d *Demo) decodeSendTables(payload []byte) error {
	inner, err := unwrapSendTables(payload)
	if err != nil {
		return err
	}
	fields, serializerDefs, err := decodeFlattenedSerializer(inner)
	if err != nil {
		return err
	}
	qf := &csdemo.QFTable{}
	sers, err := csdemo.BuildSerializers(fields, serializerDefs, qf)
	if err != nil {
		return err
	}
	d.serializers = sers
	d.qf = qf
	return nil
}

// resolveBaselines decodes every raw instancebaseline blob Pass 1 captured
// into the entity table's {paths, values} form, using each class's own
// serializer to resolve field paths and decode their leaf values. Run once,
// after Pass 1 finishes and before Pass 2 starts applying deltas.
func (d *Demo) resolveBaselines() {
	for classID, raw := range d.strings.Baselines {
		ci, ok := d.classes.ClassInfos()[classID]
		if !ok || ci.Serializer == nil {
			continue
		}
		b := csdemo.NewBitReader(raw)
		paths, err := csdemo.DecodeFieldPaths(b)
		if err != nil {
			continue
		}
		values := make([]csdemo.Variant, len(paths))
		for i, fp := range paths {
			dec, _, _, err := csdemo.ResolveFieldPath(ci.Serializer, fp)
			if err != nil {
				continue
			}
			v, err := csdemo.DecodeValue(b, dec, d.qf)
			if err != nil {
				continue
			}
			values[i] = v
		}
		d.classes.SetBaseline(classID, paths, values)
	}
}

func (d *Demo) decodeClassInfo(payload []byte) {
	classes := decodeClassInfoMessage(payload)
	for _, ci := range classes {
		ser := d.serializers[ci.Name]
		d.classes.RegisterClass(ci.ID, ci.Name, ser)
	}
}

func (d *Demo) decodeStringTableBlock(payload []byte) {
	d.applyStringTableEntries(decodeStringTableSnapshot(payload))
}

// applyStringTableEntries folds userinfo/instancebaseline rows into the
// materialized tables; every other table's rows never reach this point.
func (d *Demo) applyStringTableEntries(entries []stringTableEntry) {
	for _, e := range entries {
		switch e.TableName {
		case "userinfo":
			csdemo.ApplyUserInfo(d.strings, e.Index, e.Value)
		case "instancebaseline":
			// instancebaseline keys are the class id formatted as a
			// decimal string by the engine.
			if classID, ok := parseClassIDKey(e.Key); ok {
				csdemo.ApplyInstanceBaseline(d.strings, classID, e.Value)
			}
		}
	}
}

func (d *Demo) scanInnerMessagesPass1(payload []byte, sawEventList *bool) {
	for _, m := range splitInnerMessages(unwrapDemoPacket(payload)) {
		switch m.Kind {
		case msgGameEventList:
			for _, desc := range decodeGameEventList(m.Data) {
				d.events.Register(desc)
			}
			*sawEventList = true
		case msgCreateStringTable:
			meta, entries := decodeCreateStringTable(m.Data)
			d.stringTableRegistry = append(d.stringTableRegistry, meta)
			d.applyStringTableEntries(entries)
		case msgUpdateStringTable:
			_, entries := decodeUpdateStringTable(m.Data, d.stringTableRegistry)
			d.applyStringTableEntries(entries)
		case msgSetConVar:
			// Pass 1 only records values (an OnlyConVars caller never runs
			// Pass 2); event synthesis happens during Pass 2.
			for _, kv := range decodeSetConVar(m.Data) {
				d.convars[kv[0]] = kv[1]
			}
		}
	}
}

// pass2 replays the frame stream from the start, applying every
// packet-entities delta and collecting properties at each wanted tick.
// The keyframe offsets in p1 are only consulted when cfg.Parallel is set;
// the serial path below always runs start-to-finish and is the one
// exercised when Parallel is false, matching the default single-threaded
// path from the resource model.
func (d *Demo) pass2(body []byte, p1 *pass1Result) error {
	if d.cfg.Parallel && len(p1.keyframeOffsets) > 0 {
		return d.pass2Sharded(body, p1.keyframeOffsets)
	}
	return d.pass2Serial(body, 0, int64(len(body)))
}

func (d *Demo) pass2Serial(body []byte, start, end int64) error {
	fr := csdemo.NewFrameReader(body[start:end], 0)
	tracker := newEntityIDTracker()

	for {
		frame, err := fr.Next()
		if err != nil {
			return err
		}
		if frame == nil {
			break
		}
		wanted := d.wantsTick(frame.Tick)

		switch frame.Cmd {
		case csdemo.CmdPacket, csdemo.CmdSignonPacket, csdemo.CmdFullPacket:
			d.processPacket(frame, tracker)
		}

		if wanted {
			d.collector.CollectTick(frame.Tick)
		}
	}
	return nil
}

// pass2Sharded runs the serial path once per keyframe-bounded byte range,
// each on its own goroutine. Every shard is an independent Demo clone that
// shares only Pass 1's finalized read-only artifacts (serializers, QF
// table, class/baseline registrations, prop controller, event registry,
// string-table registry) and owns everything mutable: entity table, string
// tables, player map, columns, event log, stats. Results concatenate in
// keyframe order, preserving the file's frame order.
func (d *Demo) pass2Sharded(body []byte, offsets []int64) error {
	maxConc := d.cfg.MaxShards
	if maxConc <= 0 || maxConc > len(offsets) {
		maxConc = len(offsets)
	}
	shards := make([]*Demo, len(offsets))
	errs := make([]error, len(offsets))
	sem := make(chan struct{}, maxConc)
	var wg sync.WaitGroup

	for i := range offsets {
		shards[i] = d.newShard()
		end := int64(len(body))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		wg.Add(1)
		go func(i int, start, end int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = shards[i].pass2Serial(body, start, end)
		}(i, offsets[i], end)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for i, shard := range shards {
		for id, col := range shard.collector.Columns {
			dst, ok := d.collector.Columns[id]
			if !ok {
				continue
			}
			if dst.NumNones == len(dst.Values) {
				dst.NumNones += col.NumNones
			}
			dst.Values = append(dst.Values, col.Values...)
		}
		d.collector.Projectiles = append(d.collector.Projectiles, shard.collector.Projectiles...)
		d.gameEvents = append(d.gameEvents, shard.gameEvents...)
		for name, n := range shard.stats.GameEventCounts {
			d.stats.GameEventCounts[name] += n
		}
		d.stats.EntityDecodeErrors += shard.stats.EntityDecodeErrors
		for name, value := range shard.convars {
			d.convars[name] = value
		}
		// The last shard saw the end of the match; its player map is the
		// final roster.
		if i == len(shards)-1 {
			d.collector.Players = shard.collector.Players
		}
	}
	return nil
}

// newShard clones d for one keyframe-bounded Pass 2 range: read-only Pass 1
// artifacts are shared by reference, everything a shard mutates is fresh.
func (d *Demo) newShard() *Demo {
	shard := &Demo{
		cfg:                 d.cfg,
		header:              d.header,
		serializers:         d.serializers,
		qf:                  d.qf,
		propCtl:             d.propCtl,
		events:              d.events,
		strings:             d.strings.Clone(),
		convars:             make(map[string]string),
		wantedEvents:        d.wantedEvents,
		allEvents:           d.allEvents,
		stringTableRegistry: d.stringTableRegistry,
		stats:               Stats{GameEventCounts: make(map[string]int)},
	}
	shard.classes = csdemo.NewEntityTable()
	for id, ci := range d.classes.ClassInfos() {
		shard.classes.RegisterClass(id, ci.Name, ci.Serializer)
	}
	for classID, bl := range d.classes.Baselines() {
		shard.classes.SetBaseline(classID, bl.Paths, bl.Values)
	}
	shard.collector = collect.NewCollector(shard.classes, d.propCtl, shard.strings)
	shard.collector.ParseProjectiles = d.cfg.ParseProjectiles
	shard.collector.DebugNulls = d.cfg.DebugNulls
	return shard
}

func (d *Demo) wantsTick(tick int32) bool {
	if len(d.cfg.WantedTicks) == 0 {
		return true
	}
	for _, t := range d.cfg.WantedTicks {
		if t == tick {
			return true
		}
	}
	return false
}

// processPacket walks one DemPacket/DemSignonPacket/DemFullPacket payload.
// Game events in the deferred set are held back until every packet-entities
// message in the frame has been applied, because their enrichment reads
// post-update entity state.
func (d *Demo) processPacket(frame *csdemo.Frame, tracker *entityIDTracker) {
	inner := frame.Payload
	if frame.Cmd == csdemo.CmdFullPacket {
		snapshot, packet := unwrapFullPacket(frame.Payload)
		d.applyStringTableEntries(decodeStringTableSnapshot(snapshot))
		inner = packet
	} else {
		inner = unwrapDemoPacket(frame.Payload)
	}

	var deferred []csdemo.GameEvent
	for _, m := range splitInnerMessages(inner) {
		switch m.Kind {
		case msgPacketEntities:
			d.applyPacketEntities(m.Data, frame.Tick, tracker)
		case msgGameEvent:
			ev, ok := d.decodeWantedGameEvent(m.Data, frame.Tick)
			if !ok {
				continue
			}
			if csdemo.IsDeferredEvent(ev.Name) {
				deferred = append(deferred, ev)
				continue
			}
			d.finishGameEvent(ev)
		case msgSetConVar:
			d.handleSetConVar(m.Data, frame.Tick)
		case msgServerRankUpdate:
			d.handleRankUpdate(m.Data, frame.Tick)
		case msgClearAllStringTables:
			d.strings.Clear()
		case msgCreateStringTable:
			// Tables were registered during Pass 1; re-seeing the create
			// here (or in a keyframe shard) only re-applies its entries.
			_, entries := decodeCreateStringTable(m.Data)
			d.applyStringTableEntries(entries)
		case msgUpdateStringTable:
			_, entries := decodeUpdateStringTable(m.Data, d.stringTableRegistry)
			d.applyStringTableEntries(entries)
		}
	}
	for _, ev := range deferred {
		d.finishGameEvent(ev)
	}
}

func (d *Demo) wantsEvent(name string) bool {
	return d.allEvents || d.wantedEvents[name]
}

// decodeWantedGameEvent decodes one svc_GameEvent occurrence, dropping it if
// it is suppressed or the caller didn't ask for it. Enrichment happens later
// in finishGameEvent so deferred events see post-update entity state.
func (d *Demo) decodeWantedGameEvent(data []byte, tick int32) (csdemo.GameEvent, bool) {
	ev, ok := decodeGameEvent(data, d.events)
	if !ok {
		return csdemo.GameEvent{}, false
	}
	if csdemo.ShouldSuppressEvent(ev.Name) || !d.wantsEvent(ev.Name) {
		return csdemo.GameEvent{}, false
	}
	ev.Tick = tick
	return ev, true
}

func (d *Demo) finishGameEvent(ev csdemo.GameEvent) {
	d.enrichGameEvent(&ev)
	d.gameEvents = append(d.gameEvents, ev)
	d.stats.GameEventCounts[ev.Name]++
}

func (d *Demo) enrichGameEvent(ev *csdemo.GameEvent) {
	sawUserID := false
	for keyName, val := range ev.Fields {
		prefix, ok := csdemo.EnrichmentPrefix(keyName)
		if !ok {
			continue
		}
		if keyName == "userid" {
			sawUserID = true
		}
		uid, ok := csdemo.AsU32(val)
		if !ok {
			continue
		}
		ui, ok := d.strings.LookupUserInfo(int32(uid))
		if !ok {
			continue
		}
		ev.Fields[prefix+"name"] = csdemo.VarString(ui.Name)
		ev.Fields[prefix+"steamid"] = csdemo.VarU64(ui.SteamID)
		if d.collector != nil {
			if pawnID, ok := d.collector.PawnBySteamID(ui.SteamID); ok {
				for name, v := range d.collector.WantedPlayerProps(ev.Tick, pawnID) {
					ev.Fields[prefix+name] = v
				}
			}
		}
	}
	if !sawUserID {
		d.enrichFromEntityID(ev)
	}
}

// enrichFromEntityID resolves a grenade event's thrower via the projectile
// entity's owner handle when the event carries an entityid key but no
// userid.
func (d *Demo) enrichFromEntityID(ev *csdemo.GameEvent) {
	val, ok := ev.Fields["entityid"]
	if !ok || d.collector == nil {
		return
	}
	entID, ok := csdemo.AsU32(val)
	if !ok {
		return
	}
	e, ok := d.classes.Get(int32(entID))
	if !ok {
		return
	}
	ownerProp := d.propCtl.Special.GrenadeOwnerID
	h, ok := e.Props[ownerProp]
	if !ok {
		if h, ok = e.Props[d.propCtl.Special.OwnerEntity]; !ok {
			return
		}
	}
	owner, ok := csdemo.AsU32(h)
	if !ok {
		return
	}
	meta, ok := d.collector.Players[int32(owner&0x7FF)]
	if !ok {
		return
	}
	if meta.Name != "" {
		ev.Fields["user_name"] = csdemo.VarString(meta.Name)
	}
	if meta.HasSteamID {
		ev.Fields["user_steamid"] = csdemo.VarU64(meta.SteamID)
	}
}

// decodeSetConVar extracts the {name, value} pairs of a net_SetConVar
// message: CNETMsg_SetConVar is {convars=1}, CMsg_CVars is {cvars=1
// repeated}, each cvar {name=1, value=2}.
func decodeSetConVar(data []byte) [][2]string {
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return nil
	}
	wrapper, ok := csdemo.FirstBytes(top, 1)
	if !ok {
		return nil
	}
	inner, err := csdemo.ParseProtoFields(wrapper)
	if err != nil {
		return nil
	}
	var out [][2]string
	for _, raw := range csdemo.AllBytes(inner, 1) {
		cf, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			continue
		}
		name, ok := csdemo.FirstString(cf, 1)
		if !ok {
			continue
		}
		value, _ := csdemo.FirstString(cf, 2)
		out = append(out, [2]string{name, value})
	}
	return out
}

// handleSetConVar records every convar in a net_SetConVar message and, when
// server_cvar events were asked for, synthesizes one per convar in place of
// the suppressed wire event.
func (d *Demo) handleSetConVar(data []byte, tick int32) {
	for _, kv := range decodeSetConVar(data) {
		d.convars[kv[0]] = kv[1]
		if d.wantsEvent("server_cvar") {
			d.gameEvents = append(d.gameEvents, csdemo.GameEvent{
				Name: "server_cvar",
				Tick: tick,
				Fields: map[string]csdemo.Variant{
					"cvar_name":  csdemo.VarString(kv[0]),
					"cvar_value": csdemo.VarString(kv[1]),
				},
			})
			d.stats.GameEventCounts["server_cvar"]++
		}
	}
}

// steamID64Base converts an account id into a 64-bit individual steam id.
const steamID64Base = 76561197960265728

// handleRankUpdate synthesizes one rank_update event per entry of a
// CCSUsrMsg_ServerRankUpdate message: repeated rank_update=1, each
// {account_id=1, rank_old=2, rank_new=3, num_wins=4, rank_change=5}.
func (d *Demo) handleRankUpdate(data []byte, tick int32) {
	if !d.wantsEvent("rank_update") {
		return
	}
	top, err := csdemo.ParseProtoFields(data)
	if err != nil {
		return
	}
	for _, raw := range csdemo.AllBytes(top, 1) {
		rf, err := csdemo.ParseProtoFields(raw)
		if err != nil {
			continue
		}
		fields := make(map[string]csdemo.Variant)
		if v, ok := csdemo.FirstVarint(rf, 1); ok {
			fields["user_steamid"] = csdemo.VarU64(v + steamID64Base)
		}
		if v, ok := csdemo.FirstVarint(rf, 2); ok {
			fields["rank_old"] = csdemo.VarI32(int32(v))
		}
		if v, ok := csdemo.FirstVarint(rf, 3); ok {
			fields["rank_new"] = csdemo.VarI32(int32(v))
		}
		if v, ok := csdemo.FirstVarint(rf, 4); ok {
			fields["num_wins"] = csdemo.VarI32(int32(v))
		}
		if v, ok := csdemo.FirstVarint(rf, 5); ok {
			fields["rank_change"] = csdemo.VarF32(float32(int32(v)))
		}
		d.gameEvents = append(d.gameEvents, csdemo.GameEvent{Name: "rank_update", Tick: tick, Fields: fields})
		d.stats.GameEventCounts["rank_update"]++
	}
}

func decodeGameEvent(data []byte, reg *csdemo.GameEventRegistry) (csdemo.GameEvent, bool) {
	fields, err := parseProtoFieldsForGameEvent(data)
	if err != nil {
		return csdemo.GameEvent{}, false
	}
	eventID, ok := fields.eventID()
	if !ok {
		return csdemo.GameEvent{}, false
	}
	desc, ok := reg.Lookup(eventID)
	if !ok {
		return csdemo.GameEvent{}, false
	}
	ev := csdemo.GameEvent{Name: desc.Name, Fields: make(map[string]csdemo.Variant)}
	keys := fields.keyValues()
	for i, k := range desc.Keys {
		if i >= len(keys) {
			break
		}
		ev.Fields[k.Name] = keys[i]
	}
	return ev, true
}

// Header returns the parsed header key/value map (available even when
// cfg.OnlyHeader stops the parse right after Pass 1).
func (d *Demo) Header() map[string]csdemo.Variant { return d.header }

// Columns returns the collected output columns, keyed by PropID.
func (d *Demo) Columns() map[uint32]*csdemo.Column {
	if d.collector == nil {
		return nil
	}
	return d.collector.Columns
}

// PropInfos returns every PropInfo a caller actually requested.
func (d *Demo) PropInfos() []csdemo.PropInfo {
	if d.propCtl == nil {
		return nil
	}
	return d.propCtl.WantedPropInfos()
}

// GameEvents returns the decoded, enriched game-event log in file order.
func (d *Demo) GameEvents() []csdemo.GameEvent { return d.gameEvents }

// Projectiles returns the synthesized projectile side table.
func (d *Demo) Projectiles() []collect.ProjectileRecord {
	if d.collector == nil {
		return nil
	}
	return d.collector.Projectiles
}

// EndOfMatchPlayer is one row of the final player roster.
type EndOfMatchPlayer struct {
	SteamID    uint64
	Name       string
	TeamNumber uint32
}

// EndOfMatchPlayers returns the last known roster, one row per distinct
// steamid seen in PlayerMetaData.
func (d *Demo) EndOfMatchPlayers() []EndOfMatchPlayer {
	if d.collector == nil {
		return nil
	}
	seen := make(map[uint64]bool)
	var out []EndOfMatchPlayer
	for _, meta := range d.collector.Players {
		if !meta.HasSteamID || seen[meta.SteamID] {
			continue
		}
		seen[meta.SteamID] = true
		out = append(out, EndOfMatchPlayer{SteamID: meta.SteamID, Name: meta.Name, TeamNumber: meta.TeamNum})
	}
	return out
}

// ConVars returns every console-variable assignment seen in net_SetConVar
// messages, last value wins.
func (d *Demo) ConVars() map[string]string { return d.convars }

// Stats returns the run's per-demo bookkeeping counters.
func (d *Demo) Stats() Stats { return d.stats }

// SetLogger installs a zerolog.Logger the underlying csdemo package uses
// for debug/warn diagnostics.
func SetLogger(l zerolog.Logger) { csdemo.SetLogger(l) }

func parseClassIDKey(key string) (uint32, bool) {
	var n uint32
	if len(key) == 0 {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + uint32(r-'0')
	}
	return n, true
}
