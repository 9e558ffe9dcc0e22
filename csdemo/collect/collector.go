// Package collect implements the property collector: per-tick column
// projection over the entity table, with coordinate synthesis, velocity
// differencing, inventory enumeration and projectile-table tracking.
package collect

import (
	"math"
	"sort"

	"github.com/csdemo/csdemo"
)

// PlayerMetaData mirrors one PlayerController's identity, reconstructed
// from special IDs whenever a PlayerController or Team entity updates.
type PlayerMetaData struct {
	PlayerEntityID     int32
	HasPlayerEntityID  bool
	ControllerEntityID int32
	SteamID            uint64
	HasSteamID         bool
	Name               string
	TeamNum            uint32
	HasTeamNum         bool
}

// Teams records the three team entity ids (1 = spectator, 2/3 = playing
// sides), set whenever a CCSTeam entity updates its team-num prop.
type Teams struct {
	Team1EntID, Team2EntID, Team3EntID int32
	HasTeam1, HasTeam2, HasTeam3       bool
}

// ProjectileRecord is one synthesized row of the projectile side table.
type ProjectileRecord struct {
	SteamID     uint64
	Name        string
	X, Y, Z     float32
	Tick        int32
	GrenadeType string
	EntityID    int32
}

// sample holds one player's two most recent position observations. The
// current slot only advances when a new tick arrives, so several velocity
// props resolved within one tick all difference the same pair.
type sample struct {
	tick    int32
	x, y    float32
	px, py  float32
	hasCur  bool
	hasPrev bool
}

// Collector owns everything needed to project live entity state into
// output columns: the entity table, the resolved prop list, button/weapon
// lookup tables, and the per-steamid velocity sample history.
type Collector struct {
	Entities      *csdemo.EntityTable
	PropCtl       *csdemo.PropController
	StringTables  *csdemo.StringTables
	Players       map[int32]*PlayerMetaData // keyed by pawn entity id
	Teams         Teams
	ButtonMasks   map[string]uint64
	WeaponIndices map[int32]string
	PaintKits     map[int32]string

	Columns     map[uint32]*csdemo.Column
	Projectiles []ProjectileRecord

	ParseProjectiles bool
	DebugNulls       bool

	samples     map[uint64]*sample
	defIndexID  uint32
	hasDefIndex bool
}

// NewCollector wires a collector against an already-built entity table and
// prop controller; wantedPropInfos is the controller's own filtered list
// (only props a caller actually asked for get a column).
func NewCollector(entities *csdemo.EntityTable, propCtl *csdemo.PropController, st *csdemo.StringTables) *Collector {
	c := &Collector{
		Entities:      entities,
		PropCtl:       propCtl,
		StringTables:  st,
		Players:       make(map[int32]*PlayerMetaData),
		ButtonMasks:   defaultButtonMasks(),
		WeaponIndices: defaultWeaponIndices(),
		PaintKits:     defaultPaintKits(),
		Columns:       make(map[uint32]*csdemo.Column),
		samples:       make(map[uint64]*sample),
	}
	for _, pi := range propCtl.WantedPropInfos() {
		c.Columns[pi.ID] = &csdemo.Column{PropID: pi.ID}
	}
	c.defIndexID, c.hasDefIndex = propCtl.FindIDBySuffix("m_iItemDefinitionIndex")
	return c
}

// defaultButtonMasks is a representative subset of the full button-name
// map; a production build generates this table from the game's input enum,
// out of scope here.
func defaultButtonMasks() map[string]uint64 {
	return map[string]uint64{
		"FORWARD": 1 << 0,
		"BACK":    1 << 1,
		"USE":     1 << 2,
		"JUMP":    1 << 3,
		"DUCK":    1 << 4,
		"LEFT":    1 << 5,
		"RIGHT":   1 << 6,
	}
}

// defaultWeaponIndices maps a handful of common item-def indices to their
// display name; the real table has hundreds of entries generated from the
// game's item schema.
func defaultWeaponIndices() map[int32]string {
	return map[int32]string{
		43:  "flashbang",
		44:  "hegrenade",
		42:  "smokegrenade",
		40:  "molotov",
		41:  "decoy",
		7:   "ak47",
		9:   "awp",
		3:   "deagle",
		507: "c4",
	}
}

func defaultPaintKits() map[int32]string {
	return map[int32]string{
		0: "default",
	}
}

// RefreshPlayerMetaData is called after a PlayerController or Team entity's
// delta is applied; it refreshes PlayerMetaData/Teams from the entity's
// special props and deduplicates by steamid.
func (c *Collector) RefreshPlayerMetaData(e *csdemo.Entity) {
	switch e.Kind {
	case csdemo.EntityKindPlayerController:
		c.refreshController(e)
	case csdemo.EntityKindTeam:
		c.refreshTeam(e)
	}
}

func (c *Collector) refreshController(e *csdemo.Entity) {
	sp := c.PropCtl.Special
	meta := &PlayerMetaData{ControllerEntityID: e.EntityID}

	if v, ok := e.Props[sp.SteamID]; ok {
		if u64, ok := v.(csdemo.VarU64); ok {
			meta.SteamID = uint64(u64)
			meta.HasSteamID = true
		} else if u, ok := csdemo.AsF32(v); ok {
			meta.SteamID = uint64(u)
			meta.HasSteamID = true
		}
	}
	if v, ok := e.Props[sp.PlayerName]; ok {
		if s, ok := v.(csdemo.VarString); ok {
			meta.Name = string(s)
		}
	}
	if v, ok := e.Props[sp.TeamNum]; ok {
		if u, ok := csdemo.AsU32(v); ok {
			meta.TeamNum = u
			meta.HasTeamNum = true
		}
	}
	if v, ok := e.Props[sp.PlayerPawn]; ok {
		if h, ok := csdemo.AsU32(v); ok {
			pawnID := int32(h & 0x7FFF)
			meta.PlayerEntityID = pawnID
			meta.HasPlayerEntityID = true
			c.Players[pawnID] = meta
			return
		}
	}
	// No resolvable pawn handle yet (e.g. a controller update before the
	// pawn spawns) — key provisionally by controller id so later lookups
	// by controller still find identity.
	c.Players[e.EntityID] = meta
}

func (c *Collector) refreshTeam(e *csdemo.Entity) {
	sp := c.PropCtl.Special
	v, ok := e.Props[sp.TeamTeamNum]
	if !ok {
		return
	}
	teamNum, ok := csdemo.AsU32(v)
	if !ok {
		return
	}
	switch teamNum {
	case 1:
		c.Teams.Team1EntID, c.Teams.HasTeam1 = e.EntityID, true
	case 2:
		c.Teams.Team2EntID, c.Teams.HasTeam2 = e.EntityID, true
	case 3:
		c.Teams.Team3EntID, c.Teams.HasTeam3 = e.EntityID, true
	}
}

// CollectTick materializes one row per wanted prop, per player, for tick.
// Players are visited in ascending pawn-entity-id order (deterministic
// output) and props in PropInfo order.
func (c *Collector) CollectTick(tick int32) {
	pawnIDs := make([]int32, 0, len(c.Players))
	for id, meta := range c.Players {
		if meta.HasPlayerEntityID {
			pawnIDs = append(pawnIDs, id)
		}
	}
	sort.Slice(pawnIDs, func(i, j int) bool { return pawnIDs[i] < pawnIDs[j] })

	for _, pi := range c.PropCtl.WantedPropInfos() {
		col := c.Columns[pi.ID]
		for _, pawnID := range pawnIDs {
			meta := c.Players[pawnID]
			v := c.resolve(pi, tick, pawnID, meta)
			if v == nil && c.DebugNulls {
				csdemo.Log().Debug().
					Int32("tick", tick).
					Int32("entity_id", pawnID).
					Uint32("prop_id", pi.ID).
					Str("prop", pi.PropName).
					Msg("null output cell")
			}
			col.Append(v)
		}
	}

	if c.ParseProjectiles {
		c.collectProjectiles(tick)
	}
}

// PawnBySteamID returns the pawn entity id currently bound to steamID.
func (c *Collector) PawnBySteamID(steamID uint64) (int32, bool) {
	for pawnID, meta := range c.Players {
		if meta.HasSteamID && meta.SteamID == steamID && meta.HasPlayerEntityID {
			return pawnID, true
		}
	}
	return 0, false
}

// WantedPlayerProps resolves every wanted player prop for one pawn at tick,
// for game-event enrichment; nulls are omitted rather than recorded.
func (c *Collector) WantedPlayerProps(tick, pawnID int32) map[string]csdemo.Variant {
	meta, ok := c.Players[pawnID]
	if !ok {
		return nil
	}
	var out map[string]csdemo.Variant
	for _, pi := range c.PropCtl.WantedPropInfos() {
		if !pi.IsPlayerProp {
			continue
		}
		v := c.resolve(pi, tick, pawnID, meta)
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]csdemo.Variant)
		}
		out[pi.PropName] = v
	}
	return out
}

func (c *Collector) resolve(pi csdemo.PropInfo, tick int32, pawnID int32, meta *PlayerMetaData) csdemo.Variant {
	switch pi.PropType {
	case csdemo.PropTypeTick:
		return csdemo.VarI32(tick)
	case csdemo.PropTypeName:
		if meta.Name == "" {
			return nil
		}
		return csdemo.VarString(meta.Name)
	case csdemo.PropTypeSteamid:
		if !meta.HasSteamID {
			return nil
		}
		return csdemo.VarU64(meta.SteamID)
	case csdemo.PropTypePlayer:
		return c.entityProp(pawnID, pi.ID)
	case csdemo.PropTypeTeam:
		teamEnt, ok := c.teamEntityFor(meta)
		if !ok {
			return nil
		}
		return c.entityProp(teamEnt, pi.ID)
	case csdemo.PropTypeController:
		return c.entityProp(meta.ControllerEntityID, pi.ID)
	case csdemo.PropTypeRules:
		return c.entityProp(c.rulesEntity(), pi.ID)
	case csdemo.PropTypeWeapon:
		return c.resolveWeapon(pi, pawnID)
	case csdemo.PropTypeButton:
		return c.resolveButton(pi, pawnID)
	case csdemo.PropTypeGameTime:
		return csdemo.VarF32(float32(tick) / 64.0)
	case csdemo.PropTypeCustom:
		return c.resolveCustom(pi, tick, pawnID, meta)
	default:
		return nil
	}
}

func (c *Collector) entityProp(entityID int32, propID uint32) csdemo.Variant {
	e, ok := c.Entities.Get(entityID)
	if !ok {
		return nil
	}
	v, ok := e.Props[propID]
	if !ok {
		return nil
	}
	return v
}

func (c *Collector) teamEntityFor(meta *PlayerMetaData) (int32, bool) {
	if !meta.HasTeamNum {
		return 0, false
	}
	switch meta.TeamNum {
	case 1:
		return c.Teams.Team1EntID, c.Teams.HasTeam1
	case 2:
		return c.Teams.Team2EntID, c.Teams.HasTeam2
	case 3:
		return c.Teams.Team3EntID, c.Teams.HasTeam3
	default:
		return 0, false
	}
}

func (c *Collector) rulesEntity() int32 {
	for id, e := range c.Entities.All() {
		if e.Kind == csdemo.EntityKindRules {
			return id
		}
	}
	return -1
}

func (c *Collector) activeWeaponEntity(pawnID int32) (int32, bool) {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return 0, false
	}
	v, ok := e.Props[sp.ActiveWeapon]
	if !ok {
		return 0, false
	}
	h, ok := csdemo.AsU32(v)
	if !ok {
		return 0, false
	}
	return int32(h & 0x7FF), true
}

func (c *Collector) resolveWeapon(pi csdemo.PropInfo, pawnID int32) csdemo.Variant {
	weaponID, ok := c.activeWeaponEntity(pawnID)
	if !ok {
		return nil
	}
	switch pi.PropName {
	case "weapon_name":
		if !c.hasDefIndex {
			return nil
		}
		we, ok := c.Entities.Get(weaponID)
		if !ok {
			return nil
		}
		v, ok := we.Props[c.defIndexID]
		if !ok {
			return nil
		}
		idx, ok := csdemo.AsU32(v)
		if !ok {
			return nil
		}
		name, ok := c.WeaponIndices[int32(idx)]
		if !ok {
			return nil
		}
		return csdemo.VarString(name)
	case "weapon_skin":
		we, ok := c.Entities.Get(weaponID)
		if !ok {
			return nil
		}
		v, ok := we.Props[csdemo.WeaponSkinID]
		if !ok {
			return nil
		}
		idx, ok := csdemo.AsU32(v)
		if !ok {
			return nil
		}
		kit, ok := c.PaintKits[int32(idx)]
		if !ok {
			return nil
		}
		return csdemo.VarString(kit)
	case "weapon_original_owner":
		we, ok := c.Entities.Get(weaponID)
		if !ok {
			return nil
		}
		lo, lok := we.Props[c.PropCtl.Special.OriginalOwnerLow]
		hi, hok := we.Props[c.PropCtl.Special.OriginalOwnerHigh]
		if !lok || !hok {
			return nil
		}
		low, _ := csdemo.AsU32(lo)
		high, _ := csdemo.AsU32(hi)
		return csdemo.VarU64(uint64(high)<<32 | uint64(low))
	default:
		return c.entityProp(weaponID, pi.ID)
	}
}

func (c *Collector) resolveButton(pi csdemo.PropInfo, pawnID int32) csdemo.Variant {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return nil
	}
	v, ok := e.Props[sp.Buttons]
	if !ok {
		return nil
	}
	mask, ok := v.(csdemo.VarU64)
	if !ok {
		u, ok := csdemo.AsU32(v)
		if !ok {
			return nil
		}
		mask = csdemo.VarU64(u)
	}
	bit, ok := c.ButtonMasks[pi.PropName]
	if !ok {
		return nil
	}
	return csdemo.VarBool(uint64(mask)&bit != 0)
}

func (c *Collector) resolveCustom(pi csdemo.PropInfo, tick int32, pawnID int32, meta *PlayerMetaData) csdemo.Variant {
	switch pi.PropName {
	case "X", "Y", "Z":
		return c.resolveCoord(pi.PropName, pawnID)
	case "velocity", "velocity_X", "velocity_Y", "velocity_Z":
		return c.resolveVelocity(pi.PropName, tick, pawnID, meta)
	case "pitch", "yaw":
		return c.resolveEyeAngle(pi.PropName, pawnID)
	case "is_alive":
		return c.resolveIsAlive(pawnID)
	case "inventory":
		return c.resolveInventory(pawnID)
	case "agent_skin":
		return c.entityProp(meta.ControllerEntityID, c.PropCtl.Special.AgentSkinIdx)
	case "entity_id":
		return csdemo.VarI32(pawnID)
	case "user_id":
		if !meta.HasSteamID {
			return nil
		}
		for _, ui := range c.StringTables.UserInfo {
			if ui.SteamID == meta.SteamID {
				return csdemo.VarI32(ui.UserID)
			}
		}
		return nil
	default:
		return nil
	}
}

func worldCoord(cell uint32, offset float32) float32 {
	return float32(int64(cell)<<9) - 16384 + offset
}

func (c *Collector) resolveCoord(axis string, pawnID int32) csdemo.Variant {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return nil
	}
	var cellID, offID uint32
	switch axis {
	case "X":
		cellID, offID = sp.CellX, sp.OffsetX
	case "Y":
		cellID, offID = sp.CellY, sp.OffsetY
	case "Z":
		cellID, offID = sp.CellZ, sp.OffsetZ
	}
	cv, ok := e.Props[cellID]
	if !ok {
		return nil
	}
	ov, ok := e.Props[offID]
	if !ok {
		return nil
	}
	cell, ok := csdemo.AsU32(cv)
	if !ok {
		return nil
	}
	off, ok := csdemo.AsF32(ov)
	if !ok {
		return nil
	}
	return csdemo.VarF32(worldCoord(cell, off))
}

func (c *Collector) resolveVelocity(which string, tick int32, pawnID int32, meta *PlayerMetaData) csdemo.Variant {
	if !meta.HasSteamID {
		return nil
	}
	xv := c.resolveCoord("X", pawnID)
	yv := c.resolveCoord("Y", pawnID)
	x, xok := csdemo.AsF32(xv)
	y, yok := csdemo.AsF32(yv)
	if !xok || !yok {
		return nil
	}
	s, ok := c.samples[meta.SteamID]
	if !ok {
		s = &sample{}
		c.samples[meta.SteamID] = s
	}
	if !s.hasCur || s.tick != tick {
		if s.hasCur {
			s.px, s.py, s.hasPrev = s.x, s.y, true
		}
		s.x, s.y, s.tick, s.hasCur = x, y, tick, true
	}
	if !s.hasPrev {
		return nil
	}
	dx := s.x - s.px
	dy := s.y - s.py
	switch which {
	case "velocity_X":
		return csdemo.VarF32(dx)
	case "velocity_Y":
		return csdemo.VarF32(dy)
	case "velocity_Z":
		return csdemo.VarF32(0)
	case "velocity":
		return csdemo.VarF32(float32(math.Sqrt(float64(dx*dx+dy*dy))) * 64)
	default:
		return nil
	}
}

func (c *Collector) resolveEyeAngle(which string, pawnID int32) csdemo.Variant {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return nil
	}
	v, ok := e.Props[sp.EyeAngles]
	if !ok {
		return nil
	}
	vec, ok := v.(csdemo.VarVec3)
	if !ok {
		return nil
	}
	if which == "pitch" {
		return csdemo.VarF32(vec[0])
	}
	return csdemo.VarF32(vec[1])
}

func (c *Collector) resolveIsAlive(pawnID int32) csdemo.Variant {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return nil
	}
	v, ok := e.Props[sp.LifeState]
	if !ok {
		return nil
	}
	state, ok := csdemo.AsU32(v)
	if !ok {
		return nil
	}
	return csdemo.VarBool(state == 0)
}

func (c *Collector) resolveInventory(pawnID int32) csdemo.Variant {
	sp := c.PropCtl.Special
	e, ok := c.Entities.Get(pawnID)
	if !ok {
		return nil
	}
	v, ok := e.Props[sp.WeaponServices]
	if !ok {
		return nil
	}
	handles, ok := v.(csdemo.VarU32Vec)
	if !ok {
		return nil
	}
	if !c.hasDefIndex {
		return nil
	}
	seen := make(map[int32]bool, len(handles))
	var names []string
	for _, h := range handles {
		entID := int32(h & 0x7FF)
		if seen[entID] {
			continue
		}
		seen[entID] = true
		we, ok := c.Entities.Get(entID)
		if !ok {
			continue
		}
		dv, ok := we.Props[c.defIndexID]
		if !ok {
			continue
		}
		idx, ok := csdemo.AsU32(dv)
		if !ok {
			continue
		}
		if name, ok := c.WeaponIndices[int32(idx)]; ok {
			names = append(names, name)
		}
	}
	if names == nil {
		return nil
	}
	return csdemo.VarStringVec(names)
}

// grenadeTypeFromClassName strips the "Projectile" suffix and applies the
// CBaseCSGrenade -> HeGrenade rename.
func grenadeTypeFromClassName(className string) string {
	if className == "CBaseCSGrenade" {
		return "HeGrenade"
	}
	const suffix = "Projectile"
	if len(className) > len(suffix) && className[len(className)-len(suffix):] == suffix {
		return className[:len(className)-len(suffix)]
	}
	return className
}

func (c *Collector) collectProjectiles(tick int32) {
	sp := c.PropCtl.Special
	for id, e := range c.Entities.All() {
		if e.Kind != csdemo.EntityKindProjectile {
			continue
		}
		cv, cok := e.Props[sp.GrenadeCellX]
		ov, vok := e.Props[sp.GrenadeOffsetX]
		cv2, cok2 := e.Props[sp.GrenadeCellY]
		ov2, vok2 := e.Props[sp.GrenadeOffsetY]
		cv3, cok3 := e.Props[sp.GrenadeCellZ]
		ov3, vok3 := e.Props[sp.GrenadeOffsetZ]
		if !cok || !vok || !cok2 || !vok2 || !cok3 || !vok3 {
			continue
		}
		cellX, _ := csdemo.AsU32(cv)
		offX, _ := csdemo.AsF32(ov)
		cellY, _ := csdemo.AsU32(cv2)
		offY, _ := csdemo.AsF32(ov2)
		cellZ, _ := csdemo.AsU32(cv3)
		offZ, _ := csdemo.AsF32(ov3)

		rec := ProjectileRecord{
			X:           worldCoord(cellX, offX),
			Y:           worldCoord(cellY, offY),
			Z:           worldCoord(cellZ, offZ),
			Tick:        tick,
			GrenadeType: grenadeTypeFromClassName(e.ClassName),
			EntityID:    id,
		}
		if ov, ok := e.Props[sp.OwnerEntity]; ok {
			if h, ok := csdemo.AsU32(ov); ok {
				ownerID := int32(h & 0x7FF)
				if meta, ok := c.Players[ownerID]; ok {
					rec.SteamID = meta.SteamID
					rec.Name = meta.Name
				}
			}
		}
		c.Projectiles = append(c.Projectiles, rec)
	}
}
