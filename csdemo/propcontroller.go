package csdemo

import "strings"

// Prop ID pools and the fixed synthesized-prop constants. The values match
// what other tools in this ecosystem emit, so downstream consumers
// (dashboards, notebooks) see familiar stable IDs across parsers.
const (
	NormalPropBaseID uint32 = 1000
	ButtonsBaseID     uint32 = 100000

	WeaponSkinID          uint32 = 420420420
	WeaponOriginalOwnerID uint32 = 6942000
	MyWeaponsOffset       uint32 = 500000
	GrenadeAmmoID         uint32 = 1111111
	InventoryID           uint32 = 100000000
	IsAliveID             uint32 = 100000001
	GameTimeID            uint32 = 100000002
	EntityIDID            uint32 = 100000003
	VelocityXID           uint32 = 100000004
	VelocityYID           uint32 = 100000005
	VelocityZID           uint32 = 100000006
	VelocityID            uint32 = 100000007
	UserIDID              uint32 = 100000008
	AgentSkinID           uint32 = 100000009
	WeaponNameID          uint32 = 100000010
	YawID                 uint32 = 100000111
	PitchID               uint32 = 100000012
	TickID                uint32 = 100000013
	SteamIDID             uint32 = 100000014
	NameID                uint32 = 100000015
	PlayerXID             uint32 = 100000016
	PlayerYID             uint32 = 100000017
	PlayerZID             uint32 = 100000018
)

// serializerNameSubstrings decides which serializer trees get prop IDs
// assigned at all; everything else is irrelevant to the property collector.
var serializerNameSubstrings = []string{
	"Player", "Controller", "Team", "Weapon", "AK", "cell", "vec",
	"Projectile", "Knife", "CDEagle", "Rules", "C4", "Grenade", "Flash",
	"Molo", "Inc", "Infer",
}

func serializerNeedsPropWalk(name string) bool {
	for _, s := range serializerNameSubstrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// PropInfo describes one prop ID the collector may emit a column for.
type PropInfo struct {
	ID            uint32
	PropType      PropType
	PropName      string
	FriendlyName  string
	IsPlayerProp  bool
}

// PropType classifies how the property collector fills in an output column
// for a given PropInfo, per the collector's PropType dispatch.
type PropType int

const (
	PropTypeCustom PropType = iota
	PropTypeTick
	PropTypeName
	PropTypeSteamid
	PropTypePlayer
	PropTypeTeam
	PropTypeController
	PropTypeRules
	PropTypeWeapon
	PropTypeButton
	PropTypeGameTime
)

// SpecialIDs holds the PropIDs the property collector needs for mechanisms
// beyond plain user-requested props: team number, player-pawn handle,
// coordinate cell/offset pairs, and similar plumbing. A zero value means
// unset (the underlying send table didn't carry that field on this build).
type SpecialIDs struct {
	TeamNum              uint32 // CCSPlayerController.m_iTeamNum
	TeamTeamNum          uint32 // CCSTeam.m_iTeamNum — a different prop entirely, keyed off the team entity itself
	PlayerTeamPointer    uint32 // CCSPlayerPawn.m_iTeamNum
	WeaponOwnerPointer   uint32 // CBasePlayerWeapon.m_nOwnerId
	PlayerName           uint32
	SteamID              uint32
	PlayerPawn           uint32
	TeamPointer          uint32
	WeaponServices       uint32 // pawn's weapon-services handle-list prop, for inventory enumeration
	CellX, CellY, CellZ  uint32
	OffsetX, OffsetY, OffsetZ uint32
	GrenadeCellX, GrenadeCellY, GrenadeCellZ    uint32
	GrenadeOffsetX, GrenadeOffsetY, GrenadeOffsetZ uint32
	GrenadeOwnerID       uint32 // grenade/weapon m_nOwnerId, for projectile owner lookup
	ActiveWeapon         uint32
	EyeAngles            uint32
	Buttons              uint32
	LifeState            uint32
	ItemDefIndex         uint32
	OriginalOwnerLow     uint32
	OriginalOwnerHigh    uint32
	OwnerEntity          uint32
	AgentSkinIdx         uint32
	RoundStart           uint32
	RoundWin             uint32
	RoundFreeze          uint32
	TotalRoundsPlayed    uint32
}

// PropController assigns stable numeric IDs to send-table leaves and
// records which ones a caller actually wants collected.
type PropController struct {
	nextNormalID uint32
	nextButtonID uint32
	nameToID     map[string]uint32
	infos        []PropInfo
	Special      SpecialIDs

	wantedPlayerProps map[string]bool
	wantedOtherProps  map[string]bool
	buttonNames       []string
	wantedIDs         map[uint32]bool
}

// NewPropController builds a controller that will mark should_parse for
// exactly the requested player/other prop names (plus whatever a
// synthesized prop like velocity structurally requires).
func NewPropController(wantedPlayerProps, wantedOtherProps []string, buttonNames []string) *PropController {
	pc := &PropController{
		nextNormalID:      NormalPropBaseID,
		nextButtonID:      ButtonsBaseID,
		nameToID:          make(map[string]uint32),
		wantedPlayerProps: toSet(wantedPlayerProps),
		wantedOtherProps:  toSet(wantedOtherProps),
		buttonNames:       buttonNames,
		wantedIDs:         make(map[uint32]bool),
	}
	for _, b := range buttonNames {
		pc.idFor(b, true, PropTypeButton, true)
		pc.wantedIDs[pc.nameToID[b]] = true
	}
	return pc
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

// idFor returns the stable ID for qualifiedName, assigning the next free
// slot in the normal pool (or the button pool, when isButton) the first
// time it's seen and recording a PropInfo entry.
func (pc *PropController) idFor(qualifiedName string, isButton bool, pt PropType, isPlayerProp bool) uint32 {
	if id, ok := pc.nameToID[qualifiedName]; ok {
		return id
	}
	var id uint32
	if isButton {
		id = pc.nextButtonID
		pc.nextButtonID++
	} else {
		id = pc.nextNormalID
		pc.nextNormalID++
	}
	pc.nameToID[qualifiedName] = id
	pc.infos = append(pc.infos, PropInfo{ID: id, PropName: qualifiedName, PropType: pt, IsPlayerProp: isPlayerProp})
	return id
}

// propTypeForClass decides which collector dispatch a wire prop under
// className resolves through: weapon/grenade classes read off the active
// weapon entity, controller/rules/team classes off their own entity, and
// everything else off the player pawn.
func propTypeForClass(className string, isGrenadeOrWeapon bool) PropType {
	switch {
	case isGrenadeOrWeapon:
		return PropTypeWeapon
	case strings.HasPrefix(className, "CCSPlayerController"):
		return PropTypeController
	case strings.Contains(className, "Rules"):
		return PropTypeRules
	case className == "CCSTeam":
		return PropTypeTeam
	default:
		return PropTypePlayer
	}
}

func (pc *PropController) wants(qualifiedName string, isPlayerContext bool) bool {
	if isPlayerContext {
		return pc.wantedPlayerProps[qualifiedName]
	}
	return pc.wantedOtherProps[qualifiedName]
}

// alwaysParsedNames are leaves the collector depends on structurally (team
// membership, coordinates, active weapon, ...) regardless of whether the
// caller ever asked for them by name.
var alwaysParsedNames = map[string]bool{
	"m_nOwnerId":                                   true,
	"m_iItemDefinitionIndex":                       true,
	"CCSPlayerPawn.CCSPlayer_MovementServices.m_nButtonDownMaskPrev": true,
	"CCSPlayerPawn.CCSPlayer_WeaponServices.m_hActiveWeapon":         true,
	"CCSPlayerPawn.CCSPlayer_WeaponServices.m_hMyWeapons":            true,
	"CCSPlayerPawn.m_iTeamNum":                                      true,
	"CCSPlayerPawn.m_lifeState":                                     true,
	"CCSPlayerPawn.m_angEyeAngles":                                  true,
	"CCSPlayerController.m_iTeamNum":                                true,
	"CCSPlayerController.m_iszPlayerName":                           true,
	"CCSPlayerController.m_steamID":                                 true,
	"CCSPlayerController.m_hPlayerPawn":                             true,
	"CCSTeam.m_iTeamNum":                                            true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellX":              true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellY":              true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellZ":              true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecX":               true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecY":               true,
	"CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecZ":               true,
	"CBodyComponentBaseAnimGraph.m_cellX":                           true,
	"CBodyComponentBaseAnimGraph.m_cellY":                           true,
	"CBodyComponentBaseAnimGraph.m_cellZ":                           true,
	"CBodyComponentBaseAnimGraph.m_vecX":                            true,
	"CBodyComponentBaseAnimGraph.m_vecY":                            true,
	"CBodyComponentBaseAnimGraph.m_vecZ":                            true,
	"m_hOwnerEntity":                                                true,
	"m_OriginalOwnerXuidLow":                                        true,
	"m_OriginalOwnerXuidHigh":                                       true,
	"CCSPlayerController.m_nPawnCharacterDefIndex":                  true,
	"CCSGameRulesProxy.CCSGameRules.m_bFreezePeriod":                true,
	"CCSGameRulesProxy.CCSGameRules.m_fRoundStartTime":              true,
	"CCSGameRulesProxy.CCSGameRules.m_eRoundWinReason":              true,
	"CCSGameRulesProxy.CCSGameRules.m_totalRoundsPlayed":            true,
}

// setSpecialID records a handful of qualified leaf names' PropIDs into
// Special so the collector can find them without knowing PropIDs ahead of
// time. Grenade and weapon classes look up by their stripped
// (leading-class-less) name; everything else by its full ancestry-qualified
// name.
func (pc *PropController) setSpecialID(qn string, isGrenadeOrWeapon bool, id uint32) {
	if isGrenadeOrWeapon {
		switch qn {
		case "m_hOwnerEntity":
			pc.Special.OwnerEntity = id
		case "m_nOwnerId":
			pc.Special.GrenadeOwnerID = id
		case "CBodyComponentBaseAnimGraph.m_cellX":
			pc.Special.GrenadeCellX = id
		case "CBodyComponentBaseAnimGraph.m_cellY":
			pc.Special.GrenadeCellY = id
		case "CBodyComponentBaseAnimGraph.m_cellZ":
			pc.Special.GrenadeCellZ = id
		case "CBodyComponentBaseAnimGraph.m_vecX":
			pc.Special.GrenadeOffsetX = id
		case "CBodyComponentBaseAnimGraph.m_vecY":
			pc.Special.GrenadeOffsetY = id
		case "CBodyComponentBaseAnimGraph.m_vecZ":
			pc.Special.GrenadeOffsetZ = id
		case "m_iItemDefinitionIndex":
			pc.Special.ItemDefIndex = id
		case "m_OriginalOwnerXuidLow":
			pc.Special.OriginalOwnerLow = id
		case "m_OriginalOwnerXuidHigh":
			pc.Special.OriginalOwnerHigh = id
		}
		return
	}
	switch qn {
	case "CCSTeam.m_iTeamNum":
		pc.Special.TeamTeamNum = id
	case "CCSPlayerPawn.m_iTeamNum":
		pc.Special.PlayerTeamPointer = id
	case "CBasePlayerWeapon.m_nOwnerId":
		pc.Special.WeaponOwnerPointer = id
	case "CCSPlayerController.m_iTeamNum":
		pc.Special.TeamNum = id
	case "CCSPlayerController.m_iszPlayerName":
		pc.Special.PlayerName = id
	case "CCSPlayerController.m_steamID":
		pc.Special.SteamID = id
	case "CCSPlayerController.m_hPlayerPawn":
		pc.Special.PlayerPawn = id
	case "CCSPlayerController.m_nPawnCharacterDefIndex":
		pc.Special.AgentSkinIdx = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellX":
		pc.Special.CellX = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellY":
		pc.Special.CellY = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_cellZ":
		pc.Special.CellZ = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecX":
		pc.Special.OffsetX = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecY":
		pc.Special.OffsetY = id
	case "CCSPlayerPawn.CBodyComponentBaseAnimGraph.m_vecZ":
		pc.Special.OffsetZ = id
	case "CCSPlayerPawn.CCSPlayer_MovementServices.m_nButtonDownMaskPrev":
		pc.Special.Buttons = id
	case "CCSPlayerPawn.CCSPlayer_WeaponServices.m_hActiveWeapon":
		pc.Special.ActiveWeapon = id
	case "CCSPlayerPawn.CCSPlayer_WeaponServices.m_hMyWeapons":
		pc.Special.WeaponServices = id
	case "CCSPlayerPawn.m_angEyeAngles":
		pc.Special.EyeAngles = id
	case "CCSPlayerPawn.m_lifeState":
		pc.Special.LifeState = id
	case "CCSGameRulesProxy.CCSGameRules.m_bFreezePeriod":
		pc.Special.RoundFreeze = id
	case "CCSGameRulesProxy.CCSGameRules.m_fRoundStartTime":
		pc.Special.RoundStart = id
	case "CCSGameRulesProxy.CCSGameRules.m_eRoundWinReason":
		pc.Special.RoundWin = id
	case "CCSGameRulesProxy.CCSGameRules.m_totalRoundsPlayed":
		pc.Special.TotalRoundsPlayed = id
	}
}

// assignLeaf resolves qn's PropID, applies the two direct-override cases
// (m_hMyWeapons and the econ-item raw-value skin field don't get an
// arbitrarily-assigned ID, they get a fixed well-known one), records the
// special-id mapping, and decides ShouldParse.
func (pc *PropController) assignLeaf(ancestry []string, leaf string, isPlayerProp, isGrenadeOrWeapon bool) (qn string, id uint32, shouldParse bool) {
	qn = qualifiedName(ancestry, leaf)
	id = pc.idFor(qn, false, propTypeForClass(ancestry[0], isGrenadeOrWeapon), isPlayerProp)
	if qn == "CCSPlayerPawn.CCSPlayer_WeaponServices.m_hMyWeapons" {
		id = MyWeaponsOffset
	}
	if strings.Contains(qn, "CEconItemAttribute.m_iRawValue32") {
		id = WeaponSkinID
	}
	pc.setSpecialID(qn, isGrenadeOrWeapon, id)
	// Callers usually request a bare leaf name (m_iHealth), which must match
	// regardless of the class ancestry the leaf was discovered under.
	shouldParse = pc.wants(qn, isPlayerProp) || pc.wants(leaf, isPlayerProp) ||
		alwaysParsedNames[qn] || alwaysParsedNames[leaf]
	if shouldParse {
		pc.wantedIDs[id] = true
	}
	return qn, id, shouldParse
}

// maxQualifiedNameDepth mirrors FieldPath's own 7-level cap: nothing in a
// legal send-table tree needs to recurse deeper than that to reach a leaf.
const maxQualifiedNameDepth = 7

// FindPropNamePaths walks ser (and everything it embeds or points to),
// assigning PropIDs to every Value leaf reachable within the serializer's
// own tree and rewriting each leaf's ValueField with its resolved PropID,
// FullName and ShouldParse flag.
func (pc *PropController) FindPropNamePaths(ser *Serializer) error {
	if !serializerNeedsPropWalk(ser.Name) {
		return nil
	}
	isPlayerProp := strings.Contains(ser.Name, "Player") || strings.Contains(ser.Name, "Weapon")
	ancestry := []string{ser.Name}
	isGrenadeOrWeapon := stripsLeadingClass(ser.Name)
	return pc.walk(ser, ancestry, isPlayerProp, isGrenadeOrWeapon, 0)
}

func (pc *PropController) walk(ser *Serializer, ancestry []string, isPlayerProp, isGrenadeOrWeapon bool, depth int) error {
	if depth > maxQualifiedNameDepth {
		return nil
	}
	for i, f := range ser.Fields {
		switch v := f.(type) {
		case ValueField:
			qn, id, shouldParse := pc.assignLeaf(ancestry, v.Name, isPlayerProp, isGrenadeOrWeapon)
			v.FullName = qn
			v.PropID = id
			v.ShouldParse = shouldParse
			ser.Fields[i] = v
		case ArrayField:
			if vf, ok := v.Elem.(ValueField); ok {
				qn, id, shouldParse := pc.assignLeaf(ancestry, vf.Name, isPlayerProp, isGrenadeOrWeapon)
				vf.FullName = qn
				vf.PropID = id
				vf.ShouldParse = shouldParse
				v.Elem = vf
				ser.Fields[i] = v
			}
		case VectorField:
			if vf, ok := v.Elem.(ValueField); ok {
				qn, id, shouldParse := pc.assignLeaf(ancestry, vf.Name, isPlayerProp, isGrenadeOrWeapon)
				vf.FullName = qn
				vf.PropID = id
				vf.ShouldParse = shouldParse
				v.Elem = vf
				ser.Fields[i] = v
			} else if sf, ok := v.Elem.(SerializerField); ok {
				if err := pc.walk(sf.Serializer, append(append([]string{}, ancestry...), sf.Serializer.Name), isPlayerProp, isGrenadeOrWeapon, depth+1); err != nil {
					return err
				}
			}
		case SerializerField:
			if err := pc.walk(v.Serializer, append(append([]string{}, ancestry...), v.Serializer.Name), isPlayerProp, isGrenadeOrWeapon, depth+1); err != nil {
				return err
			}
		case PointerField:
			if err := pc.walk(v.Serializer, append(append([]string{}, ancestry...), v.Serializer.Name), isPlayerProp, isGrenadeOrWeapon, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// PropInfos returns every registered PropInfo (including synthesized
// constants added by SetCustomPropInfos).
func (pc *PropController) PropInfos() []PropInfo {
	return pc.infos
}

// SetCustomPropInfos registers the fixed synthesized-prop constants as
// PropInfo entries so callers see a uniform ID/name/type surface across
// wire-derived and synthesized props.
func (pc *PropController) SetCustomPropInfos() {
	synth := []struct {
		id   uint32
		name string
		pt   PropType
	}{
		{TickID, "tick", PropTypeTick},
		{NameID, "name", PropTypeName},
		{SteamIDID, "steamid", PropTypeSteamid},
		{UserIDID, "user_id", PropTypeCustom},
		{EntityIDID, "entity_id", PropTypeCustom},
		{IsAliveID, "is_alive", PropTypeCustom},
		{GameTimeID, "game_time", PropTypeGameTime},
		{PlayerXID, "X", PropTypeCustom},
		{PlayerYID, "Y", PropTypeCustom},
		{PlayerZID, "Z", PropTypeCustom},
		{VelocityXID, "velocity_X", PropTypeCustom},
		{VelocityYID, "velocity_Y", PropTypeCustom},
		{VelocityZID, "velocity_Z", PropTypeCustom},
		{VelocityID, "velocity", PropTypeCustom},
		{WeaponNameID, "weapon_name", PropTypeWeapon},
		{WeaponSkinID, "weapon_skin", PropTypeWeapon},
		{WeaponOriginalOwnerID, "weapon_original_owner", PropTypeWeapon},
		{YawID, "yaw", PropTypeCustom},
		{PitchID, "pitch", PropTypeCustom},
		{InventoryID, "inventory", PropTypeCustom},
		{AgentSkinID, "agent_skin", PropTypeCustom},
		{GrenadeAmmoID, "grenade_ammo", PropTypeCustom},
	}
	for _, s := range synth {
		pc.infos = append(pc.infos, PropInfo{ID: s.id, PropName: s.name, FriendlyName: s.name, PropType: s.pt})
		if pc.wantedPlayerProps[s.name] || pc.wantedOtherProps[s.name] {
			pc.wantedIDs[s.id] = true
		}
	}
	// tick/name/steamid are structural and always collected, whatever props
	// were requested.
	for _, id := range []uint32{TickID, NameID, SteamIDID} {
		pc.wantedIDs[id] = true
	}
}

// IsWanted reports whether id was ever marked should_parse during the prop
// walk, or is a synthesized prop whose name matched a requested name.
func (pc *PropController) IsWanted(id uint32) bool {
	return pc.wantedIDs[id]
}

// WantedPropInfos returns only the PropInfo entries the caller actually
// requested — the collector never builds a column nobody asked for.
func (pc *PropController) WantedPropInfos() []PropInfo {
	out := make([]PropInfo, 0, len(pc.infos))
	for _, pi := range pc.infos {
		if pc.wantedIDs[pi.ID] {
			out = append(out, pi)
		}
	}
	return out
}

// FindIDBySuffix returns the first registered PropID whose qualified name
// ends in suffix (e.g. "m_iItemDefinitionIndex"), regardless of which
// weapon/grenade class's ancestry it was discovered under — callers that
// need one canonical ID for a leaf name repeated across many classes use
// this rather than juggling every per-class qualified name.
func (pc *PropController) FindIDBySuffix(suffix string) (uint32, bool) {
	for _, pi := range pc.infos {
		if id, ok := pc.nameToID[pi.PropName]; ok && id == pi.ID && strings.HasSuffix(pi.PropName, suffix) {
			return id, true
		}
	}
	return 0, false
}
