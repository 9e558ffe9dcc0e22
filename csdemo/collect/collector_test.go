package collect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csdemo/csdemo"
)

func newTestCollector(t *testing.T) (*Collector, *csdemo.EntityTable, *csdemo.PropController) {
	t.Helper()
	et := csdemo.NewEntityTable()
	et.RegisterClass(1, "CCSPlayerPawn", nil)
	et.RegisterClass(2, "Weapon", nil)

	pc := csdemo.NewPropController(nil, nil, nil)
	pc.Special = csdemo.SpecialIDs{
		CellX: 10, OffsetX: 11,
		CellY: 12, OffsetY: 13,
		Buttons:        20,
		WeaponServices: 21,
		SteamID:        22,
	}

	c := NewCollector(et, pc, csdemo.NewStringTables())
	return c, et, pc
}

func TestResolveButtonMask(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	pawn.Props[pc.Special.Buttons] = csdemo.VarU64(1 << 3) // JUMP set, FORWARD unset

	jump := c.resolveButton(csdemo.PropInfo{PropName: "JUMP"}, 1)
	require.Equal(t, csdemo.VarBool(true), jump)

	forward := c.resolveButton(csdemo.PropInfo{PropName: "FORWARD"}, 1)
	require.Equal(t, csdemo.VarBool(false), forward)
}

func TestWorldCoordFormula(t *testing.T) {
	// cell=2, offset=100 -> (2<<9) - 16384 + 100
	require.Equal(t, float32(-15260), worldCoord(2, 100))
}

func TestResolveCoordUsesWorldFormula(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	pawn.Props[pc.Special.CellX] = csdemo.VarU32(2)
	pawn.Props[pc.Special.OffsetX] = csdemo.VarF32(100)

	v := c.resolveCoord("X", 1)
	require.Equal(t, csdemo.VarF32(-15260), v)
}

func TestResolveCoordMissingPropReturnsNil(t *testing.T) {
	c, et, _ := newTestCollector(t)
	_, err := et.Create(1, 1, 0)
	require.NoError(t, err)

	require.Nil(t, c.resolveCoord("X", 1))
}

func TestResolveVelocityFirstSampleIsNilSecondIsDifferenced(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	meta := &PlayerMetaData{HasSteamID: true, SteamID: 76561198000000001}

	pawn.Props[pc.Special.CellX] = csdemo.VarU32(100)
	pawn.Props[pc.Special.OffsetX] = csdemo.VarF32(0)
	pawn.Props[pc.Special.CellY] = csdemo.VarU32(100)
	pawn.Props[pc.Special.OffsetY] = csdemo.VarF32(0)

	first := c.resolveVelocity("velocity", 10, 1, meta)
	require.Nil(t, first, "no previous sample yet")

	// One cell over on X, Y unchanged: world-space dx = 512 units.
	pawn.Props[pc.Special.CellX] = csdemo.VarU32(101)

	second := c.resolveVelocity("velocity", 11, 1, meta)
	require.Equal(t, csdemo.VarF32(512*64), second)
}

func TestResolveVelocityComponentsAndSameTickStability(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	meta := &PlayerMetaData{HasSteamID: true, SteamID: 76561198000000001}

	// world X = 100: cell 32 -> (32<<9)-16384 = 0, offset 100.
	pawn.Props[pc.Special.CellX] = csdemo.VarU32(32)
	pawn.Props[pc.Special.OffsetX] = csdemo.VarF32(100)
	pawn.Props[pc.Special.CellY] = csdemo.VarU32(32)
	pawn.Props[pc.Special.OffsetY] = csdemo.VarF32(0)
	require.Nil(t, c.resolveVelocity("velocity", 10, 1, meta))

	pawn.Props[pc.Special.OffsetX] = csdemo.VarF32(164)

	// velocity_X is the raw per-tick difference; velocity scales by the
	// 64 Hz tickrate.
	require.Equal(t, csdemo.VarF32(64), c.resolveVelocity("velocity_X", 11, 1, meta))
	require.Equal(t, csdemo.VarF32(4096), c.resolveVelocity("velocity", 11, 1, meta))
	require.Equal(t, csdemo.VarF32(0), c.resolveVelocity("velocity_Y", 11, 1, meta))
}

func TestResolveVelocityWithoutSteamIDIsNil(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	pawn.Props[pc.Special.CellX] = csdemo.VarU32(100)
	pawn.Props[pc.Special.OffsetX] = csdemo.VarF32(0)
	pawn.Props[pc.Special.CellY] = csdemo.VarU32(100)
	pawn.Props[pc.Special.OffsetY] = csdemo.VarF32(0)

	require.Nil(t, c.resolveVelocity("velocity", 1, 1, &PlayerMetaData{}))
}

func TestGrenadeTypeFromClassName(t *testing.T) {
	cases := map[string]string{
		"CBaseCSGrenade":         "HeGrenade",
		"SmokeGrenadeProjectile": "SmokeGrenade",
		"FlashbangProjectile":    "Flashbang",
		"DecoyProjectile":        "Decoy",
		"SomeUnrelatedClassName": "SomeUnrelatedClassName",
	}
	for in, want := range cases {
		require.Equal(t, want, grenadeTypeFromClassName(in))
	}
}

func TestResolveInventoryTwoFlashbangsProduceTwoEntries(t *testing.T) {
	c, et, pc := newTestCollector(t)
	c.defIndexID = 99
	c.hasDefIndex = true

	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)

	flash1, err := et.Create(50, 2, 0)
	require.NoError(t, err)
	flash1.Props[c.defIndexID] = csdemo.VarU32(43)

	flash2, err := et.Create(51, 2, 0)
	require.NoError(t, err)
	flash2.Props[c.defIndexID] = csdemo.VarU32(43)

	pawn.Props[pc.Special.WeaponServices] = csdemo.VarU32Vec{50, 51}

	inv := c.resolveInventory(1)
	require.Equal(t, csdemo.VarStringVec{"flashbang", "flashbang"}, inv)
}

func TestResolveInventoryWithoutDefIndexIsNil(t *testing.T) {
	c, et, pc := newTestCollector(t)
	pawn, err := et.Create(1, 1, 0)
	require.NoError(t, err)
	pawn.Props[pc.Special.WeaponServices] = csdemo.VarU32Vec{50}

	require.Nil(t, c.resolveInventory(1))
}

func TestRefreshControllerKeysPlayersByPawnID(t *testing.T) {
	c, et, pc := newTestCollector(t)
	ctrl, err := et.Create(5, 1, 0)
	require.NoError(t, err)
	ctrl.Kind = csdemo.EntityKindPlayerController
	ctrl.Props[pc.Special.SteamID] = csdemo.VarU64(76561198000000002)
	ctrl.Props[pc.Special.PlayerPawn] = csdemo.VarU32(7)

	c.RefreshPlayerMetaData(ctrl)

	meta, ok := c.Players[7]
	require.True(t, ok)
	require.True(t, meta.HasSteamID)
	require.EqualValues(t, 76561198000000002, meta.SteamID)
	require.Equal(t, int32(7), meta.PlayerEntityID)
}
