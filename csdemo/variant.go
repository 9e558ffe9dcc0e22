package csdemo

// Variant is a tagged value decoded from entity props, event fields or
// synthesized by the collector. It is a closed sum type: the concrete types
// below are the only implementations, so column storage can stay typed
// instead of exposing a bare interface{}.
type Variant interface {
	variant()
}

// StickerInfo describes one sticker slot on a weapon skin.
type StickerInfo struct {
	Slot    uint32
	ID      uint32
	Wear    float32
	Scale   float32
	Rotation float32
}

// InputHistoryEntry is one entry of a player's input-history ring buffer.
type InputHistoryEntry struct {
	Tick            int32
	RenderTickCount int32
	PlayerTickCount int32
}

type (
	VarBool         bool
	VarI32          int32
	VarU32          uint32
	VarU64          uint64
	VarF32          float32
	VarString       string
	VarVec2         [2]float32
	VarVec3         [3]float32
	VarStringVec    []string
	VarU32Vec       []uint32
	VarU64Vec       []uint64
	VarStickers     []StickerInfo
	VarInputHistory []InputHistoryEntry
)

func (VarBool) variant()         {}
func (VarI32) variant()          {}
func (VarU32) variant()          {}
func (VarU64) variant()          {}
func (VarF32) variant()          {}
func (VarString) variant()       {}
func (VarVec2) variant()         {}
func (VarVec3) variant()         {}
func (VarStringVec) variant()    {}
func (VarU32Vec) variant()       {}
func (VarU64Vec) variant()       {}
func (VarStickers) variant()     {}
func (VarInputHistory) variant() {}

// AsF32 extracts a float32 from any numeric Variant, returning ok=false for
// non-numeric variants. Used by the collector when synthesizing coordinates
// and velocities from props that may be stored as different numeric kinds.
func AsF32(v Variant) (float32, bool) {
	switch t := v.(type) {
	case VarF32:
		return float32(t), true
	case VarI32:
		return float32(t), true
	case VarU32:
		return float32(t), true
	case VarU64:
		return float32(t), true
	default:
		return 0, false
	}
}

// AsU32 extracts a uint32 from any integral Variant.
func AsU32(v Variant) (uint32, bool) {
	switch t := v.(type) {
	case VarU32:
		return uint32(t), true
	case VarI32:
		return uint32(t), true
	case VarU64:
		return uint32(t), true
	default:
		return 0, false
	}
}

// Column is an append-only, per-prop output column. NumNones counts the rows
// that were appended before the first typed value was observed for this
// prop, per the "num_nones" null-tracking rule.
type Column struct {
	PropID   uint32
	Values   []Variant
	NumNones int
}

// Append adds v (which may be nil to represent an explicit null) to the
// column.
func (c *Column) Append(v Variant) {
	if v == nil && len(c.Values) == c.NumNones {
		c.NumNones++
	}
	c.Values = append(c.Values, v)
}
