package csdemo

import "strings"

// EntityKind classifies an entity by its class name, driving both delta
// routing (PlayerController/Team refresh the PlayerMetaData table) and
// collector dispatch (Weapon/Rules/Projectile lookups).
type EntityKind int

const (
	EntityKindNormal EntityKind = iota
	EntityKindPlayerController
	EntityKindRules
	EntityKindTeam
	EntityKindC4
	EntityKindProjectile
)

// ClassifyEntity maps a resolved class name to its EntityKind per the
// fixed name-pattern rules.
func ClassifyEntity(className string) EntityKind {
	switch {
	case className == "CCSPlayerController":
		return EntityKindPlayerController
	case className == "CCSGameRulesProxy":
		return EntityKindRules
	case className == "CCSTeam":
		return EntityKindTeam
	case className == "CC4":
		return EntityKindC4
	case strings.Contains(className, "Projectile"), className == "CIncendiaryGrenade":
		return EntityKindProjectile
	default:
		return EntityKindNormal
	}
}

// MaxEntityID bounds entity storage against corrupt/adversarial length
// fields: anything above this is rejected outright rather than allocated.
const MaxEntityID = 100000

// maxVectorElemIndex bounds per-element vector writes the same way: no real
// networked vector comes close, so a larger index means a corrupt path.
const maxVectorElemIndex = 4096

// Entity is one tracked networked object: its assigned class, kind and the
// current value of every prop the collector cares about.
type Entity struct {
	EntityID  int32
	Serial    uint32
	ClassID   uint32
	ClassName string
	Kind      EntityKind
	Serializer *Serializer
	Props     map[uint32]Variant
}

// ClassInfo is the decoded {class_id -> class_name} map from DemClassInfo,
// plus the serializer each class resolves to (by matching network-name).
type ClassInfo struct {
	ID         uint32
	Name       string
	Serializer *Serializer
}

// Baseline holds a class's decoded instance-baseline field paths/values,
// applied to a freshly created entity before its first real delta.
type Baseline struct {
	ClassID uint32
	Paths   []FieldPath
	Values  []Variant
}

// EntityTable owns every live entity plus the per-class baselines used to
// seed a new entity before its first real update.
type EntityTable struct {
	entities  map[int32]*Entity
	classes   map[uint32]*ClassInfo
	baselines map[uint32]*Baseline
}

// NewEntityTable returns an empty table.
func NewEntityTable() *EntityTable {
	return &EntityTable{
		entities:  make(map[int32]*Entity),
		classes:   make(map[uint32]*ClassInfo),
		baselines: make(map[uint32]*Baseline),
	}
}

// RegisterClass records a class id's name and (once the send table is
// built) resolved Serializer.
func (t *EntityTable) RegisterClass(id uint32, name string, ser *Serializer) {
	t.classes[id] = &ClassInfo{ID: id, Name: name, Serializer: ser}
}

// SetBaseline records class id's decoded baseline for future entity creates.
func (t *EntityTable) SetBaseline(classID uint32, paths []FieldPath, values []Variant) {
	t.baselines[classID] = &Baseline{ClassID: classID, Paths: paths, Values: values}
}

// Create allocates a new entity. The caller (the second-pass driver in
// csdemo/demo) is responsible for resolving and applying the class's
// baseline, then the real delta, through ResolveFieldPath/DecodeValue —
// EntityTable only owns storage and classification.
func (t *EntityTable) Create(entityID int32, classID uint32, serial uint32) (*Entity, error) {
	if entityID < 0 || entityID > MaxEntityID {
		return nil, newParseError(ErrCodeEntityNotFound, "entity id %d exceeds sanity cap", entityID)
	}
	ci, ok := t.classes[classID]
	if !ok {
		return nil, newParseError(ErrCodeClassNotFound, "unknown class id %d", classID)
	}
	e := &Entity{
		EntityID:   entityID,
		Serial:     serial,
		ClassID:    classID,
		ClassName:  ci.Name,
		Kind:       ClassifyEntity(ci.Name),
		Serializer: ci.Serializer,
		Props:      make(map[uint32]Variant),
	}
	t.entities[entityID] = e
	return e, nil
}

// Baseline returns the class's captured baseline field paths, if any.
func (t *EntityTable) Baseline(classID uint32) (*Baseline, bool) {
	bl, ok := t.baselines[classID]
	return bl, ok
}

// ClassInfos returns the registered class table, for a parallel shard that
// needs to replay Pass 1's class registrations against its own EntityTable.
func (t *EntityTable) ClassInfos() map[uint32]*ClassInfo {
	return t.classes
}

// Baselines returns the registered per-class baselines, for the same
// cross-shard replay as ClassInfos.
func (t *EntityTable) Baselines() map[uint32]*Baseline {
	return t.baselines
}

// Delete removes an entity.
func (t *EntityTable) Delete(entityID int32) {
	delete(t.entities, entityID)
}

// Get returns the live entity for id, if any.
func (t *EntityTable) Get(entityID int32) (*Entity, bool) {
	e, ok := t.entities[entityID]
	return e, ok
}

// All returns every live entity, for callers that need to scan (e.g. the
// property collector iterating players each tick).
func (t *EntityTable) All() map[int32]*Entity {
	return t.entities
}

// PathLeaf describes the terminal a field path resolves to: the decode
// instruction plus where (and whether) the decoded value should be stored.
type PathLeaf struct {
	Decoder     Decoder
	PropID      uint32
	ShouldParse bool
	// VectorElem is set when the terminal is one element of an Array/Vector
	// field; ElemIndex is the element slot the path addressed.
	VectorElem bool
	ElemIndex  int
	// VectorLength is set when the path stops on a Vector field itself: the
	// wire value is the vector's new length, not element data.
	VectorLength bool
}

// ResolvePathLeaf walks ser along path's indices (path.Path[0..path.Last]).
// The first index selects a field of ser; each further index either selects
// an element of an Array/Vector (elements share one inner Field regardless
// of index) or a field of a nested/pointed-to serializer.
func ResolvePathLeaf(ser *Serializer, path FieldPath) (PathLeaf, error) {
	if ser == nil {
		return PathLeaf{}, newParseError(ErrCodeClassNotFound, "entity has no serializer")
	}
	idx := int(path.Path[0])
	if idx < 0 || idx >= len(ser.Fields) {
		return PathLeaf{}, newParseError(ErrCodeIllegalPathOp, "field path index %d out of range at depth 0", idx)
	}
	f := ser.Fields[idx]

	var leaf PathLeaf
	for depth := 1; depth <= path.Last; depth++ {
		idx := int(path.Path[depth])
		leaf.VectorElem = false
		switch v := f.(type) {
		case ArrayField:
			f = v.Elem
			leaf.VectorElem = true
			leaf.ElemIndex = idx
		case VectorField:
			f = v.Elem
			leaf.VectorElem = true
			leaf.ElemIndex = idx
		case SerializerField:
			if v.Serializer == nil || idx < 0 || idx >= len(v.Serializer.Fields) {
				return PathLeaf{}, newParseError(ErrCodeIllegalPathOp, "field path index %d out of range at depth %d", idx, depth)
			}
			f = v.Serializer.Fields[idx]
		case PointerField:
			if v.Serializer == nil || idx < 0 || idx >= len(v.Serializer.Fields) {
				return PathLeaf{}, newParseError(ErrCodeIllegalPathOp, "field path index %d out of range at depth %d", idx, depth)
			}
			f = v.Serializer.Fields[idx]
		default:
			return PathLeaf{}, newParseError(ErrCodeIllegalPathOp, "cannot descend into leaf field at depth %d", depth)
		}
	}

	switch v := f.(type) {
	case ValueField:
		leaf.Decoder = v.Decoder
		leaf.PropID = v.PropID
		leaf.ShouldParse = v.ShouldParse
		return leaf, nil
	case PointerField:
		leaf.Decoder = v.Decoder
		return leaf, nil
	case VectorField:
		// A path stopping on the vector itself carries its new length.
		leaf.Decoder = Decoder{Kind: DecodeUnsigned}
		leaf.VectorLength = true
		if vf, ok := v.Elem.(ValueField); ok {
			leaf.PropID = vf.PropID
			leaf.ShouldParse = vf.ShouldParse
		}
		return leaf, nil
	default:
		return PathLeaf{}, newParseError(ErrCodeIllegalPathOp, "field path does not terminate on a value")
	}
}

// ResolveFieldPath is the scalar-shaped convenience form of ResolvePathLeaf.
func ResolveFieldPath(ser *Serializer, path FieldPath) (Decoder, uint32, bool, error) {
	leaf, err := ResolvePathLeaf(ser, path)
	if err != nil {
		return Decoder{}, 0, false, err
	}
	return leaf.Decoder, leaf.PropID, leaf.ShouldParse, nil
}

// StoreLeaf writes a decoded value into e.Props per the leaf's storage
// shape: vector elements merge into a typed slice at their element slot,
// vector-length updates are not stored (the slice grows as elements
// arrive), scalars overwrite.
func StoreLeaf(e *Entity, leaf PathLeaf, v Variant) {
	if !leaf.ShouldParse {
		return
	}
	if leaf.VectorLength {
		return
	}
	if !leaf.VectorElem {
		e.Props[leaf.PropID] = v
		return
	}
	if leaf.ElemIndex < 0 || leaf.ElemIndex > maxVectorElemIndex {
		return
	}
	switch tv := v.(type) {
	case VarU32:
		vec, _ := e.Props[leaf.PropID].(VarU32Vec)
		for len(vec) <= leaf.ElemIndex {
			vec = append(vec, 0)
		}
		vec[leaf.ElemIndex] = uint32(tv)
		e.Props[leaf.PropID] = vec
	case VarU64:
		vec, _ := e.Props[leaf.PropID].(VarU64Vec)
		for len(vec) <= leaf.ElemIndex {
			vec = append(vec, 0)
		}
		vec[leaf.ElemIndex] = uint64(tv)
		e.Props[leaf.PropID] = vec
	case VarString:
		vec, _ := e.Props[leaf.PropID].(VarStringVec)
		for len(vec) <= leaf.ElemIndex {
			vec = append(vec, "")
		}
		vec[leaf.ElemIndex] = string(tv)
		e.Props[leaf.PropID] = vec
	default:
		e.Props[leaf.PropID] = v
	}
}
