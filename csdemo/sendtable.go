package csdemo

import "strings"

// FieldCategory classifies how a Field's value is reached during field-path
// traversal.
type FieldCategory int

const (
	CategoryValue FieldCategory = iota
	CategoryArray
	CategoryVector
	CategoryPointer
)

// Field is the polymorphic send-table field variant: Value, Array, Vector,
// Pointer or (embedded) Serializer. Only Value and Pointer fields carry a
// decoder; Array/Vector/Serializer fields exist purely to route traversal to
// an inner field or serializer.
type Field interface {
	fieldTag()
}

// ValueField is a leaf field decoded directly off the wire.
type ValueField struct {
	Decoder     Decoder
	Name        string
	FullName    string
	PropID      uint32
	ShouldParse bool
}

// ArrayField is a fixed-length repetition of Elem.
type ArrayField struct {
	Elem   Field
	Length int
}

// VectorField is a variable-length repetition of Elem (CUtlVector and
// friends); its own length prefix decodes with an unsigned varint.
type VectorField struct {
	Elem Field
}

// SerializerField embeds another serializer's fields inline (non-pointer
// nested struct).
type SerializerField struct {
	Serializer *Serializer
}

// PointerField references another serializer through a presence-gated
// indirection; Decoder decides how the presence/selector bit is read
// (GameModeRules uses a dedicated decoder, everything else a boolean).
type PointerField struct {
	Serializer *Serializer
	Decoder    Decoder
}

func (ValueField) fieldTag()      {}
func (ArrayField) fieldTag()      {}
func (VectorField) fieldTag()     {}
func (SerializerField) fieldTag() {}
func (PointerField) fieldTag()    {}

// Serializer is a named schema of fields for one class, addressed by symbol
// name; several class IDs may share one serializer.
type Serializer struct {
	Name   string
	Fields []Field
}

// RawSerializerField is one entry of a CSVCMsg_FlattenedSerializer's `fields`
// list, already resolved from symbol indices to strings.
type RawSerializerField struct {
	VarName        string
	VarType        string
	SerializerName string
	HasSerializer  bool
	Encoder        string
	EncodeFlags    int32
	BitCount       int32
	LowValue       float32
	HighValue      float32
}

// RawSerializer is one entry of a CSVCMsg_FlattenedSerializer's
// `serializers` list: a name plus indices into the shared fields slice.
type RawSerializer struct {
	Name       string
	FieldIndex []int32
}

// constructedField carries the per-field bookkeeping needed to assign a
// category and decoder before the Field variant itself is built.
type constructedField struct {
	raw      RawSerializerField
	fieldTy  *FieldType
	category FieldCategory
	decoder  Decoder
	built    Field // memoized across serializers sharing the same field index
}

// BuildSerializers constructs every named serializer from a flattened
// send-table's raw fields and serializer defs. Pointer/embedded-serializer
// references are wired by a two-phase build: every serializer name gets an
// empty *Serializer up front (phase one), so a field built while its target
// serializer is still being populated still gets a valid, eventually-filled
// pointer; fields are assigned into each Serializer.Fields slice in phase two.
func BuildSerializers(fields []RawSerializerField, serializerDefs []RawSerializer, qf *QFTable) (map[string]*Serializer, error) {
	typeCache := make(map[string]*FieldType)
	cf := make([]constructedField, len(fields))

	for i, f := range fields {
		ft, err := parseFieldType(f.VarType, typeCache)
		if err != nil {
			return nil, err
		}
		cf[i] = constructedField{raw: f, fieldTy: ft}
		cf[i].category = classifyField(f, ft)
		cf[i].decoder = assignDecoder(f, ft, qf)
	}

	serializers := make(map[string]*Serializer, len(serializerDefs))
	for _, def := range serializerDefs {
		serializers[def.Name] = &Serializer{Name: def.Name}
	}

	for _, def := range serializerDefs {
		ser := serializers[def.Name]
		ser.Fields = make([]Field, len(def.FieldIndex))
		for i, fi := range def.FieldIndex {
			if fi < 0 || int(fi) >= len(cf) {
				return nil, newParseError(ErrCodeMalformedMessage, "serializer %q references out-of-range field %d", def.Name, fi)
			}
			built, err := buildField(&cf[fi], serializers)
			if err != nil {
				return nil, err
			}
			ser.Fields[i] = built
		}
	}

	return serializers, nil
}

func buildField(cf *constructedField, serializers map[string]*Serializer) (Field, error) {
	if cf.built != nil {
		return cf.built, nil
	}

	var elem Field
	if cf.raw.HasSerializer {
		target, ok := serializers[cf.raw.SerializerName]
		if !ok {
			return nil, newParseError(ErrCodeMalformedMessage, "unknown serializer reference %q", cf.raw.SerializerName)
		}
		if cf.category == CategoryPointer {
			dec := Decoder{Kind: DecodeBoolean}
			if target.Name == "CCSGameModeRules" {
				dec = Decoder{Kind: DecodeGameModeRules}
			}
			elem = PointerField{Serializer: target, Decoder: dec}
		} else {
			elem = SerializerField{Serializer: target}
		}
	} else {
		elem = ValueField{
			Decoder:  cf.decoder,
			Name:     cf.raw.VarName,
			FullName: cf.raw.VarName,
			PropID:   0,
		}
	}

	switch cf.category {
	case CategoryArray:
		elem = ArrayField{Elem: elem, Length: cf.fieldTy.Count}
	case CategoryVector:
		elem = VectorField{Elem: elem}
	}

	cf.built = elem
	return elem, nil
}

func classifyField(f RawSerializerField, ft *FieldType) FieldCategory {
	if ft.Pointer {
		return CategoryPointer
	}
	switch ft.BaseType {
	case "CBodyComponent", "CLightComponent", "CPhysicsComponent", "CRenderComponent", "CPlayerLocalData":
		return CategoryPointer
	}
	if f.HasSerializer {
		return CategoryVector
	}
	switch ft.BaseType {
	case "CUtlVector", "CNetworkUtlVectorBase":
		return CategoryVector
	}
	if ft.HasCount && ft.BaseType != "char" {
		return CategoryArray
	}
	return CategoryValue
}

var baseTypeDecoders = map[string]DecoderKind{
	"bool":                 DecodeBoolean,
	"char":                 DecodeString,
	"int16":                DecodeSigned,
	"int32":                DecodeSigned,
	"int64":                DecodeSigned,
	"int8":                 DecodeSigned,
	"uint16":               DecodeUnsigned,
	"uint32":               DecodeUnsigned,
	"uint8":                DecodeUnsigned,
	"color32":              DecodeUnsigned,
	"GameTime_t":           DecodeNoscale,
	"CGameSceneNodeHandle": DecodeUnsigned,
	"Color":                DecodeUnsigned,
	"CUtlString":           DecodeString,
	"CUtlStringToken":      DecodeUnsigned,
	"CUtlSymbolLarge":      DecodeString,
	"Quaternion":           DecodeNoscale,
	"CTransform":           DecodeNoscale,
	"HSequence":            DecodeUnsigned64,
	"AttachmentHandle_t":   DecodeUnsigned64,
	"CEntityIndex":         DecodeUnsigned64,
	"MoveCollide_t":        DecodeUnsigned64,
	"MoveType_t":           DecodeUnsigned64,
	"RenderMode_t":         DecodeUnsigned64,
	"RenderFx_t":           DecodeUnsigned64,
	"SolidType_t":          DecodeUnsigned64,
	"NPC_STATE":            DecodeUnsigned64,
	"CSPlayerState":        DecodeUnsigned64,
	"CHandle":              DecodeUnsigned,
}

// assignDecoder picks the concrete Decoder for a Value field per the
// base-type table plus the float/vector/uint/qangle special cases and the
// handful of hard-coded field-name overrides.
func assignDecoder(f RawSerializerField, ft *FieldType, qf *QFTable) Decoder {
	if f.VarName == "m_iClip1" {
		return Decoder{Kind: DecodeAmmo}
	}

	var dec Decoder
	if kind, ok := baseTypeDecoders[ft.BaseType]; ok {
		dec = Decoder{Kind: kind}
	} else {
		switch ft.BaseType {
		case "float32", "CNetworkedQuantizedFloat":
			dec = findFloatDecoder(f, qf)
		case "Vector":
			dec = findVectorDecoder(f, 3, qf)
		case "Vector2D":
			dec = findVectorDecoder(f, 2, qf)
		case "Vector4D":
			dec = findVectorDecoder(f, 4, qf)
		case "uint64", "CStrongHandle", "CEntityHandle":
			dec = findUintDecoder(f)
		case "QAngle":
			dec = findQangleDecoder(f)
		default:
			dec = Decoder{Kind: DecodeUnsigned}
		}
	}

	switch f.VarName {
	case "m_PredFloatVariables", "m_OwnerOnlyPredNetFloatVariables":
		dec = Decoder{Kind: DecodeNoscale}
	case "m_OwnerOnlyPredNetVectorVariables", "m_PredVectorVariables":
		dec = Decoder{Kind: DecodeVectorNoscale}
	case "m_pGameModeRules":
		dec = Decoder{Kind: DecodeGameModeRules}
	}
	if f.Encoder == "qangle_precise" {
		dec = Decoder{Kind: DecodeQanglePres}
	}

	return dec
}

func findFloatDecoder(f RawSerializerField, qf *QFTable) Decoder {
	if f.VarName == "m_flSimulationTime" || f.VarName == "m_flAnimTime" {
		return Decoder{Kind: DecodeFloatSimulationTime}
	}
	if f.Encoder == "coord" {
		return Decoder{Kind: DecodeFloatCoord}
	}
	if f.BitCount <= 0 || f.BitCount >= 32 {
		return Decoder{Kind: DecodeNoscale}
	}
	low, high := f.LowValue, f.HighValue
	cfg := NewQuantizedFloat(uint32(f.BitCount), QFFlag(f.EncodeFlags), &low, &high)
	idx := qf.Add(cfg)
	return Decoder{Kind: DecodeQuantizedFloat, QFIndex: idx}
}

func findUintDecoder(f RawSerializerField) Decoder {
	if f.Encoder == "fixed64" {
		return Decoder{Kind: DecodeFixed64}
	}
	return Decoder{Kind: DecodeUnsigned64}
}

func findQangleDecoder(f RawSerializerField) Decoder {
	if f.VarName == "m_angEyeAngles" {
		return Decoder{Kind: DecodeQanglePitchYaw}
	}
	if f.BitCount != 0 {
		return Decoder{Kind: DecodeQangle3}
	}
	return Decoder{Kind: DecodeQangleVar}
}

func findVectorDecoder(f RawSerializerField, n int, qf *QFTable) Decoder {
	if n == 3 && f.Encoder == "normal" {
		return Decoder{Kind: DecodeVectorNormal}
	}
	switch findFloatDecoder(f, qf).Kind {
	case DecodeNoscale:
		return Decoder{Kind: DecodeVectorNoscale}
	case DecodeFloatCoord:
		return Decoder{Kind: DecodeVectorFloatCoord}
	default:
		return Decoder{Kind: DecodeVectorNormal}
	}
}

// qualifiedName joins a serializer's leaf name with its ancestry, stripping
// the leading class segment for weapon/grenade/projectile-family classes per
// PropController's naming rule.
func qualifiedName(ancestry []string, leaf string) string {
	if len(ancestry) == 0 {
		return leaf
	}
	if stripsLeadingClass(ancestry[0]) {
		if len(ancestry) == 1 {
			return leaf
		}
		return strings.Join(append(append([]string{}, ancestry[1:]...), leaf), ".")
	}
	return strings.Join(append(append([]string{}, ancestry...), leaf), ".")
}

var stripSubstrings = []string{
	"Weapon", "Projectile", "Grenade", "Knife", "Molotov", "Incendiary",
	"Flashbang", "Decoy", "Inferno", "CDEagle", "CAK47",
}

func stripsLeadingClass(name string) bool {
	if name == "CC4" || name == "C4" {
		return true
	}
	for _, p := range stripSubstrings {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
