package csdemo

import (
	"regexp"
	"strconv"
)

// fieldTypeRE splits a send-table type symbol into base type, optional
// generic parameter, optional pointer marker and optional array count, e.g.
// "CHandle< CBaseEntity >" or "CUtlVectorEmbeddedNetworkVar< bool >[32]".
var fieldTypeRE = regexp.MustCompile(`([^<\[\*]+)(<\s(.*)\s>)?(\*)?(\[(.*)\])?`)

// pointerTypes is the fixed list of base types that are pointers even
// without a trailing '*' in their type symbol.
var pointerTypes = map[string]bool{
	"CBodyComponent":    true,
	"CLightComponent":   true,
	"CPhysicsComponent": true,
	"CRenderComponent":  true,
	"CPlayerLocalData":  true,
}

// FieldType is the parsed shape of a send-table field's type symbol.
type FieldType struct {
	BaseType    string
	GenericType *FieldType
	Pointer     bool
	Count       int
	HasCount    bool
	ElementType *FieldType
}

// parseFieldType derives a FieldType from a raw type symbol by regex,
// caching results in typeCache (symbols repeat heavily across a send table).
func parseFieldType(name string, typeCache map[string]*FieldType) (*FieldType, error) {
	if cached, ok := typeCache[name]; ok {
		return cached, nil
	}

	m := fieldTypeRE.FindStringSubmatch(name)
	if m == nil {
		return nil, newParseError(ErrCodeMalformedMessage, "could not parse field type %q", name)
	}

	ft := &FieldType{BaseType: m[1]}

	if m[4] == "*" {
		ft.Pointer = true
	} else if pointerTypes[name] {
		ft.Pointer = true
	}

	if m[3] != "" {
		gt, err := parseFieldType(m[3], typeCache)
		if err != nil {
			return nil, err
		}
		ft.GenericType = gt
	}

	if m[6] != "" {
		n, err := strconv.Atoi(m[6])
		if err != nil {
			n = 0
		}
		ft.Count = n
		ft.HasCount = true
	}

	if ft.HasCount {
		elemName := ft.BaseType
		if ft.GenericType != nil {
			elemName += "< " + ft.GenericType.BaseType + " >"
		}
		if ft.Pointer {
			elemName += "*"
		}
		et, err := parseFieldType(elemName, typeCache)
		if err != nil {
			return nil, err
		}
		ft.ElementType = et
	}

	typeCache[name] = ft
	return ft, nil
}
