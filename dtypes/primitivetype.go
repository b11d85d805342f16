package dtypes

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// PrimitiveType is the XLA type tag (xla_data.proto's PrimitiveType) attached to every shape.
//
// It includes the structural markers Tuple, Token and OpaqueType, which are not valid element types
// of an array. See ElementType for the subset that can be used in arrays.
type PrimitiveType int32

// Values copied from xla/xla_data.proto.
const (
	Invalid    PrimitiveType = 0
	Pred       PrimitiveType = 1
	S8         PrimitiveType = 2
	S16        PrimitiveType = 3
	S32        PrimitiveType = 4
	S64        PrimitiveType = 5
	U8         PrimitiveType = 6
	U16        PrimitiveType = 7
	U32        PrimitiveType = 8
	U64        PrimitiveType = 9
	F16        PrimitiveType = 10
	F32        PrimitiveType = 11
	F64        PrimitiveType = 12
	Tuple      PrimitiveType = 13
	OpaqueType PrimitiveType = 14
	C64        PrimitiveType = 15
	BF16       PrimitiveType = 16
	Token      PrimitiveType = 17
	C128       PrimitiveType = 18
)

var primitiveTypeNames = map[PrimitiveType]string{
	Invalid:    "INVALID",
	Pred:       "PRED",
	S8:         "S8",
	S16:        "S16",
	S32:        "S32",
	S64:        "S64",
	U8:         "U8",
	U16:        "U16",
	U32:        "U32",
	U64:        "U64",
	F16:        "F16",
	F32:        "F32",
	F64:        "F64",
	Tuple:      "TUPLE",
	OpaqueType: "OPAQUE_TYPE",
	C64:        "C64",
	BF16:       "BF16",
	Token:      "TOKEN",
	C128:       "C128",
}

// String implements fmt.Stringer.
func (pt PrimitiveType) String() string {
	if name, found := primitiveTypeNames[pt]; found {
		return name
	}
	return fmt.Sprintf("PrimitiveType(%d)", int32(pt))
}

// IsValid returns whether pt is one of the known codes, other than Invalid.
func (pt PrimitiveType) IsValid() bool {
	_, found := primitiveTypeNames[pt]
	return found && pt != Invalid
}

// IsStructural returns true for the markers that don't describe an array element: Invalid, Tuple, Token and
// OpaqueType.
func (pt PrimitiveType) IsStructural() bool {
	switch pt {
	case Invalid, Tuple, Token, OpaqueType:
		return true
	}
	return false
}

// NotAnElementTypeError is returned when a PrimitiveType that is a structural marker (or an unknown code) is
// used where an ElementType is required.
type NotAnElementTypeError struct {
	Got PrimitiveType
}

// Error implements the error interface.
func (e *NotAnElementTypeError) Error() string {
	return fmt.Sprintf("primitive type %s is not an element type", e.Got)
}

// ElementType converts pt to an ElementType.
//
// It fails with a *NotAnElementTypeError for Invalid, Tuple, Token, OpaqueType and unknown codes.
func (pt PrimitiveType) ElementType() (ElementType, error) {
	if pt.IsStructural() || !pt.IsValid() {
		return InvalidElementType, errors.WithStack(&NotAnElementTypeError{Got: pt})
	}
	return ElementType(pt), nil
}

// MapOfNames maps names (and aliases) to element types.
// It is initialized with the lower-case version of the names.
var MapOfNames = map[string]ElementType{
	"Bool":       Bool,
	"PRED":       Bool,
	"Int8":       Int8,
	"S8":         Int8,
	"Int16":      Int16,
	"S16":        Int16,
	"Int32":      Int32,
	"S32":        Int32,
	"Int64":      Int64,
	"S64":        Int64,
	"Uint8":      Uint8,
	"U8":         Uint8,
	"Uint16":     Uint16,
	"U16":        Uint16,
	"Uint32":     Uint32,
	"U32":        Uint32,
	"Uint64":     Uint64,
	"U64":        Uint64,
	"Float16":    Float16,
	"F16":        Float16,
	"BFloat16":   BFloat16,
	"BF16":       BFloat16,
	"Float32":    Float32,
	"F32":        Float32,
	"Float64":    Float64,
	"F64":        Float64,
	"Complex64":  Complex64,
	"C64":        Complex64,
	"Complex128": Complex128,
	"C128":       Complex128,
}

func init() {
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// ElementTypeFromName returns the element type with the given name or alias (see MapOfNames).
func ElementTypeFromName(name string) (ElementType, error) {
	if et, found := MapOfNames[name]; found {
		return et, nil
	}
	if et, found := MapOfNames[strings.ToLower(name)]; found {
		return et, nil
	}
	return InvalidElementType, errors.Errorf("unknown element type %q", name)
}
