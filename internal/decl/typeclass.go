package decl

import (
	"go/types"
)

// TypeClass partitions source value types by the equality policy the
// generated dirty-check applies to them.
type TypeClass uint8

const (
	TypeInvalid TypeClass = iota
	// TypeComparable compares with != (basics, enums, comparable structs).
	TypeComparable
	// TypeFloat32 compares with |a-b| > 1e-6.
	TypeFloat32
	// TypeFloat64 compares with |a-b| > 1e-9.
	TypeFloat64
	// TypeNullable is a pointer to a comparable value type; compared by
	// value with nil awareness.
	TypeNullable
	// TypeVersioned compares Version() int64 snapshots; content is never
	// inspected.
	TypeVersioned
	// TypeNoEquality is a value type with no usable != (B005).
	TypeNoEquality
	// TypeUnsupported is everything else (B004).
	TypeUnsupported
)

func (tc TypeClass) String() string {
	switch tc {
	case TypeComparable:
		return "comparable"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeNullable:
		return "nullable"
	case TypeVersioned:
		return "versioned"
	case TypeNoEquality:
		return "no-equality"
	case TypeUnsupported:
		return "unsupported"
	}
	return "invalid"
}

// Supported reports whether a source of this class passes validation.
func (tc TypeClass) Supported() bool {
	switch tc {
	case TypeComparable, TypeFloat32, TypeFloat64, TypeNullable, TypeVersioned:
		return true
	}
	return false
}

// IsVersionCapable reports whether the type's method set (value or
// pointer receiver) exposes Version() int64. Detection is structural: it
// does not require the type to name any particular interface.
func IsVersionCapable(t types.Type) bool {
	if t == nil {
		return false
	}
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, "Version")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	basic, ok := sig.Results().At(0).Type().Underlying().(*types.Basic)
	return ok && basic.Kind() == types.Int64
}

// Classify assigns the equality policy for a source value type.
func Classify(t types.Type) TypeClass {
	if t == nil {
		return TypeInvalid
	}
	if basic, ok := t.Underlying().(*types.Basic); ok && basic.Kind() == types.Invalid {
		return TypeInvalid
	}
	if IsVersionCapable(t) {
		return TypeVersioned
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Float32:
			return TypeFloat32
		case types.Float64:
			return TypeFloat64
		default:
			return TypeComparable
		}
	case *types.Pointer:
		elem := u.Elem()
		if types.Comparable(elem) {
			return TypeNullable
		}
		if isValueShape(elem) {
			return TypeNoEquality
		}
		return TypeUnsupported
	case *types.Struct, *types.Array:
		if types.Comparable(t) {
			return TypeComparable
		}
		return TypeNoEquality
	}
	return TypeUnsupported
}

// isValueShape reports whether t is struct- or array-shaped, the kinds
// whose missing equality is a B005 rather than a B004.
func isValueShape(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Struct, *types.Array:
		return true
	}
	return false
}
