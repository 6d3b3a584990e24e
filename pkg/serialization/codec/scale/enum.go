package scale

import (
	"fmt"
	"reflect"
)

// EncodeEnum is implemented by tagged unions. IndexValue returns the
// discriminant and the payload; a nil payload marks a unit variant.
type EncodeEnum interface {
	IndexValue() (index uint, value any, err error)
}

// EnumType is a tagged union that can also be decoded. ValueAt returns a
// zero payload for the discriminant (nil for unit variants) and SetValue
// stores the decoded payload, or the discriminant byte for unit variants.
type EnumType interface {
	EncodeEnum
	ValueAt(index uint) (value any, err error)
	SetValue(value any) error
}

// Variant describes one alternative of a closed tagged union.
type Variant struct {
	Index uint8
	Name  string
	// Proto is the zero payload of the variant, nil for unit variants.
	Proto any
}

// Variants is the closed discriminant table of one union type. A discriminant
// missing from the table is a decode error.
type Variants struct {
	union   string
	byIndex map[uint8]Variant
	byType  map[reflect.Type]uint8
	ordered []Variant
}

// NewVariants builds the table for a union named union. It panics on a
// duplicate discriminant or payload type, which is a programming error.
func NewVariants(union string, variants ...Variant) Variants {
	t := Variants{
		union:   union,
		byIndex: make(map[uint8]Variant, len(variants)),
		byType:  make(map[reflect.Type]uint8, len(variants)),
		ordered: variants,
	}
	for _, v := range variants {
		if _, ok := t.byIndex[v.Index]; ok {
			panic(fmt.Sprintf("scale: %s: duplicate discriminant %d", union, v.Index))
		}
		t.byIndex[v.Index] = v
		if v.Proto == nil {
			continue
		}
		typ := reflect.TypeOf(v.Proto)
		if _, ok := t.byType[typ]; ok {
			panic(fmt.Sprintf("scale: %s: payload type %v used twice", union, typ))
		}
		t.byType[typ] = v.Index
	}
	return t
}

// Union returns the union name used in errors.
func (t Variants) Union() string {
	return t.union
}

// Len returns the number of variants.
func (t Variants) Len() int {
	return len(t.ordered)
}

// Lookup returns the variant for a discriminant.
func (t Variants) Lookup(index uint) (Variant, error) {
	if index <= 0xff {
		if v, ok := t.byIndex[uint8(index)]; ok {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %s discriminant %d", ErrUnknownVariant, t.union, index)
}

// ValueAt returns the zero payload for a discriminant, nil for unit variants.
func (t Variants) ValueAt(index uint) (any, error) {
	v, err := t.Lookup(index)
	if err != nil {
		return nil, err
	}
	return v.Proto, nil
}

// IndexOf returns the discriminant whose payload type matches value.
func (t Variants) IndexOf(value any) (uint, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: %s holds no value", ErrUnsupportedEnumTypeValue, t.union)
	}
	idx, ok := t.byType[reflect.TypeOf(value)]
	if !ok {
		return 0, fmt.Errorf("%w: %s cannot hold %T", ErrUnsupportedEnumTypeValue, t.union, value)
	}
	return uint(idx), nil
}

// Name returns the variant name for a discriminant, or "" if unknown.
func (t Variants) Name(index uint) string {
	v, err := t.Lookup(index)
	if err != nil {
		return ""
	}
	return v.Name
}

// EncodeTagged prepends the discriminant to an already encoded payload.
func EncodeTagged(tag uint8, payload []byte) []byte {
	out := make([]byte, 0, 1+len(payload))
	out = append(out, tag)
	return append(out, payload...)
}
