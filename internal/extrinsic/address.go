package extrinsic

import (
	"encoding/hex"
	"fmt"

	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// AccountID is a 32-byte account identifier, usually a public key.
type AccountID [32]byte

// AccountIndex is a short account reference, encoded as a compact integer.
type AccountIndex uint32

// RawAddress is an address of arbitrary length. An empty RawAddress is
// always held as nil.
type RawAddress []byte

// Address32 is a 32-byte address that is not an account id.
type Address32 [32]byte

// Address20 is a 20-byte, Ethereum style address.
type Address20 [20]byte

var addressVariants = scale.NewVariants("Address",
	scale.Variant{Index: 0, Name: "Id", Proto: AccountID{}},
	scale.Variant{Index: 1, Name: "Index", Proto: AccountIndex(0)},
	scale.Variant{Index: 2, Name: "Raw", Proto: RawAddress(nil)},
	scale.Variant{Index: 3, Name: "Address32", Proto: Address32{}},
	scale.Variant{Index: 4, Name: "Address20", Proto: Address20{}},
)

func (i AccountIndex) MarshalSCALE() ([]byte, error) {
	return scale.EncodeCompactUint64(uint64(i)), nil
}

func (i *AccountIndex) UnmarshalSCALE(d *scale.Decoder) error {
	v, err := d.DecodeCompactUint32()
	if err != nil {
		return err
	}
	*i = AccountIndex(v)
	return nil
}

// Address is the origin of a signed extrinsic, one of AccountID,
// AccountIndex, RawAddress, Address32 or Address20.
type Address struct {
	inner any
}

// NewAddress wraps one of the address variants.
func NewAddress[T AccountID | AccountIndex | RawAddress | Address32 | Address20](v T) Address {
	return Address{inner: normalizeAddress(v)}
}

func normalizeAddress(v any) any {
	if raw, ok := v.(RawAddress); ok && len(raw) == 0 {
		return RawAddress(nil)
	}
	return v
}

// Value returns the wrapped variant, nil for the zero Address.
func (a Address) Value() any {
	return a.inner
}

// Kind returns the variant name.
func (a Address) Kind() string {
	idx, err := addressVariants.IndexOf(a.inner)
	if err != nil {
		return ""
	}
	return addressVariants.Name(idx)
}

// AccountID returns the account id if the address holds one.
func (a Address) AccountID() (AccountID, bool) {
	id, ok := a.inner.(AccountID)
	return id, ok
}

func (a Address) String() string {
	switch v := a.inner.(type) {
	case AccountID:
		return "Id(0x" + hex.EncodeToString(v[:]) + ")"
	case AccountIndex:
		return fmt.Sprintf("Index(%d)", v)
	case RawAddress:
		return "Raw(0x" + hex.EncodeToString(v) + ")"
	case Address32:
		return "Address32(0x" + hex.EncodeToString(v[:]) + ")"
	case Address20:
		return "Address20(0x" + hex.EncodeToString(v[:]) + ")"
	default:
		return "<empty>"
	}
}

func (a Address) IndexValue() (uint, any, error) {
	idx, err := addressVariants.IndexOf(a.inner)
	if err != nil {
		return 0, nil, err
	}
	return idx, a.inner, nil
}

func (a Address) ValueAt(index uint) (any, error) {
	return addressVariants.ValueAt(index)
}

func (a *Address) SetValue(value any) error {
	switch v := value.(type) {
	case AccountID, AccountIndex, RawAddress, Address32, Address20:
		a.inner = normalizeAddress(v)
		return nil
	default:
		return fmt.Errorf(scale.ErrUnsupportedType, v)
	}
}
