package extrinsic

import (
	"encoding/hex"
	"fmt"

	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// Signature payload sizes of the supported schemes.
const (
	Ed25519SignatureSize = 64
	Sr25519SignatureSize = 64
	EcdsaSignatureSize   = 65
)

type Ed25519Signature [Ed25519SignatureSize]byte
type Sr25519Signature [Sr25519SignatureSize]byte
type EcdsaSignature [EcdsaSignatureSize]byte

var signatureVariants = scale.NewVariants("Signature",
	scale.Variant{Index: 0, Name: "Ed25519", Proto: Ed25519Signature{}},
	scale.Variant{Index: 1, Name: "Sr25519", Proto: Sr25519Signature{}},
	scale.Variant{Index: 2, Name: "Ecdsa", Proto: EcdsaSignature{}},
)

// Signature is an opaque signature tagged with its scheme. The bytes are
// carried as is, never verified.
type Signature struct {
	inner any
}

func NewSignature[T Ed25519Signature | Sr25519Signature | EcdsaSignature](v T) Signature {
	return Signature{inner: v}
}

// Value returns the wrapped variant, nil for the zero Signature.
func (s Signature) Value() any {
	return s.inner
}

// Scheme returns the variant name.
func (s Signature) Scheme() string {
	idx, err := signatureVariants.IndexOf(s.inner)
	if err != nil {
		return ""
	}
	return signatureVariants.Name(idx)
}

// Bytes returns the signature payload without its tag.
func (s Signature) Bytes() []byte {
	switch v := s.inner.(type) {
	case Ed25519Signature:
		return v[:]
	case Sr25519Signature:
		return v[:]
	case EcdsaSignature:
		return v[:]
	default:
		return nil
	}
}

func (s Signature) String() string {
	if s.inner == nil {
		return "<empty>"
	}
	return s.Scheme() + "(0x" + hex.EncodeToString(s.Bytes()) + ")"
}

func (s Signature) IndexValue() (uint, any, error) {
	idx, err := signatureVariants.IndexOf(s.inner)
	if err != nil {
		return 0, nil, err
	}
	return idx, s.inner, nil
}

func (s Signature) ValueAt(index uint) (any, error) {
	return signatureVariants.ValueAt(index)
}

func (s *Signature) SetValue(value any) error {
	switch v := value.(type) {
	case Ed25519Signature, Sr25519Signature, EcdsaSignature:
		s.inner = v
		return nil
	default:
		return fmt.Errorf(scale.ErrUnsupportedType, v)
	}
}
