package extrinsic

import (
	"fmt"

	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// SignatureFormat selects how the signature of a signed extrinsic is laid out.
type SignatureFormat uint8

const (
	// SignatureBytes writes the signature as a compact length prefixed byte sequence.
	SignatureBytes SignatureFormat = iota
	// SignatureTagged writes the signature as a tagged Signature: one scheme
	// byte followed by the fixed size payload, without a length prefix.
	SignatureTagged
)

func (f SignatureFormat) String() string {
	switch f {
	case SignatureBytes:
		return "bytes"
	case SignatureTagged:
		return "tagged"
	default:
		return fmt.Sprintf("SignatureFormat(%d)", uint8(f))
	}
}

// ParseSignatureFormat parses "bytes" or "tagged".
func ParseSignatureFormat(s string) (SignatureFormat, error) {
	switch s {
	case "bytes", "":
		return SignatureBytes, nil
	case "tagged":
		return SignatureTagged, nil
	default:
		return 0, fmt.Errorf("unknown signature format %q", s)
	}
}

// Options configure building and decoding of extrinsics.
type Options struct {
	SignatureFormat SignatureFormat
	Decode          scale.DecodeOptions
}

// SignedExtrinsic is a call together with its origin, signature and metadata.
type SignedExtrinsic[A any] struct {
	Address Address
	// Signature holds the signature as it appears on the wire, minus the
	// length prefix in SignatureBytes format.
	Signature []byte
	Extra     Extra
	Call      Call[A]
}

// MultiSignature parses the signature as a tagged Signature.
func (x SignedExtrinsic[A]) MultiSignature() (Signature, error) {
	var sig Signature
	if err := scale.Unmarshal(x.Signature, &sig); err != nil {
		return Signature{}, fmt.Errorf("signature: %w", err)
	}
	return sig, nil
}

// NewTaggedSignature returns the wire bytes of sig for the SignatureTagged format.
func NewTaggedSignature(sig Signature) ([]byte, error) {
	return scale.Marshal(sig)
}

// BuildUnsigned encodes a call with no origin or signature attached.
func BuildUnsigned[A any](call Call[A]) ([]byte, error) {
	b, err := scale.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}
	return b, nil
}

// BuildSigned concatenates address, signature, extra and call, in that order.
func BuildSigned[A any](address Address, signature []byte, extra Extra, call Call[A], opts Options) ([]byte, error) {
	out, err := scale.Marshal(address)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}

	switch opts.SignatureFormat {
	case SignatureBytes:
		out = scale.AppendCompact(out, uint128.From64(uint64(len(signature))))
	case SignatureTagged:
		// the bytes must be exactly one tagged signature
		var sig Signature
		if err := scale.UnmarshalWithOptions(signature, &sig, opts.Decode); err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
	default:
		return nil, fmt.Errorf("signature: unknown format %d", opts.SignatureFormat)
	}
	out = append(out, signature...)

	b, err := scale.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("extra: %w", err)
	}
	out = append(out, b...)

	b, err = BuildUnsigned(call)
	if err != nil {
		return nil, err
	}
	return append(out, b...), nil
}

// Encode is BuildSigned on the fields of x.
func (x SignedExtrinsic[A]) Encode(opts Options) ([]byte, error) {
	return BuildSigned(x.Address, x.Signature, x.Extra, x.Call, opts)
}

// DecodeUnsigned decodes a call that must span the whole input.
func DecodeUnsigned[A any](data []byte, opts Options) (Call[A], error) {
	d := scale.NewDecoderBytes(data, opts.Decode)
	call, err := DecodeCall[A](d)
	if err != nil {
		return Call[A]{}, err
	}
	if err := d.Finish(); err != nil {
		return Call[A]{}, err
	}
	return call, nil
}

// DecodeSigned decodes a signed extrinsic that must span the whole input.
// Nothing is returned unless every field decodes.
func DecodeSigned[A any](data []byte, opts Options) (SignedExtrinsic[A], error) {
	d := scale.NewDecoderBytes(data, opts.Decode)

	var x SignedExtrinsic[A]
	if err := d.Decode(&x.Address); err != nil {
		return SignedExtrinsic[A]{}, fmt.Errorf("address: %w", err)
	}

	sig, err := decodeSignature(d, opts.SignatureFormat)
	if err != nil {
		return SignedExtrinsic[A]{}, fmt.Errorf("signature: %w", err)
	}
	x.Signature = sig

	if err := d.Decode(&x.Extra); err != nil {
		return SignedExtrinsic[A]{}, fmt.Errorf("extra: %w", err)
	}

	if x.Call, err = DecodeCall[A](d); err != nil {
		return SignedExtrinsic[A]{}, err
	}
	if err := d.Finish(); err != nil {
		return SignedExtrinsic[A]{}, err
	}
	return x, nil
}

func decodeSignature(d *scale.Decoder, format SignatureFormat) ([]byte, error) {
	switch format {
	case SignatureBytes:
		var sig []byte
		if err := d.Decode(&sig); err != nil {
			return nil, err
		}
		return sig, nil
	case SignatureTagged:
		var sig Signature
		if err := d.Decode(&sig); err != nil {
			return nil, err
		}
		return NewTaggedSignature(sig)
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
}

// Hash returns the blake2b-256 hash of an encoded extrinsic.
func Hash(encoded []byte) crypto.Hash {
	return crypto.HashData(encoded)
}
