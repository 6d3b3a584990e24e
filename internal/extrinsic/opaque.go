package extrinsic

import (
	"errors"
	"fmt"

	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/pkg/log"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

const (
	// ExtrinsicVersion is the only envelope version understood.
	ExtrinsicVersion byte = 4
	signedBit        byte = 0x80
)

var ErrUnsupportedVersion = errors.New("unsupported extrinsic version")

// Opaque is the versioned, length prefixed envelope nodes accept over RPC.
// Body holds an unsigned call or a signed extrinsic depending on Signed.
type Opaque struct {
	Signed bool
	Body   []byte
}

// Version returns the version byte, with the top bit set for signed bodies.
func (o Opaque) Version() byte {
	if o.Signed {
		return ExtrinsicVersion | signedBit
	}
	return ExtrinsicVersion
}

// Encode returns compact(len) ++ version ++ body, where len counts the
// version byte and the body.
func (o Opaque) Encode() []byte {
	out := scale.AppendCompact(nil, uint128.From64(uint64(len(o.Body)+1)))
	out = append(out, o.Version())
	return append(out, o.Body...)
}

// EncodeOpaque wraps an encoded extrinsic body in the envelope.
func EncodeOpaque(signed bool, body []byte) []byte {
	return Opaque{Signed: signed, Body: body}.Encode()
}

// DecodeOpaque unwraps the envelope. The input must hold exactly one envelope.
func DecodeOpaque(data []byte, opts scale.DecodeOptions) (Opaque, error) {
	d := scale.NewDecoderBytes(data, opts)
	n, err := d.DecodeCompactUint64()
	if err != nil {
		return Opaque{}, fmt.Errorf("envelope length: %w", err)
	}
	if n == 0 {
		return Opaque{}, fmt.Errorf("%w: envelope without version byte", scale.ErrTruncatedInput)
	}
	if left, ok := d.Remaining(); ok && n > uint64(left) {
		return Opaque{}, fmt.Errorf("%w: envelope of %d bytes, %d left", scale.ErrTruncatedInput, n, left)
	}

	b, err := d.ReadBytes(int(n))
	if err != nil {
		return Opaque{}, err
	}
	if err := d.Finish(); err != nil {
		return Opaque{}, err
	}

	version := b[0]
	if version&^signedBit != ExtrinsicVersion {
		log.Codec.Debug().Uint8("version", version&^signedBit).Int("size", len(data)).Msg("rejected envelope")
		return Opaque{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version&^signedBit)
	}
	return Opaque{Signed: version&signedBit != 0, Body: b[1:]}, nil
}
