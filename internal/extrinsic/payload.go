package extrinsic

import (
	"fmt"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// maxUnhashedPayloadSize is the largest signing payload signed as is.
const maxUnhashedPayloadSize = 256

// AdditionalSigned is data covered by the signature but not sent with the
// extrinsic. The chain supplies it again when verifying.
type AdditionalSigned struct {
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        crypto.Hash
	BlockHash          crypto.Hash
}

// SigningPayload returns the bytes a signer signs for call with extra:
// call ++ extra ++ additional, replaced by its blake2b-256 hash when longer
// than 256 bytes. No signing happens here.
func SigningPayload[A any](call Call[A], extra Extra, additional AdditionalSigned) ([]byte, error) {
	payload, err := BuildUnsigned(call)
	if err != nil {
		return nil, err
	}
	for i, part := range []any{extra, additional} {
		b, err := scale.Marshal(part)
		if err != nil {
			return nil, fmt.Errorf("signing payload part %d: %w", i, err)
		}
		payload = append(payload, b...)
	}

	if len(payload) > maxUnhashedPayloadSize {
		h := crypto.HashData(payload)
		return h[:], nil
	}
	return payload, nil
}
