package extrinsic

import "lukechampine.com/uint128"

// Extra is the transaction metadata carried by a signed extrinsic.
type Extra struct {
	Era   Era
	Nonce uint64          `scale:"compact"`
	Tip   uint128.Uint128 `scale:"compact"`
}

// NewExtra returns the metadata of a transaction with a tip expressed in 64 bits.
func NewExtra(era Era, nonce, tip uint64) Extra {
	return Extra{Era: era, Nonce: nonce, Tip: uint128.From64(tip)}
}
