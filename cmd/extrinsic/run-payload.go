package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
)

func runPayload(c *cli.Context) error {
	m := getMetadata(c)

	kind, err := calls.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	var payload []byte
	switch kind {
	case calls.KindRemark:
		call, err := remarkCall(c)
		if err != nil {
			return err
		}
		payload, err = signingPayload(c, m, call)
		if err != nil {
			return err
		}
	case calls.KindTransfer:
		call, err := transferCall(c, m)
		if err != nil {
			return err
		}
		payload, err = signingPayload(c, m, call)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(m.w, hexString(payload))
	return nil
}

func signingPayload[A any](c *cli.Context, m *metadata, call extrinsic.Call[A]) ([]byte, error) {
	extra, err := parseExtra(c)
	if err != nil {
		return nil, err
	}

	chain := m.config.Chain
	additional := extrinsic.AdditionalSigned{
		SpecVersion:        chain.SpecVersion,
		TransactionVersion: chain.TransactionVersion,
		GenesisHash:        chain.GenesisHash,
		BlockHash:          chain.GenesisHash,
	}
	if s := c.String("block-hash"); s != "" {
		h, err := crypto.ParseHash(s)
		if err != nil {
			return nil, fmt.Errorf("block-hash: %w", err)
		}
		additional.BlockHash = h
	}
	return extrinsic.SigningPayload(call, extra, additional)
}
