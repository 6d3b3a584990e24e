package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/pkg/log"
)

func runBuildRemark(c *cli.Context) error {
	m := getMetadata(c)
	call, err := remarkCall(c)
	if err != nil {
		return err
	}
	return printBuilt(c, m, call)
}

func runBuildTransfer(c *cli.Context) error {
	m := getMetadata(c)
	call, err := transferCall(c, m)
	if err != nil {
		return err
	}
	return printBuilt(c, m, call)
}

func printBuilt[A any](c *cli.Context, m *metadata, call extrinsic.Call[A]) error {
	encoded, signed, err := build(c, m, call)
	if err != nil {
		return err
	}
	if c.Bool("opaque") {
		encoded = extrinsic.EncodeOpaque(signed, encoded)
	}
	log.CLI.Debug().Bool("signed", signed).Int("size", len(encoded)).Stringer("hash", extrinsic.Hash(encoded)).Msg("built extrinsic")
	fmt.Fprintln(m.w, hexString(encoded))
	return nil
}

// build encodes call as a signed extrinsic when --signer is set and as a bare
// call otherwise.
func build[A any](c *cli.Context, m *metadata, call extrinsic.Call[A]) ([]byte, bool, error) {
	if !c.IsSet("signer") {
		if c.IsSet("signature") {
			return nil, false, fmt.Errorf("signature given without signer")
		}
		encoded, err := extrinsic.BuildUnsigned(call)
		return encoded, false, err
	}

	address, err := parseAddress(m, c.String("signer"))
	if err != nil {
		return nil, false, fmt.Errorf("signer: %w", err)
	}
	if !c.IsSet("signature") {
		return nil, false, fmt.Errorf("signature is required with signer")
	}
	signature, err := parseSignature(m, c.String("signature"), c.String("scheme"))
	if err != nil {
		return nil, false, err
	}
	extra, err := parseExtra(c)
	if err != nil {
		return nil, false, err
	}
	encoded, err := extrinsic.BuildSigned(address, signature, extra, call, m.options)
	return encoded, true, err
}
