package main

import (
	"fmt"

	"github.com/urfave/cli"
	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

type compactResponse struct {
	Value    string `json:"value"`
	Consumed int    `json:"consumed"`
	Trailing string `json:"trailing,omitempty"`
}

func runCompactEncode(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	v, err := uint128.FromString(c.Args().First())
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	fmt.Fprintln(m.w, hexString(scale.EncodeCompact(v)))
	return nil
}

func runCompactDecode(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	b, err := crypto.ParseHex(c.Args().First())
	if err != nil {
		return err
	}
	v, n, err := scale.DecodeCompact(b, m.options.Decode)
	if err != nil {
		return err
	}

	response := compactResponse{
		Value:    v.String(),
		Consumed: n,
	}
	if n < len(b) {
		response.Trailing = hexString(b[n:])
	}
	return printJson(m.w, response)
}
