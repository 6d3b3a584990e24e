package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/ss58"
)

type ss58Response struct {
	Prefix    uint16 `json:"prefix"`
	AccountID string `json:"account_id"`
	Address   string `json:"address"`
}

func runSS58Encode(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	b, err := crypto.ParseHex(c.Args().First())
	if err != nil {
		return err
	}
	var id extrinsic.AccountID
	if len(b) != len(id) {
		return fmt.Errorf("account id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)

	address, err := ss58.Encode(m.config.SS58Prefix, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.w, address)
	return nil
}

func runSS58Decode(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	address := c.Args().First()
	prefix, id, err := ss58.Decode(address)
	if err != nil {
		return err
	}
	return printJson(m.w, ss58Response{
		Prefix:    prefix,
		AccountID: hexString(id[:]),
		Address:   address,
	})
}
