package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"
	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/ss58"
	"github.com/eigerco/extrinsic/pkg/log"
)

const indexAddressPrefix = "index:"

func selectorFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "module",
			Value: -1,
			Usage: " override the module `INDEX` of the call",
		},
		cli.IntFlag{
			Name:  "function",
			Value: -1,
			Usage: " override the function `INDEX` of the call",
		},
	}
}

func extraFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "era-period",
			Usage: " mortal era `BLOCKS`, 0 for an immortal extrinsic",
		},
		cli.Uint64Flag{
			Name:  "era-current",
			Usage: " current block `NUMBER` used to place a mortal era",
		},
		cli.Uint64Flag{
			Name:  "nonce",
			Usage: " account `NONCE`",
		},
		cli.StringFlag{
			Name:  "tip",
			Value: "0",
			Usage: " `TIP` for the block author",
		},
	}
}

func buildFlags() []cli.Flag {
	flags := append(selectorFlags(), extraFlags()...)
	return append(flags,
		cli.StringFlag{
			Name:  "signer",
			Usage: " signing `ADDRESS`, builds a signed extrinsic when set",
		},
		cli.StringFlag{
			Name:  "signature",
			Usage: " hex `SIGNATURE` of the signing payload",
		},
		cli.StringFlag{
			Name:  "scheme",
			Usage: " signature `SCHEME` [ed25519|sr25519|ecdsa]",
		},
		cli.BoolFlag{
			Name:  "opaque",
			Usage: " wrap the result in a versioned length prefixed envelope",
		},
	)
}

func remarkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "text, t",
			Usage: "*remark `TEXT`",
		},
	}
}

func transferFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "dest, d",
			Usage: "*receiving `ADDRESS`",
		},
		cli.StringFlag{
			Name:  "currency",
			Value: calls.FREN.String(),
			Usage: " `CURRENCY` [FREN|GM|GN]",
		},
		cli.StringFlag{
			Name:  "amount",
			Usage: "*`AMOUNT` in base units",
		},
	}
}

func payloadFlags() []cli.Flag {
	flags := append(selectorFlags(), extraFlags()...)
	flags = append(flags, remarkFlags()...)
	flags = append(flags, transferFlags()...)
	return append(flags,
		cli.StringFlag{
			Name:  "kind, k",
			Value: string(calls.KindRemark),
			Usage: " call `KIND` [remark|transfer]",
		},
		cli.StringFlag{
			Name:  "block-hash",
			Usage: " `HASH` of the era birth block, defaults to the genesis hash",
		},
	)
}

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "kind, k",
			Value: string(calls.KindRemark),
			Usage: " call `KIND` [remark|transfer]",
		},
		cli.BoolFlag{
			Name:  "unsigned, u",
			Usage: " input is a bare call",
		},
		cli.BoolFlag{
			Name:  "opaque",
			Usage: " input is wrapped in a versioned envelope",
		},
	}
}

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

func checkArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, c.NArg())
	}
	return nil
}

// parseAddress accepts an SS58 address, index:N, or hex of 32 bytes (account
// id), 20 bytes (Address20) or any other length (raw address).
func parseAddress(m *metadata, s string) (extrinsic.Address, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return extrinsic.Address{}, fmt.Errorf("empty address")

	case strings.HasPrefix(s, indexAddressPrefix):
		n, err := strconv.ParseUint(strings.TrimPrefix(s, indexAddressPrefix), 10, 32)
		if err != nil {
			return extrinsic.Address{}, fmt.Errorf("account index: %w", err)
		}
		return extrinsic.NewAddress(extrinsic.AccountIndex(n)), nil

	case strings.HasPrefix(s, "0x"):
		b, err := crypto.ParseHex(s)
		if err != nil {
			return extrinsic.Address{}, err
		}
		switch len(b) {
		case len(extrinsic.AccountID{}):
			var id extrinsic.AccountID
			copy(id[:], b)
			return extrinsic.NewAddress(id), nil
		case len(extrinsic.Address20{}):
			var a extrinsic.Address20
			copy(a[:], b)
			return extrinsic.NewAddress(a), nil
		default:
			return extrinsic.NewAddress(extrinsic.RawAddress(b)), nil
		}

	default:
		prefix, id, err := ss58.Decode(s)
		if err != nil {
			return extrinsic.Address{}, err
		}
		if prefix != m.config.SS58Prefix {
			log.CLI.Warn().Uint16("prefix", prefix).Uint16("expected", m.config.SS58Prefix).Msg("address is for another network")
		}
		return extrinsic.NewAddress(id), nil
	}
}

func parseSignature(m *metadata, hexSig, scheme string) ([]byte, error) {
	raw, err := crypto.ParseHex(hexSig)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if scheme == "" {
		return raw, nil
	}
	sig, err := newSignature(scheme, raw)
	if err != nil {
		return nil, err
	}
	if m.options.SignatureFormat == extrinsic.SignatureTagged {
		return extrinsic.NewTaggedSignature(sig)
	}
	return raw, nil
}

func newSignature(scheme string, raw []byte) (extrinsic.Signature, error) {
	var size int
	switch scheme {
	case "ed25519":
		size = extrinsic.Ed25519SignatureSize
	case "sr25519":
		size = extrinsic.Sr25519SignatureSize
	case "ecdsa":
		size = extrinsic.EcdsaSignatureSize
	default:
		return extrinsic.Signature{}, fmt.Errorf("unknown signature scheme %q", scheme)
	}
	if len(raw) != size {
		return extrinsic.Signature{}, fmt.Errorf("%s signature must be %d bytes, got %d", scheme, size, len(raw))
	}

	switch scheme {
	case "ed25519":
		var s extrinsic.Ed25519Signature
		copy(s[:], raw)
		return extrinsic.NewSignature(s), nil
	case "sr25519":
		var s extrinsic.Sr25519Signature
		copy(s[:], raw)
		return extrinsic.NewSignature(s), nil
	default:
		var s extrinsic.EcdsaSignature
		copy(s[:], raw)
		return extrinsic.NewSignature(s), nil
	}
}

func parseExtra(c *cli.Context) (extrinsic.Extra, error) {
	era := extrinsic.ImmortalEra()
	if period := c.Uint64("era-period"); period != 0 {
		era = extrinsic.NewMortalEra(period, c.Uint64("era-current"))
	}
	tip, err := uint128.FromString(c.String("tip"))
	if err != nil {
		return extrinsic.Extra{}, fmt.Errorf("tip: %w", err)
	}
	return extrinsic.Extra{Era: era, Nonce: c.Uint64("nonce"), Tip: tip}, nil
}

func selector(c *cli.Context, def calls.Selector) (calls.Selector, error) {
	sel := def
	for _, f := range []struct {
		name string
		dst  *uint8
	}{
		{"module", &sel.Module},
		{"function", &sel.Function},
	} {
		v := c.Int(f.name)
		if v < 0 {
			continue
		}
		if v > 0xff {
			return calls.Selector{}, fmt.Errorf("%s index %d does not fit a byte", f.name, v)
		}
		*f.dst = uint8(v)
	}
	return sel, nil
}

func remarkCall(c *cli.Context) (extrinsic.Call[calls.Remark], error) {
	if !c.IsSet("text") {
		return extrinsic.Call[calls.Remark]{}, fmt.Errorf("remark text is required")
	}
	sel, err := selector(c, calls.RemarkSelector)
	if err != nil {
		return extrinsic.Call[calls.Remark]{}, err
	}
	return calls.NewRemark(sel, c.String("text")), nil
}

func transferCall(c *cli.Context, m *metadata) (extrinsic.Call[calls.Transfer], error) {
	var zero extrinsic.Call[calls.Transfer]

	dest, err := parseAddress(m, c.String("dest"))
	if err != nil {
		return zero, fmt.Errorf("dest: %w", err)
	}
	currency, err := calls.ParseCurrencyID(c.String("currency"))
	if err != nil {
		return zero, err
	}
	if c.String("amount") == "" {
		return zero, fmt.Errorf("amount is required")
	}
	amount, err := uint128.FromString(c.String("amount"))
	if err != nil {
		return zero, fmt.Errorf("amount: %w", err)
	}
	sel, err := selector(c, calls.TransferSelector)
	if err != nil {
		return zero, err
	}
	return calls.NewTransfer(sel, calls.Transfer{Dest: dest, CurrencyID: currency, Amount: amount}), nil
}
