package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/config"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/ss58"
	"github.com/eigerco/extrinsic/pkg/log"
)

type metadata struct {
	config  config.Config
	options extrinsic.Options
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.CLI.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "extrinsic"
	app.Usage = "build, decode and archive SCALE encoded extrinsics"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: " TOML configuration `FILE`",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: " log `LEVEL` [debug|info|warn|error]",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: " log `FORMAT` [console|json]",
		},
		cli.StringFlag{
			Name:  "signature-format, s",
			Usage: " signature layout `FORMAT` [bytes|tagged]",
		},
		cli.BoolFlag{
			Name:  "allow-non-canonical",
			Usage: " accept compact integers that are not minimally encoded",
		},
		cli.StringFlag{
			Name:  "archive, a",
			Usage: " archive database `DIR`",
		},
		cli.UintFlag{
			Name:  "ss58-prefix",
			Usage: " SS58 network `PREFIX`",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build an extrinsic and print it as hex",
			Subcommands: []cli.Command{
				{
					Name:      "remark",
					Usage:     "build a remark call",
					ArgsUsage: "\n   (* = required)",
					Flags:     append(buildFlags(), remarkFlags()...),
					Action:    runBuildRemark,
				},
				{
					Name:      "transfer",
					Usage:     "build a transfer call",
					ArgsUsage: "\n   (* = required)",
					Flags:     append(buildFlags(), transferFlags()...),
					Action:    runBuildTransfer,
				},
			},
		},
		{
			Name:      "decode",
			Usage:     "decode one or more hex encoded extrinsics",
			ArgsUsage: "HEX...",
			Flags: append(decodeFlags(),
				cli.StringFlag{
					Name:  "output, o",
					Value: "json",
					Usage: " output `FORMAT` [json|cbor]",
				},
				cli.IntFlag{
					Name:  "jobs, j",
					Value: 0,
					Usage: " decode at most `N` inputs at once, 0 for one per CPU",
				},
			),
			Action: runDecode,
		},
		{
			Name:      "diff",
			Usage:     "show the difference between two decoded extrinsics",
			ArgsUsage: "HEX HEX",
			Flags:     decodeFlags(),
			Action:    runDiff,
		},
		{
			Name:      "hash",
			Usage:     "print the blake2b-256 hash of an encoded extrinsic",
			ArgsUsage: "HEX",
			Action:    runHash,
		},
		{
			Name:      "payload",
			Usage:     "print the signing payload of a call",
			ArgsUsage: "\n   (* = required)",
			Flags:     payloadFlags(),
			Action:    runPayload,
		},
		{
			Name:  "compact",
			Usage: "encode or decode compact integers",
			Subcommands: []cli.Command{
				{
					Name:      "encode",
					Usage:     "encode a decimal integer",
					ArgsUsage: "NUMBER",
					Action:    runCompactEncode,
				},
				{
					Name:      "decode",
					Usage:     "decode a hex compact integer",
					ArgsUsage: "HEX",
					Action:    runCompactDecode,
				},
			},
		},
		{
			Name:  "ss58",
			Usage: "convert between account ids and SS58 addresses",
			Subcommands: []cli.Command{
				{
					Name:      "encode",
					Usage:     "encode a hex account id",
					ArgsUsage: "HEX",
					Action:    runSS58Encode,
				},
				{
					Name:      "decode",
					Usage:     "decode an SS58 address",
					ArgsUsage: "ADDRESS",
					Action:    runSS58Decode,
				},
			},
		},
		{
			Name:  "archive",
			Usage: "store and retrieve encoded extrinsics",
			Subcommands: []cli.Command{
				{
					Name:      "put",
					Usage:     "archive an encoded extrinsic",
					ArgsUsage: "HEX",
					Flags: append(decodeFlags(),
						cli.StringFlag{
							Name:  "label, l",
							Usage: " unique `LABEL`",
						},
					),
					Action: runArchivePut,
				},
				{
					Name:      "get",
					Usage:     "print an archived extrinsic",
					ArgsUsage: "HASH|LABEL",
					Action:    runArchiveGet,
				},
				{
					Name:   "list",
					Usage:  "list archived extrinsics",
					Action: runArchiveList,
				},
				{
					Name:      "delete",
					Usage:     "remove an archived extrinsic",
					ArgsUsage: "HASH",
					Action:    runArchiveDelete,
				},
			},
		},
		{
			Name:  "version",
			Usage: "display extrinsic version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		m, err := loadMetadata(c)
		if err != nil {
			return err
		}
		c.App.Metadata["config"] = m
		return nil
	}

	return app
}

// loadMetadata reads the configuration file, applies the global flags on top
// and initialises logging.
func loadMetadata(c *cli.Context) (*metadata, error) {
	cfg := config.Default()
	if file := c.GlobalString("config"); file != "" {
		loaded, err := config.Load(file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.GlobalIsSet("log-level") {
		cfg.LogLevel = c.GlobalString("log-level")
	}
	if c.GlobalIsSet("log-format") {
		cfg.LogFormat = c.GlobalString("log-format")
	}
	if c.GlobalIsSet("signature-format") {
		cfg.SignatureFormat = c.GlobalString("signature-format")
	}
	if c.GlobalIsSet("allow-non-canonical") {
		cfg.AllowNonCanonical = c.GlobalBool("allow-non-canonical")
	}
	if c.GlobalIsSet("archive") {
		cfg.ArchivePath = c.GlobalString("archive")
	}
	if c.GlobalIsSet("ss58-prefix") {
		prefix := c.GlobalUint("ss58-prefix")
		if prefix > uint(ss58.MaxPrefix) {
			return nil, fmt.Errorf("ss58-prefix: %d is larger than %d", prefix, ss58.MaxPrefix)
		}
		cfg.SS58Prefix = uint16(prefix)
	}

	logOpts, err := cfg.LogOptions()
	if err != nil {
		return nil, err
	}
	logOpts.Output = c.App.ErrWriter
	log.Init(logOpts)

	opts, err := cfg.ExtrinsicOptions()
	if err != nil {
		return nil, err
	}

	return &metadata{
		config:  cfg,
		options: opts,
		w:       c.App.Writer,
	}, nil
}
