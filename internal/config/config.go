// Package config loads the settings of the extrinsic tool from a TOML file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/pkg/log"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// Config holds every setting; Default returns the values used when a key is
// absent from the file.
type Config struct {
	LogLevel          string
	LogFormat         string
	ArchivePath       string
	SS58Prefix        uint16
	AllowNonCanonical bool
	SignatureFormat   string
	Chain             Chain
}

// Chain is the data needed to build signing payloads.
type Chain struct {
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        crypto.Hash
}

type fileConfig struct {
	LogLevel          string    `toml:"log_level"`
	LogFormat         string    `toml:"log_format"`
	ArchivePath       string    `toml:"archive_path"`
	SS58Prefix        uint16    `toml:"ss58_prefix"`
	AllowNonCanonical bool      `toml:"allow_non_canonical"`
	SignatureFormat   string    `toml:"signature_format"`
	Chain             fileChain `toml:"chain"`
}

type fileChain struct {
	SpecVersion        uint32 `toml:"spec_version"`
	TransactionVersion uint32 `toml:"transaction_version"`
	GenesisHash        string `toml:"genesis_hash"`
}

func Default() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "console",
		ArchivePath:     "extrinsics.db",
		SS58Prefix:      42,
		SignatureFormat: extrinsic.SignatureBytes.String(),
	}
}

// Load reads path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}
	if meta.IsDefined("archive_path") {
		cfg.ArchivePath = strings.TrimSpace(raw.ArchivePath)
	}
	if meta.IsDefined("ss58_prefix") {
		cfg.SS58Prefix = raw.SS58Prefix
	}
	if meta.IsDefined("allow_non_canonical") {
		cfg.AllowNonCanonical = raw.AllowNonCanonical
	}
	if meta.IsDefined("signature_format") {
		cfg.SignatureFormat = strings.TrimSpace(raw.SignatureFormat)
	}
	if meta.IsDefined("chain", "spec_version") {
		cfg.Chain.SpecVersion = raw.Chain.SpecVersion
	}
	if meta.IsDefined("chain", "transaction_version") {
		cfg.Chain.TransactionVersion = raw.Chain.TransactionVersion
	}
	if meta.IsDefined("chain", "genesis_hash") {
		h, err := crypto.ParseHash(raw.Chain.GenesisHash)
		if err != nil {
			return Config{}, fmt.Errorf("parse chain.genesis_hash: %w", err)
		}
		cfg.Chain.GenesisHash = h
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that are parsed later on.
func (c Config) Validate() error {
	if _, err := c.LogOptions(); err != nil {
		return err
	}
	if _, err := c.ExtrinsicOptions(); err != nil {
		return err
	}
	return nil
}

// LogOptions converts the log settings.
func (c Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.Options{}, fmt.Errorf("log_level: %w", err)
	}
	typ, err := log.ParseLoggerType(c.LogFormat)
	if err != nil {
		return log.Options{}, fmt.Errorf("log_format: %w", err)
	}
	return log.Options{LogLevel: level, Type: typ}, nil
}

// ExtrinsicOptions converts the codec settings.
func (c Config) ExtrinsicOptions() (extrinsic.Options, error) {
	format, err := extrinsic.ParseSignatureFormat(c.SignatureFormat)
	if err != nil {
		return extrinsic.Options{}, fmt.Errorf("signature_format: %w", err)
	}
	return extrinsic.Options{
		SignatureFormat: format,
		Decode:          scale.DecodeOptions{AllowNonCanonical: c.AllowNonCanonical},
	}, nil
}
