package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
)

const (
	aliceHex  = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
)

var testSignature = "0x" + strings.Repeat("01", extrinsic.Sr25519SignatureSize)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	err := app.Run(append([]string{"extrinsic"}, args...))
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "extrinsic %s", strings.Join(args, " "))
	return strings.TrimSpace(out)
}

func alice(t *testing.T) extrinsic.AccountID {
	t.Helper()
	b, err := crypto.ParseHex(aliceHex)
	require.NoError(t, err)
	var id extrinsic.AccountID
	copy(id[:], b)
	return id
}

func TestBuildUnsignedRemark(t *testing.T) {
	out := mustRun(t, "build", "remark", "--text", "hi")
	assert.Equal(t, "0x0000086869", out)
}

func TestBuildRemarkSelectorOverride(t *testing.T) {
	out := mustRun(t, "build", "remark", "--text", "", "--module", "1", "--function", "7")
	assert.Equal(t, "0x010700", out)

	_, err := run(t, "build", "remark", "--text", "x", "--module", "256")
	assert.ErrorContains(t, err, "does not fit a byte")
}

func TestBuildRemarkRequiresText(t *testing.T) {
	_, err := run(t, "build", "remark")
	assert.ErrorContains(t, err, "remark text is required")
}

func TestBuildSignedRemark(t *testing.T) {
	out := mustRun(t, "build", "remark", "--text", "hi",
		"--signer", aliceSS58, "--signature", testSignature,
		"--nonce", "5", "--tip", "64", "--era-period", "64", "--era-current", "42")

	sig, err := crypto.ParseHex(testSignature)
	require.NoError(t, err)
	expected, err := extrinsic.BuildSigned(
		extrinsic.NewAddress(alice(t)),
		sig,
		extrinsic.NewExtra(extrinsic.NewMortalEra(64, 42), 5, 64),
		calls.NewRemark(calls.RemarkSelector, "hi"),
		extrinsic.Options{},
	)
	require.NoError(t, err)
	assert.Equal(t, hexString(expected), out)
}

func TestBuildSignedRequiresSignature(t *testing.T) {
	_, err := run(t, "build", "remark", "--text", "hi", "--signer", aliceHex)
	assert.ErrorContains(t, err, "signature is required")

	_, err = run(t, "build", "remark", "--text", "hi", "--signature", testSignature)
	assert.ErrorContains(t, err, "signature given without signer")
}

func TestBuildSignedTaggedScheme(t *testing.T) {
	out := mustRun(t, "--signature-format", "tagged",
		"build", "remark", "--text", "hi",
		"--signer", aliceHex, "--signature", testSignature, "--scheme", "sr25519")

	encoded, err := crypto.ParseHex(out)
	require.NoError(t, err)
	// address tag, account id, then the sr25519 signature tag
	assert.Equal(t, byte(0x01), encoded[1+32])

	decoded := mustRun(t, "--signature-format", "tagged", "decode", out)
	var view extrinsicView
	require.NoError(t, json.Unmarshal([]byte(decoded), &view))
	assert.Equal(t, "Sr25519", view.Scheme)

	_, err = run(t, "build", "remark", "--text", "hi",
		"--signer", aliceHex, "--signature", "0x0102", "--scheme", "ed25519")
	assert.ErrorContains(t, err, "ed25519 signature must be 64 bytes")
}

func TestBuildTransferDecodeRoundTrip(t *testing.T) {
	out := mustRun(t, "build", "transfer", "--dest", "index:7", "--currency", "GM", "--amount", "1000000",
		"--signer", aliceHex, "--signature", testSignature, "--opaque")

	decoded := mustRun(t, "decode", "--kind", "transfer", "--opaque", out)
	var view struct {
		extrinsicView
		Call struct {
			Module uint8        `json:"module"`
			Args   transferView `json:"args"`
		} `json:"call"`
	}
	require.NoError(t, json.Unmarshal([]byte(decoded), &view))

	assert.True(t, view.Signed)
	assert.Equal(t, aliceSS58, view.SS58)
	assert.Equal(t, "immortal", view.Era)
	assert.Equal(t, calls.TransferSelector.Module, view.Call.Module)
	assert.Equal(t, "Index(7)", view.Call.Args.Dest)
	assert.Equal(t, "GM", view.Call.Args.Currency)
	assert.Equal(t, "1000000", view.Call.Args.Amount)
}

func TestBuildTransferValidation(t *testing.T) {
	_, err := run(t, "build", "transfer", "--dest", aliceHex, "--currency", "XYZ", "--amount", "1")
	assert.Error(t, err)

	_, err = run(t, "build", "transfer", "--dest", aliceHex)
	assert.ErrorContains(t, err, "amount is required")

	_, err = run(t, "build", "transfer", "--amount", "1")
	assert.ErrorContains(t, err, "dest")
}

func TestDecodeBatch(t *testing.T) {
	inputs := []string{
		mustRun(t, "build", "remark", "--text", "a"),
		mustRun(t, "build", "remark", "--text", "b"),
		mustRun(t, "build", "remark", "--text", "c"),
	}

	out := mustRun(t, append([]string{"decode", "--unsigned", "--jobs", "2"}, inputs...)...)
	var views []struct {
		Call struct {
			Args remarkView `json:"args"`
		} `json:"call"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, views[i].Call.Args.Remark)
	}

	_, err := run(t, "decode", "--unsigned", inputs[0], "0x0000ff", inputs[2])
	assert.ErrorContains(t, err, "input 1")
}

func TestDecodeCBOROutput(t *testing.T) {
	in := mustRun(t, "build", "remark", "--text", "hi")
	out := mustRun(t, "decode", "--unsigned", "--output", "cbor", in)
	assert.True(t, strings.HasPrefix(out, "0x"))

	_, err := run(t, "decode", "--unsigned", "--output", "scale", in)
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	_, err := run(t, "decode", "--unsigned", "0x000008686900")
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	a := mustRun(t, "build", "remark", "--text", "hello")
	b := mustRun(t, "build", "remark", "--text", "world")

	out := mustRun(t, "diff", "--unsigned", a, b)
	assert.Contains(t, out, `-      "remark": "hello"`)
	assert.Contains(t, out, `+      "remark": "world"`)

	out = mustRun(t, "diff", "--unsigned", a, a)
	assert.Empty(t, out)
}

func TestHash(t *testing.T) {
	in := mustRun(t, "build", "remark", "--text", "hi")
	raw, err := crypto.ParseHex(in)
	require.NoError(t, err)

	assert.Equal(t, extrinsic.Hash(raw).String(), mustRun(t, "hash", in))

	_, err = run(t, "hash")
	assert.Error(t, err)
}

func TestPayload(t *testing.T) {
	dir := t.TempDir()
	genesis := "0x" + strings.Repeat("ab", crypto.HashSize)
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[chain]
spec_version = 9
transaction_version = 2
genesis_hash = "`+genesis+`"
`), 0o600))

	out := mustRun(t, "--config", cfg, "payload", "--text", "hi", "--nonce", "1")

	g, err := crypto.ParseHash(genesis)
	require.NoError(t, err)
	expected, err := extrinsic.SigningPayload(
		calls.NewRemark(calls.RemarkSelector, "hi"),
		extrinsic.NewExtra(extrinsic.ImmortalEra(), 1, 0),
		extrinsic.AdditionalSigned{SpecVersion: 9, TransactionVersion: 2, GenesisHash: g, BlockHash: g},
	)
	require.NoError(t, err)
	assert.Equal(t, hexString(expected), out)
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "0x0300000040", mustRun(t, "compact", "encode", "1073741824"))
	assert.Equal(t, "0x33"+strings.Repeat("ff", 16),
		mustRun(t, "compact", "encode", uint128.Max.String()))

	var resp compactResponse
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "compact", "decode", "0x0101ff")), &resp))
	assert.Equal(t, compactResponse{Value: "64", Consumed: 2, Trailing: "0xff"}, resp)

	_, err := run(t, "compact", "decode", "0x0500")
	assert.Error(t, err)

	var lenient compactResponse
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--allow-non-canonical", "compact", "decode", "0x0500")), &lenient))
	assert.Equal(t, compactResponse{Value: "1", Consumed: 2}, lenient)
}

func TestSS58(t *testing.T) {
	assert.Equal(t, aliceSS58, mustRun(t, "ss58", "encode", aliceHex))
	assert.Equal(t, "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5",
		mustRun(t, "--ss58-prefix", "0", "ss58", "encode", aliceHex))

	var resp ss58Response
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "ss58", "decode", aliceSS58)), &resp))
	assert.Equal(t, ss58Response{Prefix: 42, AccountID: aliceHex, Address: aliceSS58}, resp)

	_, err := run(t, "ss58", "encode", "0x0102")
	assert.ErrorContains(t, err, "account id must be 32 bytes")

	_, err = run(t, "--ss58-prefix", "20000", "ss58", "encode", aliceHex)
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	in := mustRun(t, "build", "remark", "--text", "hi",
		"--signer", aliceHex, "--signature", testSignature)
	raw, err := crypto.ParseHex(in)
	require.NoError(t, err)
	hash := extrinsic.Hash(raw).String()

	var rec recordResponse
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--archive", path, "archive", "put", "--label", "first", in)), &rec))
	assert.Equal(t, hash, rec.Hash)
	assert.True(t, rec.Signed)
	assert.Equal(t, "remark", rec.Kind)

	for _, key := range []string{hash, "first"} {
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--archive", path, "archive", "get", key)), &rec))
		assert.Equal(t, in, rec.Encoded)
	}

	var list []recordResponse
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--archive", path, "archive", "list")), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Label)

	_, err = run(t, "--archive", path, "archive", "put", "0x00ff")
	assert.Error(t, err)

	mustRun(t, "--archive", path, "archive", "delete", hash)
	_, err = run(t, "--archive", path, "archive", "get", hash)
	assert.ErrorContains(t, err, "extrinsic not found")
}

func TestConfigErrors(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "hash", "0x00")
	assert.Error(t, err)

	_, err = run(t, "--signature-format", "weird", "hash", "0x00")
	assert.ErrorContains(t, err, "signature_format")

	_, err = run(t, "--log-level", "loud", "hash", "0x00")
	assert.ErrorContains(t, err, "log_level")
}
