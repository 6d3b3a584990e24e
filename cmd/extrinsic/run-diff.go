package main

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/pkg/serialization"
)

func runDiff(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 2); err != nil {
		return err
	}
	kind, err := calls.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	inputs, err := parseInputs(c.Args())
	if err != nil {
		return err
	}

	diff, err := diffExtrinsics(m, kind, inputs[0], inputs[1], c.Bool("opaque"), c.Bool("unsigned"))
	if err != nil {
		return err
	}
	fmt.Fprint(m.w, diff)
	return nil
}

// diffExtrinsics returns a unified diff of the JSON views of a and b, empty
// when they decode to the same view.
func diffExtrinsics(m *metadata, kind calls.Kind, a, b []byte, opaque, unsigned bool) (string, error) {
	s, err := serialization.ForFormat("json", true)
	if err != nil {
		return "", err
	}

	var text [2]string
	for i, raw := range [][]byte{a, b} {
		view, err := decodeView(m, kind, raw, opaque, unsigned)
		if err != nil {
			return "", fmt.Errorf("input %d: %w", i, err)
		}
		// the hashes always differ
		view.Hash = ""
		j, err := s.Encode(view)
		if err != nil {
			return "", err
		}
		text[i] = string(j) + "\n"
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(text[0]),
		B:        difflib.SplitLines(text[1]),
		FromFile: hexString(a[:min(len(a), 8)]) + "...",
		ToFile:   hexString(b[:min(len(b), 8)]) + "...",
		Context:  3,
	})
}
