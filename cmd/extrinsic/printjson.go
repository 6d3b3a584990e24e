package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/eigerco/extrinsic/pkg/serialization"
)

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// print out json
func printJson(w io.Writer, message any) error {
	s, err := serialization.ForFormat("json", true)
	if err != nil {
		return err
	}
	return printEncoded(w, s, message)
}

// printEncoded writes message in the serializer's format. Binary formats are
// written as hex.
func printEncoded(w io.Writer, s *serialization.Serializer, message any) error {
	b, err := s.Encode(message)
	if err != nil {
		return fmt.Errorf("encode %s output: %w", s.Format(), err)
	}
	if s.Format() == "json" {
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	_, err = fmt.Fprintln(w, hexString(b))
	return err
}
