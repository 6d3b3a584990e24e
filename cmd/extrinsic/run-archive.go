package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/store"
	"github.com/eigerco/extrinsic/pkg/db/pebble"
	"github.com/eigerco/extrinsic/pkg/log"
)

type recordResponse struct {
	Hash     string `json:"hash"`
	Label    string `json:"label,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Signed   bool   `json:"signed"`
	Size     int    `json:"size"`
	StoredAt string `json:"stored_at"`
	Encoded  string `json:"encoded,omitempty"`
}

func newRecordResponse(rec store.Record, encoded []byte) recordResponse {
	r := recordResponse{
		Hash:     rec.Hash.String(),
		Label:    rec.Label,
		Kind:     rec.Kind,
		Signed:   rec.Signed,
		Size:     rec.Size,
		StoredAt: time.Unix(rec.StoredAt, 0).UTC().Format(time.RFC3339),
	}
	if encoded != nil {
		r.Encoded = hexString(encoded)
	}
	return r
}

func openArchive(m *metadata) (*store.Archive, error) {
	kv, err := pebble.Open(m.config.ArchivePath)
	if err != nil {
		return nil, err
	}
	archive, err := store.NewArchive(kv)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return archive, nil
}

func withArchive(m *metadata, fn func(*store.Archive) error) error {
	archive, err := openArchive(m)
	if err != nil {
		return err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			log.CLI.Warn().Err(err).Str("path", m.config.ArchivePath).Msg("closing archive")
		}
	}()
	return fn(archive)
}

// runArchivePut decodes the input first so only well formed extrinsics are
// archived.
func runArchivePut(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
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
	view, err := decodeView(m, kind, inputs[0], c.Bool("opaque"), c.Bool("unsigned"))
	if err != nil {
		return err
	}

	return withArchive(m, func(a *store.Archive) error {
		rec, err := a.Put(inputs[0], store.Metadata{
			Label:  c.String("label"),
			Kind:   string(kind),
			Signed: view.Signed,
		})
		if err != nil {
			return err
		}
		return printJson(m.w, newRecordResponse(rec, nil))
	})
}

// runArchiveGet looks the argument up as a hash first, then as a label.
func runArchiveGet(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	key := c.Args().First()

	return withArchive(m, func(a *store.Archive) error {
		var (
			encoded []byte
			rec     store.Record
			err     = store.ErrExtrinsicNotFound
		)
		if hash, herr := crypto.ParseHash(key); herr == nil {
			encoded, rec, err = a.Get(hash)
		}
		if errors.Is(err, store.ErrExtrinsicNotFound) {
			encoded, rec, err = a.GetByLabel(key)
		}
		if err != nil {
			return err
		}
		return printJson(m.w, newRecordResponse(rec, encoded))
	})
}

func runArchiveList(c *cli.Context) error {
	m := getMetadata(c)
	return withArchive(m, func(a *store.Archive) error {
		records, err := a.List()
		if err != nil {
			return err
		}
		response := make([]recordResponse, 0, len(records))
		for _, rec := range records {
			response = append(response, newRecordResponse(rec, nil))
		}
		return printJson(m.w, response)
	})
}

func runArchiveDelete(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	hash, err := crypto.ParseHash(c.Args().First())
	if err != nil {
		return err
	}
	return withArchive(m, func(a *store.Archive) error {
		if err := a.Delete(hash); err != nil {
			return err
		}
		fmt.Fprintf(m.w, "deleted %s\n", hash)
		return nil
	})
}
