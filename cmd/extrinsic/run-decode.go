package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/pkg/log"
	"github.com/eigerco/extrinsic/pkg/serialization"
)

func runDecode(c *cli.Context) error {
	m := getMetadata(c)

	if c.NArg() == 0 {
		return fmt.Errorf("at least one hex input is required")
	}
	kind, err := calls.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	out, err := serialization.ForFormat(c.String("output"), true)
	if err != nil {
		return err
	}
	if out.Format() == "scale" {
		return fmt.Errorf("output format %q is not supported by decode", out.Format())
	}
	inputs, err := parseInputs(c.Args())
	if err != nil {
		return err
	}

	views, err := decodeAll(context.Background(), m, kind, inputs, c.Bool("opaque"), c.Bool("unsigned"), c.Int("jobs"))
	if err != nil {
		return err
	}

	var result any = views
	if len(views) == 1 {
		result = views[0]
	}
	return printEncoded(m.w, out, result)
}

// decodeAll decodes every input with at most jobs decodes in flight. The
// first failure cancels the rest and is returned with the input position.
func decodeAll(ctx context.Context, m *metadata, kind calls.Kind, inputs [][]byte, opaque, unsigned bool, jobs int) ([]extrinsicView, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	views := make([]extrinsicView, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, raw := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			view, err := decodeView(m, kind, raw, opaque, unsigned)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.CLI.Debug().Int("count", len(inputs)).Int("jobs", jobs).Msg("decoded extrinsics")
	return views, nil
}

func runHash(c *cli.Context) error {
	m := getMetadata(c)
	if err := checkArgs(c, 1); err != nil {
		return err
	}
	inputs, err := parseInputs(c.Args())
	if err != nil {
		return err
	}
	fmt.Fprintf(m.w, "%s\n", extrinsic.Hash(inputs[0]))
	return nil
}
