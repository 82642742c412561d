package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/btouchard/tmplexpr/internal/config"
	"github.com/btouchard/tmplexpr/internal/extract"
	"github.com/btouchard/tmplexpr/internal/store"
)

func offsetFlag() cli.Flag {
	return &cli.IntSliceFlag{
		Name:     "offset",
		Aliases:  []string{"o"},
		Usage:    "byte offset just past the opening delimiter (repeatable)",
		Required: true,
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "read the expression at each offset and print the outcome",
		ArgsUsage: "FILE",
		Flags:     append([]cli.Flag{offsetFlag()}, config.Flags()...),
		Action:    extractAction,
	}
}

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "read the expression at each offset and store the outcome",
		ArgsUsage: "FILE",
		Flags:     append([]cli.Flag{offsetFlag()}, config.Flags()...),
		Action:    recordAction,
	}
}

// runOffsets is shared by extract and record.
func runOffsets(cmd *cli.Command) (*session, string, string, []extract.Outcome, error) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, "", "", nil, err
	}
	file, template, err := readTemplate(cmd)
	if err != nil {
		return nil, "", "", nil, err
	}

	offsets := cmd.IntSlice("offset")
	for _, offset := range offsets {
		if offset < 0 || offset > len(template) {
			return nil, "", "", nil, fmt.Errorf("offset %d is outside %s (%d bytes)", offset, file, len(template))
		}
	}

	s.log.Debug().Str("file", file).Ints("offsets", offsets).Msg("extracting")
	outcomes, _ := extract.RunAll(template, offsets, s.extractOptions())
	return s, file, template, outcomes, nil
}

func extractAction(ctx context.Context, cmd *cli.Command) error {
	s, file, template, outcomes, err := runOffsets(cmd)
	if err != nil {
		return err
	}

	if err := s.render(outcomes); err != nil {
		return err
	}
	if failed := s.reportErrors(file, template, outcomes); failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(outcomes))
	}
	return nil
}

func recordAction(ctx context.Context, cmd *cli.Command) error {
	s, file, template, outcomes, err := runOffsets(cmd)
	if err != nil {
		return err
	}
	s.reportErrors(file, template, outcomes)

	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	opts := s.cfg.Parse.ExtractOptions()
	for _, out := range outcomes {
		rec, err := store.NewExtraction(file, template, opts, out)
		if err != nil {
			return err
		}
		if err := db.Save(ctx, rec); err != nil {
			return fmt.Errorf("saving offset %d: %w", out.Offset, err)
		}
		s.log.Info().Str("id", rec.ID).Int("offset", rec.Offset).Msg("recorded")
		_, _ = fmt.Fprintf(s.out, "recorded %s %s@%d\n", rec.ID, file, rec.Offset)
	}
	return nil
}
