package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/btouchard/tmplexpr/internal/config"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "replay every stored extraction and report the ones that changed",
		Flags:  config.Flags(),
		Action: verifyAction,
	}
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	n, err := db.Verify(ctx)
	if err != nil {
		return fmt.Errorf("verified %d records: %w", n, err)
	}
	_, _ = fmt.Fprintf(s.out, "verified %d records\n", n)
	return nil
}
