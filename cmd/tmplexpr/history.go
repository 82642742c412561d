package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/btouchard/tmplexpr/internal/config"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list stored extractions, newest first",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "maximum number of records (0 lists all)",
			},
		}, config.Flags()...),
		Action: historyAction,
	}
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := db.Recent(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	switch s.cfg.Output.Format {
	case "text":
		for _, r := range recs {
			result := r.NodeType
			if r.ErrorCode != "" {
				result = s.red.Sprint(r.ErrorCode)
			}
			_, _ = fmt.Fprintf(s.out, "%s  %s  %s@%d -> %d  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.File, r.Offset, r.Index, result)
		}
		return nil
	default:
		return s.encode(recs)
	}
}
