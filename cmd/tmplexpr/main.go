package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/btouchard/tmplexpr/internal/config"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  config.AppName,
		Usage: "read template expressions at byte offsets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default .tmplexpr.yaml, then ~/.tmplexpr.yaml)",
			},
		},
		Commands: []*cli.Command{
			extractCommand(),
			recordCommand(),
			verifyCommand(),
			historyCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
