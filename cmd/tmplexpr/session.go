package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/btouchard/tmplexpr/internal/config"
	"github.com/btouchard/tmplexpr/internal/extract"
	"github.com/btouchard/tmplexpr/internal/store"
)

// session is the per-invocation state shared by every command.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer
	red    *color.Color
}

func newSession(cmd *cli.Command) (*session, error) {
	opts := []config.Option{config.WithCommand(cmd)}
	if path := cmd.String("config"); path != "" {
		opts = append(opts, config.WithConfigPaths(path))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}

	root := cmd.Root()
	out, errOut := root.Writer, root.ErrWriter
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	log := zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: !cfg.Output.Color}).
		Level(level).
		With().Timestamp().Str("cmd", cmd.Name).
		Logger()

	red := color.New(color.FgRed)
	if cfg.Output.Color {
		red.EnableColor()
	} else {
		red.DisableColor()
	}

	return &session{cfg: cfg, log: log, out: out, errOut: errOut, red: red}, nil
}

func (s *session) extractOptions() extract.Options {
	opts := s.cfg.Parse.ExtractOptions()
	opts.Logger = &s.log
	return opts
}

func (s *session) openStore() (*store.Store, error) {
	s.log.Debug().Str("dsn", s.cfg.Store.DSN).Msg("opening store")
	return store.Open(s.cfg.Store.DSN)
}

// readTemplate loads the file named by the first argument.
func readTemplate(cmd *cli.Command) (string, string, error) {
	file := cmd.Args().First()
	if file == "" {
		return "", "", fmt.Errorf("%s: missing template file", cmd.Name)
	}
	data, err := os.ReadFile(file) //nolint:gosec // user supplied template path
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return file, string(data), nil
}

// reportErrors prints every failed outcome in red with file:line:col.
func (s *session) reportErrors(file, template string, outcomes []extract.Outcome) int {
	failed := 0
	for _, out := range outcomes {
		if out.Err == nil {
			continue
		}
		failed++
		_, _ = s.red.Fprintln(s.errOut, out.Err.Located(template, file).Error())
	}
	return failed
}
