// Package config holds tmplexpr settings.
//
// Load merges, from lowest to highest priority:
//  1. DefaultConfig
//  2. the first config file found (--config, .tmplexpr.yaml, ~/.tmplexpr.yaml)
//  3. TMPLEXPR_* environment variables
//  4. CLI flags the user actually set
//
// Keys come from json tags and are shared by YAML, JSON, env names and flags:
// parse.opening-token is TMPLEXPR_PARSE_OPENING_TOKEN and --parse-opening-token.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/btouchard/tmplexpr/internal/extract"
)

type Config struct {
	Parse  ParseConfig  `json:"parse" desc:"expression reader settings"`
	Output OutputConfig `json:"output" desc:"report rendering"`
	Store  StoreConfig  `json:"store" desc:"extraction ledger"`
	Log    LogConfig    `json:"log" desc:"diagnostic logging"`
}

type ParseConfig struct {
	Loose         bool   `json:"loose" desc:"replace unreadable expressions with placeholders"`
	TypeScript    bool   `json:"typescript" desc:"accept TypeScript expression syntax"`
	OpeningToken  string `json:"opening-token" desc:"delimiter that opened the tag"`
	DisallowLoose bool   `json:"disallow-loose" desc:"never recover, even in loose mode"`
}

type OutputConfig struct {
	Format string `json:"format" desc:"json, yaml or text"`
	Color  bool   `json:"color" desc:"colourise diagnostics"`
}

type StoreConfig struct {
	DSN string `json:"dsn" desc:"sqlite database path"`
}

type LogConfig struct {
	Level string `json:"level" desc:"zerolog level"`
}

// DefaultConfig is the single source of defaults; CLI flag defaults read it too.
func DefaultConfig() Config {
	return Config{
		Parse: ParseConfig{
			OpeningToken: "{",
		},
		Output: OutputConfig{
			Format: "json",
			Color:  true,
		},
		Store: StoreConfig{
			DSN: "tmplexpr.db",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Parse.OpeningToken {
	case "{", "(", "[":
	default:
		result = multierror.Append(result, fmt.Errorf("parse.opening-token: unsupported delimiter %q", c.Parse.OpeningToken))
	}

	switch c.Output.Format {
	case "json", "yaml", "text":
	default:
		result = multierror.Append(result, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}

	if c.Store.DSN == "" {
		result = multierror.Append(result, fmt.Errorf("store.dsn: must not be empty"))
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}

	return result.ErrorOrNil()
}

// ExtractOptions converts the parse section for the extraction service.
func (c ParseConfig) ExtractOptions() extract.Options {
	return extract.Options{
		Loose:         c.Loose,
		TypeScript:    c.TypeScript,
		OpeningToken:  c.OpeningToken,
		DisallowLoose: c.DisallowLoose,
	}
}
