package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// AppName names the default config files and prefixes env variables.
const AppName = "tmplexpr"

// EnvPrefix is prepended to every generated environment variable name.
const EnvPrefix = "TMPLEXPR_"

type options struct {
	cmd         *cli.Command
	configPaths []string
	envPrefix   string
	logger      zerolog.Logger
}

// Option adjusts Load.
type Option func(*options)

// WithCommand applies flags the user explicitly set on cmd (highest priority).
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithConfigPaths replaces the file search list. The first readable file wins.
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithEnvPrefix overrides EnvPrefix. An empty prefix disables env bindings.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithLogger receives debug output about which sources were applied.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// DefaultPaths returns the config file search order.
func DefaultPaths() []string {
	paths := []string{"." + AppName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName+".yaml"))
	}
	return paths
}

// Load builds a Config from defaults, file, environment and flags, then
// validates it.
func Load(opts ...Option) (*Config, error) {
	o := &options{
		envPrefix: EnvPrefix,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.configPaths) == 0 {
		o.configPaths = DefaultPaths()
	}

	defaults := DefaultConfig()
	configMap := structToMap(defaults)

	for _, path := range o.configPaths {
		content, err := os.ReadFile(path) //nolint:gosec // user supplied config path
		if err != nil {
			continue
		}

		fileMap, err := parseConfigBytes(path, content)
		if err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		mergeMaps(configMap, fileMap)
		o.logger.Debug().Str("path", path).Msg("loaded config file")

		break
	}

	if o.envPrefix != "" {
		for envKey, configPath := range envBindings(o.envPrefix, collectConfigKeys(defaults)) {
			if val := os.Getenv(envKey); val != "" {
				setByPath(configMap, configPath, val)
				o.logger.Debug().Str("env", envKey).Str("key", configPath).Msg("applied env binding")
			}
		}
	}

	if o.cmd != nil {
		applyFlags(o.cmd, configMap, reflect.TypeOf(defaults), "")
	}

	var cfg Config
	if err := decodeConfigMap(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FlagName is the CLI flag bound to a config key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

// envBindings maps env variable names to config keys: parse.opening-token
// becomes <prefix>PARSE_OPENING_TOKEN.
func envBindings(prefix string, keys []string) map[string]string {
	bindings := make(map[string]string, len(keys))
	replacer := strings.NewReplacer(".", "_", "-", "_")
	for _, key := range keys {
		bindings[prefix+strings.ToUpper(replacer.Replace(key))] = key
	}
	return bindings
}

// applyFlags copies explicitly set flags into the config map.
func applyFlags(cmd *cli.Command, config map[string]any, typ reflect.Type, prefix string) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		key := configTagName(field)
		if key == "" {
			continue
		}
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if field.Type.Kind() == reflect.Struct {
			applyFlags(cmd, config, field.Type, fullKey)
			continue
		}

		flag := FlagName(fullKey)
		if !cmd.IsSet(flag) {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			setByPath(config, fullKey, cmd.String(flag))
		case reflect.Bool:
			setByPath(config, fullKey, cmd.Bool(flag))
		}
	}
}
