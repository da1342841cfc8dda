// Package config handles loading transform configuration from files.
//
// Configuration can be specified in a JSON or YAML file named envonly.json,
// envonly.yaml, envonly.yml, or .envonlyrc (YAML). The config file is
// searched for in the start directory and its parents. Every scalar key
// can be overridden with an ENVONLY_ environment variable, for example
// ENVONLY_ENV=server.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/HugoDaniel/envonly/internal/deny"
	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/pattern"
	"github.com/HugoDaniel/envonly/internal/transform"
)

// ErrInvalidConfig marks configuration that cannot be read or applied.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "ENVONLY"

// DefaultCacheSize is the number of transform results kept by default.
const DefaultCacheSize = 512

// DenyRules lists the deny patterns of one environment. Text of the form
// "/source/flags" is a regular expression; anything else is a glob.
type DenyRules struct {
	Specifiers []string `mapstructure:"specifiers"`
	Files      []string `mapstructure:"files"`
}

// ValidatorRules lists, per environment name, the imports and files
// that belong only to that environment. Text of the form "/source/flags"
// is a regular expression; anything else must match exactly.
type ValidatorRules struct {
	Imports map[string][]string `mapstructure:"imports"`
	Files   map[string][]string `mapstructure:"files"`
}

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Package is the macro package name (default "vite-env-only")
	Package *string `mapstructure:"package"`

	// Env is the target environment, "server" or "client" (default "client")
	Env *string `mapstructure:"env"`

	// SourceMap enables source map generation
	SourceMap *bool `mapstructure:"sourcemap"`

	// SourceMapInline appends the source map to the output as a data URI
	SourceMapInline *bool `mapstructure:"sourcemapInline"`

	// PreserveUnreferenced only removes code that lost its last reference
	// to an expanded macro
	PreserveUnreferenced *bool `mapstructure:"preserveUnreferenced"`

	// CacheSize bounds the number of cached transform results
	CacheSize *int `mapstructure:"cacheSize"`

	// Concurrency bounds parallel transforms (default GOMAXPROCS)
	Concurrency *int `mapstructure:"concurrency"`

	// LogLevel is debug, info, warn, or error
	LogLevel *string `mapstructure:"logLevel"`

	// Deny maps an environment name to its deny rules
	Deny map[string]DenyRules `mapstructure:"deny"`

	// Validators rejects imports and files listed for another environment
	Validators ValidatorRules `mapstructure:"validate"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"envonly.json",
	"envonly.yaml",
	"envonly.yml",
	".envonlyrc",
}

// scalarKeys can be overridden from the environment.
var scalarKeys = []string{
	"package",
	"env",
	"sourcemap",
	"sourcemapInline",
	"preserveUnreferenced",
	"cacheSize",
	"concurrency",
	"logLevel",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. When no file is found the
// returned config holds only environment overrides and the path is empty.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			cfg, err := FromEnv()
			return cfg, "", err
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrInvalidConfig), "reading %s", path)
	}
	return decode(v, path)
}

// FromEnv returns a config holding only environment overrides.
func FromEnv() (*Config, error) {
	return decode(newViper(), "environment")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range scalarKeys {
		_ = v.BindEnv(key)
	}
	return v
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func decode(v *viper.Viper, source string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrInvalidConfig), "decoding %s", source)
	}
	for name, rules := range cfg.Deny {
		cfg.Deny[name] = DenyRules{
			Specifiers: normalize(rules.Specifiers),
			Files:      normalize(rules.Files),
		}
	}
	for _, lists := range []map[string][]string{cfg.Validators.Imports, cfg.Validators.Files} {
		for name, list := range lists {
			lists[name] = normalize(list)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "in %s", source)
	}
	return &cfg, nil
}

// normalize trims patterns, drops empty ones, and removes duplicates.
func normalize(list []string) []string {
	trimmed := lo.Map(list, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Uniq(lo.Compact(trimmed))
}

// Validate checks values that a file can get wrong.
func (c *Config) Validate() error {
	if c.Env != nil {
		if _, err := env.Parse(*c.Env); err != nil {
			return errors.Mark(err, ErrInvalidConfig)
		}
	}
	for name := range c.Deny {
		if !env.Env(name).Valid() {
			return errors.Wrapf(ErrInvalidConfig, "deny: unknown environment %q, must be one of: %s", name, env.ValidList())
		}
	}
	if c.CacheSize != nil && *c.CacheSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cacheSize must not be negative, got %d", *c.CacheSize)
	}
	if c.Concurrency != nil && *c.Concurrency < 1 {
		return errors.Wrapf(ErrInvalidConfig, "concurrency must be at least 1, got %d", *c.Concurrency)
	}
	if _, err := c.DenyOptions(); err != nil {
		return err
	}
	if _, err := c.ValidatorOptions(); err != nil {
		return err
	}
	return nil
}

// PackageName returns the macro package name.
func (c *Config) PackageName() string {
	if c.Package != nil && *c.Package != "" {
		return *c.Package
	}
	return env.DefaultPackage
}

// CacheSizeValue returns the transform cache size.
func (c *Config) CacheSizeValue() int {
	if c.CacheSize != nil {
		return *c.CacheSize
	}
	return DefaultCacheSize
}

// ConcurrencyValue returns the number of parallel transforms.
func (c *Config) ConcurrencyValue() int {
	if c.Concurrency != nil {
		return *c.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// LogLevelValue returns the configured log level name, or "".
func (c *Config) LogLevelValue() string {
	if c.LogLevel != nil {
		return *c.LogLevel
	}
	return ""
}

// ToOptions converts a Config to transform.Options, using defaults for unset fields.
func (c *Config) ToOptions() (transform.Options, error) {
	opts := transform.Options{
		Env:     env.Client,
		Package: c.PackageName(),
	}
	if c.Env != nil {
		e, err := env.Parse(*c.Env)
		if err != nil {
			return opts, errors.Mark(err, ErrInvalidConfig)
		}
		opts.Env = e
	}
	if c.SourceMap != nil {
		opts.SourceMap = *c.SourceMap
	}
	if c.SourceMapInline != nil {
		opts.SourceMapInline = *c.SourceMapInline
	}
	if c.PreserveUnreferenced != nil {
		opts.PreserveUnreferenced = *c.PreserveUnreferenced
	}
	return opts, nil
}

// DenyOptions parses the deny rules.
func (c *Config) DenyOptions() (deny.Options, error) {
	opts := deny.Options{}
	for name, rules := range c.Deny {
		specifiers, err := pattern.ParseAll(rules.Specifiers)
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, ErrInvalidConfig), "deny.%s.specifiers", name)
		}
		files, err := pattern.ParseAll(rules.Files)
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, ErrInvalidConfig), "deny.%s.files", name)
		}
		opts[env.Env(name)] = deny.Rules{Specifiers: specifiers, Files: files}
	}
	return opts, nil
}

// ValidatorOptions parses the import and file validators.
func (c *Config) ValidatorOptions() (deny.ValidatorOptions, error) {
	imports, err := parseValidators("validate.imports", c.Validators.Imports)
	if err != nil {
		return deny.ValidatorOptions{}, err
	}
	files, err := parseValidators("validate.files", c.Validators.Files)
	if err != nil {
		return deny.ValidatorOptions{}, err
	}
	return deny.ValidatorOptions{Imports: imports, Files: files}, nil
}

func parseValidators(key string, lists map[string][]string) (deny.Validators, error) {
	validators := deny.Validators{}
	for name, list := range lists {
		if !env.Env(name).Valid() {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s: unknown environment %q, must be one of: %s", key, name, env.ValidList())
		}
		patterns, err := pattern.ParseAllExact(list)
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, ErrInvalidConfig), "%s.%s", key, name)
		}
		validators[env.Env(name)] = patterns
	}
	return validators, nil
}

// MergeOptions holds CLI flags. A nil field means the flag was not given.
type MergeOptions struct {
	Package              *string
	Env                  *string
	SSR                  *bool // Selects the environment when Env is nil
	SourceMap            *bool
	SourceMapInline      *bool
	PreserveUnreferenced *bool
	Concurrency          *int
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified, and the
// merged values are kept in c.
func (c *Config) Merge(cli MergeOptions) (transform.Options, error) {
	merged := *c
	if cli.Package != nil {
		merged.Package = cli.Package
	}
	if cli.Env != nil {
		merged.Env = cli.Env
	} else if cli.SSR != nil {
		e := string(env.FromSSR(*cli.SSR))
		merged.Env = &e
	}
	if cli.SourceMap != nil {
		merged.SourceMap = cli.SourceMap
	}
	if cli.SourceMapInline != nil {
		merged.SourceMapInline = cli.SourceMapInline
	}
	if cli.PreserveUnreferenced != nil {
		merged.PreserveUnreferenced = cli.PreserveUnreferenced
	}
	if cli.Concurrency != nil {
		merged.Concurrency = cli.Concurrency
	}
	*c = merged
	return c.ToOptions()
}
