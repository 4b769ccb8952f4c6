// Package config loads diceplan settings from a TOML or YAML file.
//
// Settings come from three layers: built-in defaults, the configuration
// file, and command line flags. Each layer overrides the previous one; the
// flags are applied by the CLI. String values may reference environment
// variables as $NAME or ${NAME}, so secrets such as the Redis password need not be
// stored in the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/diceplan/pkg/cache"
	"github.com/matzehuels/diceplan/pkg/dump"
	"github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/pipeline"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "diceplan.toml"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// CacheBackends lists the accepted cache backends.
var CacheBackends = []string{CacheNone, CacheFile, CacheRedis}

// Config is the complete diceplan configuration.
type Config struct {
	Search SearchConfig `toml:"search" yaml:"search"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Dump   DumpConfig   `toml:"dump" yaml:"dump"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// SearchConfig holds the problem and the search options.
type SearchConfig struct {
	Source        int    `toml:"source" yaml:"source"`
	Target        int    `toml:"target" yaml:"target"`
	Heuristic     string `toml:"heuristic" yaml:"heuristic"`
	MaxIterations int    `toml:"max_iterations" yaml:"max_iterations"`
	ReportEvery   int    `toml:"report_every" yaml:"report_every"`
	AcceptTies    bool   `toml:"accept_ties" yaml:"accept_ties"`
}

// CacheConfig selects where heuristic estimates and results are stored.
type CacheConfig struct {
	Backend string            `toml:"backend" yaml:"backend"`
	Dir     string            `toml:"dir" yaml:"dir"`
	TTL     Duration          `toml:"ttl" yaml:"ttl"`
	// Prefix is prepended to every key, so deployments and key schema
	// versions can share one Redis.
	Prefix  string            `toml:"prefix" yaml:"prefix"`
	Redis   cache.RedisConfig `toml:"redis" yaml:"redis"`
}

// DumpConfig selects where visited plans are dumped. Both sinks may be
// set; an empty value disables a sink.
type DumpConfig struct {
	File  string           `toml:"file" yaml:"file"`
	Mongo dump.MongoConfig `toml:"mongo" yaml:"mongo"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr          string        `toml:"addr" yaml:"addr"`
	Timeout       Duration      `toml:"timeout" yaml:"timeout"`
	MaxIterations int           `toml:"max_iterations" yaml:"max_iterations"`
	RateLimit     float64       `toml:"rate_limit" yaml:"rate_limit"`
	Limits        errors.Limits `toml:"limits" yaml:"limits"`
}

// Duration is a time.Duration written as a string such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration: a d6 simulating a d8, no
// cache, no dumps.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Source:      pipeline.DefaultSource,
			Target:      pipeline.DefaultTarget,
			Heuristic:   pipeline.DefaultHeuristic,
			ReportEvery: 100_000,
		},
		Cache: CacheConfig{
			Backend: CacheNone,
			Redis:   cache.RedisConfig{Addr: "localhost:6379"},
		},
		Dump: DumpConfig{
			Mongo: dump.MongoConfig{Database: "diceplan", Collection: "plans"},
		},
		Server: ServerConfig{
			Addr:          ":8080",
			Timeout:       Duration{30 * time.Second},
			MaxIterations: 5_000_000,
			RateLimit:     10,
			Limits:        errors.Limits{MaxSource: 100, MaxTarget: 64},
		},
	}
}

// Load reads path on top of the defaults. The format follows the file
// extension: .yaml and .yml are YAML, anything else TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	data = []byte(interpolate(string(data)))

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but returns the defaults if path does not
// exist.
func LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks values that the search and the service cannot fix up.
func (c *Config) Validate() error {
	var problems []string
	check := func(err error) {
		if err != nil {
			problems = append(problems, errors.Message(err))
		}
	}

	check(errors.ValidateDice(c.Search.Source, c.Search.Target, errors.Limits{}))
	check(errors.ValidateIterations(c.Search.MaxIterations))
	check(errors.ValidateIterations(c.Server.MaxIterations))
	check(errors.ValidateChoice(errors.ErrCodeInvalidConfig, "heuristic", c.Search.Heuristic, pipeline.Heuristics))
	check(errors.ValidateChoice(errors.ErrCodeInvalidConfig, "cache backend", c.Cache.Backend, CacheBackends))
	if c.Search.ReportEvery < 0 {
		problems = append(problems, fmt.Sprintf("report_every cannot be negative, got %d", c.Search.ReportEvery))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		problems = append(problems, "cache.redis.addr is required for the redis backend")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit cannot be negative")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// interpolate replaces $NAME and ${NAME} with the value of the environment
// variable NAME. Unset variables expand to the empty string.
func interpolate(s string) string {
	return os.Expand(s, os.Getenv)
}
