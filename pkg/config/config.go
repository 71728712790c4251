// Package config loads taloscope settings from a TOML file.
//
//	[layout]
//	node_width = 250
//	node_height = 100
//	rank_sep = 50
//	node_sep = 50
//	align_gap = 50
//	compact = false
//
//	[cache]
//	backend = "file"        # none, file, redis or mongo
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Missing keys keep their defaults. Unknown keys are rejected so typos
// surface instead of being ignored.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/taloscope/taloscope/pkg/cache"
	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/layout"
)

// Config is the root of the configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig mirrors layout.Config.
type LayoutConfig struct {
	NodeWidth   float64 `toml:"node_width" validate:"gt=0"`
	NodeHeight  float64 `toml:"node_height" validate:"gt=0"`
	RankSep     float64 `toml:"rank_sep" validate:"gte=0"`
	NodeSep     float64 `toml:"node_sep" validate:"gte=0"`
	AlignGap    float64 `toml:"align_gap" validate:"gte=0"`
	Passes      int     `toml:"passes" validate:"gte=0,lte=64"`
	BreakCycles bool    `toml:"break_cycles"`
	// Compact switches to the 150×50 footprint, overriding the node size.
	Compact bool `toml:"compact"`
	// SpecOwners treats a machine's spec.workerRef or spec.controlPlaneRef as
	// its owner when it has no owner references.
	SpecOwners bool `toml:"spec_owners"`
}

const redisNamespace = "taloscope:"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	Backend         string `toml:"backend" validate:"oneof=none file redis mongo"`
	Dir             string `toml:"dir"`
	TTL             string `toml:"ttl" validate:"duration"`
	Prefix          string `toml:"prefix"`
	RedisURL        string `toml:"redis_url" validate:"required_if=Backend redis"`
	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase   string `toml:"mongo_database" validate:"required_if=Backend mongo"`
	MongoCollection string `toml:"mongo_collection" validate:"required_if=Backend mongo"`
}

// ServerConfig configures `taloscope serve`.
type ServerConfig struct {
	Addr            string `toml:"addr" validate:"required"`
	ReadTimeout     string `toml:"read_timeout" validate:"duration"`
	ShutdownTimeout string `toml:"shutdown_timeout" validate:"duration"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			RankSep:    layout.DefaultRankSep,
			NodeSep:    layout.DefaultNodeSep,
			AlignGap:   layout.DefaultAlignGap,
		},
		Cache: CacheConfig{
			Backend:         BackendFile,
			Dir:             defaultCacheDir(),
			TTL:             "24h",
			MongoDatabase:   "taloscope",
			MongoCollection: "layouts",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			ShutdownTimeout: "5s",
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "taloscope")
	}
	return filepath.Join(dir, "taloscope")
}

// DefaultPath returns $XDG_CONFIG_HOME/taloscope/config.toml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taloscope", "config.toml")
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads DefaultPath when it exists, and the defaults otherwise.
func LoadDefault() (*Config, error) {
	path := DefaultPath()
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := time.ParseDuration(s)
		return err == nil && d >= 0
	})
	return v
}

// Validate checks every field constraint. All violations are reported.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "validate config")
	}
	var problems []error
	for _, fe := range verrs {
		problems = append(problems, errs.New(errs.ErrCodeInvalidConfig, "%s: failed %q check (value %v)", fieldPath(fe), fe.Tag(), fe.Value()))
	}
	return errors.Join(problems...)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// Engine returns the layout configuration.
func (l LayoutConfig) Engine() layout.Config {
	cfg := layout.Config{
		NodeWidth:   l.NodeWidth,
		NodeHeight:  l.NodeHeight,
		RankSep:     l.RankSep,
		NodeSep:     l.NodeSep,
		AlignGap:    l.AlignGap,
		Passes:      l.Passes,
		BreakCycles: l.BreakCycles,
	}
	if l.Compact {
		cfg.NodeWidth = layout.CompactNodeWidth
		cfg.NodeHeight = layout.CompactNodeHeight
	}
	return cfg
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && s != "" {
		return d
	}
	return def
}

// TTLDuration returns the cache TTL; an empty value means no expiry.
func (c CacheConfig) TTLDuration() time.Duration { return parseDuration(c.TTL, 0) }

// ReadTimeoutDuration returns the HTTP read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(s.ReadTimeout, 10*time.Second)
}

// ShutdownTimeoutDuration returns the graceful shutdown timeout.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout, 5*time.Second)
}

// Open connects the configured backend and wraps it with observability
// hooks.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	var (
		backend cache.Cache
		err     error
	)
	switch c.Backend {
	case BackendNone, "":
		return cache.NewNullCache(), nil
	case BackendFile:
		backend, err = cache.NewFileCache(c.Dir)
	case BackendRedis:
		backend, err = cache.DialRedis(ctx, c.RedisURL, redisNamespace)
	case BackendMongo:
		backend, err = cache.DialMongo(ctx, c.MongoURI, c.MongoDatabase, c.MongoCollection)
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Backend, err)
	}
	return cache.Instrument(backend, c.Backend), nil
}

// Keyer returns the cache keyer, scoped by Prefix when one is set.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Prefix)
}
