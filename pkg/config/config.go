package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/pkg/action"
	"github.com/aretw0/pipedeck/pkg/adapters/process"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/aretw0/pipedeck/pkg/persistence/middleware"
	"github.com/aretw0/pipedeck/pkg/stream"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file.
const (
	EnvExecutable = "PIPEDECK_EXECUTABLE"
	EnvAPI        = "PIPEDECK_API"
	EnvUploadsLog = "PIPEDECK_UPLOADS_LOG"
	EnvLogLevel   = "PIPEDECK_LOG_LEVEL"
	EnvStoreKey   = "PIPEDECK_STORE_KEY"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultPollInterval is how often followers refresh a snapshot.
const DefaultPollInterval = 100 * time.Millisecond

// Duration is a time.Duration written as "100ms" or "24h" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// StoreConfig selects the OutcomeStore backend.
type StoreConfig struct {
	Kind          string   `yaml:"kind" json:"kind"`
	Path          string   `yaml:"path" json:"path"`
	RedisAddr     string   `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string   `yaml:"redis_password" json:"redis_password"`
	RedisDB       int      `yaml:"redis_db" json:"redis_db"`
	TTL           Duration `yaml:"ttl" json:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, outcomes are sealed at rest.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
	// Mask lists patterns of extracted field keys masked before saving.
	Mask []string `yaml:"mask" json:"mask"`
}

// Config is the complete pipedeck configuration.
type Config struct {
	Executable   string            `yaml:"executable" json:"executable"`
	BaseArgs     []string          `yaml:"base_args" json:"base_args"`
	Env          map[string]string `yaml:"env" json:"env"`
	API          string            `yaml:"api" json:"api"`
	UploadsLog   string            `yaml:"uploads_log" json:"uploads_log"`
	LinkHost     string            `yaml:"link_host" json:"link_host"`
	PollInterval Duration          `yaml:"poll_interval" json:"poll_interval"`
	ChunkSize    int               `yaml:"chunk_size" json:"chunk_size"`
	HTTP         HTTPConfig        `yaml:"http" json:"http"`
	Store        StoreConfig       `yaml:"store" json:"store"`
	LogLevel     string            `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Executable:   process.DefaultExecutable,
		API:          action.DefaultAPI,
		LinkHost:     extract.DefaultLinkHost,
		PollInterval: Duration(DefaultPollInterval),
		ChunkSize:    stream.DefaultChunkSize,
		HTTP:         HTTPConfig{Addr: "127.0.0.1:8680"},
		Store: StoreConfig{
			Kind:      StoreMemory,
			Path:      filepath.Join(".pipedeck", "outcomes"),
			RedisAddr: "localhost:6379",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML or JSON file (chosen by extension) over the defaults and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvExecutable); ok && v != "" {
		c.Executable = v
	}
	if v, ok := lookup(EnvAPI); ok && v != "" {
		c.API = v
	}
	if v, ok := lookup(EnvUploadsLog); ok && v != "" {
		c.UploadsLog = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvStoreKey); ok && v != "" {
		c.Store.EncryptionKey = v
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Executable == "" {
		errs = append(errs, errors.New("executable must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk_size must be positive"))
	}
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl must not be negative"))
	}
	if _, _, err := c.Store.Keys(); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Store.Mask {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("store.mask %q: %w", p, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Keys decodes the encryption keys. A nil active key means encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, errors.New("store.fallback_keys requires store.encryption_key")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey("store.encryption_key", s.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(fmt.Sprintf("store.fallback_keys[%d]", i), k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(name, s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%s is not base64: %w", name, err)
	}
	if len(key) != middleware.KeySize {
		return nil, fmt.Errorf("%s must decode to %d bytes, got %d", name, middleware.KeySize, len(key))
	}
	return key, nil
}

// String describes the backend for log lines. The password is omitted.
func (s StoreConfig) String() string {
	switch s.Kind {
	case StoreRedis:
		return s.Kind + "://" + s.RedisAddr + "/" + strconv.Itoa(s.RedisDB)
	case StoreFile:
		return s.Kind + "://" + s.Path
	}
	return s.Kind
}
