// Package config loads the xfer configuration file.
//
// The file is YAML. It is decoded with yaml.v3, checked against an embedded
// CUE schema that also supplies every default, and decoded into Config. The
// factories in this package turn the mounts and locations it describes into
// backends and upload transports.
package config

import (
	"context"
	_ "embed"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/xfer/archive"
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/logging"
	"github.com/jmgilman/go/xfer/transfer"
)

//go:embed schema.cue
var schemaSource string

// Config is the decoded configuration file.
type Config struct {
	Log       LogConfig        `json:"log"`
	Engine    EngineConfig     `json:"engine"`
	Metrics   MetricsConfig    `json:"metrics"`
	Mounts    []MountConfig    `json:"mounts"`
	Locations []LocationConfig `json:"locations"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// EngineConfig configures the transfer engine.
type EngineConfig struct {
	ChunkSize            int           `json:"chunk_size"`
	DeleteThrottle       string        `json:"delete_throttle"`
	MultiThreadThreshold int64         `json:"multi_thread_threshold"`
	Workers              int           `json:"workers"`
	Extract              ExtractConfig `json:"extract"`
}

// ExtractConfig holds the unzip limits.
type ExtractConfig struct {
	MaxFiles    int   `json:"max_files"`
	MaxSize     int64 `json:"max_size"`
	MaxFileSize int64 `json:"max_file_size"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables
// it.
type MetricsConfig struct {
	Addr string `json:"addr"`
}

// MountConfig describes one backend.
type MountConfig struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	// Root defaults to Name followed by ":/".
	Root string `json:"root,omitempty"`

	// Dir is the host directory of native and removable mounts.
	Dir string `json:"dir,omitempty"`
	// File is the host path of an image mount's zip file.
	File string `json:"file,omitempty"`

	Endpoint  string `json:"endpoint,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// RootPath returns the mount's path prefix.
func (m MountConfig) RootPath() string {
	if m.Root != "" {
		return m.Root
	}
	return m.Name + ":/"
}

// LocationConfig describes one upload target.
type LocationConfig struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Prefix string `json:"prefix,omitempty"`

	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	Endpoint  string `json:"endpoint,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty"`
}

// Load reads and parses the file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read config file",
			map[string]interface{}{"path": path})
	}
	cfg, err := Parse(ctx, data)
	if err != nil {
		return nil, errors.WithContext(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes YAML data, applies the schema defaults and validates it.
// Empty data yields the default configuration.
func Parse(ctx context.Context, data []byte) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCancelled, "context cancelled")
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config YAML")
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	value := cctx.Encode(raw)

	unified, err := validate(schema, value)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to decode config")
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// check enforces the rules the schema cannot express.
func (c *Config) check() error {
	if _, err := time.ParseDuration(c.Engine.DeleteThrottle); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid delete_throttle",
			map[string]interface{}{"value": c.Engine.DeleteThrottle})
	}

	roots := map[string]string{}
	names := map[string]bool{}
	for _, m := range c.Mounts {
		if names[m.Name] {
			return errors.WithContext(errors.New(errors.CodeInvalidConfig, "duplicate mount name"), "name", m.Name)
		}
		names[m.Name] = true
		if other, dup := roots[m.RootPath()]; dup {
			return errors.WithContextMap(errors.New(errors.CodeInvalidConfig, "mounts share a root"),
				map[string]interface{}{"root": m.RootPath(), "mounts": []string{other, m.Name}})
		}
		roots[m.RootPath()] = m.Name
	}

	locations := map[string]bool{}
	for _, l := range c.Locations {
		if locations[l.Name] {
			return errors.WithContext(errors.New(errors.CodeInvalidConfig, "duplicate location name"), "name", l.Name)
		}
		locations[l.Name] = true
	}
	return nil
}

// LoggerConfig returns the logging configuration.
func (c *Config) LoggerConfig() (logging.Config, error) {
	level, err := logging.ParseLogLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid log level")
	}
	return logging.Config{Level: level, JSON: c.Log.Format == "json"}, nil
}

// EngineOptions returns the transfer engine options the file describes.
func (c *Config) EngineOptions() []transfer.Option {
	throttle, _ := time.ParseDuration(c.Engine.DeleteThrottle)
	return []transfer.Option{
		transfer.WithChunkSize(c.Engine.ChunkSize),
		transfer.WithDeleteThrottle(throttle),
		transfer.WithMultiThreadThreshold(c.Engine.MultiThreadThreshold),
		transfer.WithWorkers(c.Engine.Workers),
		transfer.WithExtractOptions(archive.ExtractOptions{
			MaxFiles:    c.Engine.Extract.MaxFiles,
			MaxSize:     c.Engine.Extract.MaxSize,
			MaxFileSize: c.Engine.Extract.MaxFileSize,
		}),
	}
}
