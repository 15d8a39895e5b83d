package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/weave/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weave.json"

	// DefaultManifest is the manifest path used when none is configured.
	DefaultManifest = "weave.yaml"

	// DefaultPort is the default preview server port.
	DefaultPort = 4000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultFrameRate is the default preview frame rate in frames per second.
	DefaultFrameRate = 60

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "weave"
)

// Config represents the complete weave.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the path to the manifest (.yaml or .hcl), relative to the config
	// file.
	Manifest string `json:"manifest,omitempty"`

	Dev     DevConfig     `json:"dev,omitempty"`
	Frame   FrameConfig   `json:"frame,omitempty"`
	Log     LogConfig     `json:"log,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty"`
	Publish PublishConfig `json:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains preview server settings.
type DevConfig struct {
	// Port is the port to run the preview server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`
}

// FrameConfig contains frame loop settings.
type FrameConfig struct {
	// Rate is the number of frames per second of the preview loop.
	Rate int `json:"rate,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the preview server.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// PublishConfig contains object store settings for "weave render --publish".
type PublishConfig struct {
	// Bucket is the destination bucket. Publishing is disabled when empty.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the service endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for weave.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No weave.json found in " + filepath.Dir(path)).
				WithSuggestion("Create weave.json or pass --config")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse weave.json: " + err.Error()).
			WithSuggestion("Check that weave.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E102").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Frame.Rate == 0 {
		c.Frame.Rate = DefaultFrameRate
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E103").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Frame.Rate < 1 || c.Frame.Rate > 1000 {
		return errors.New("E103").
			WithDetail("frame.rate must be between 1 and 1000 frames per second")
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("E103").
			WithDetail("log.level must be one of debug, info, warn or error").
			Wrap(err)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level)))
	return level, err
}

// FrameInterval returns the duration of one preview frame.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Frame.Rate)
}

// ManifestPath returns the manifest path resolved against the config
// directory.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) || c.configPath == "" {
		return c.Manifest
	}
	return filepath.Join(c.Dir(), c.Manifest)
}

// DevAddress returns the address string for the preview server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the preview server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// ObjectKey joins Publish.Prefix and name.
func (c *Config) ObjectKey(name string) string {
	return c.Publish.Prefix + name
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing weave.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No weave.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its closest ancestor holding weave.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
