package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "solvent.yaml"

// Config is the solvent configuration file.
type Config struct {
	Build    BuildConfig    `yaml:"build"`
	Solution SolutionConfig `yaml:"solution,omitempty"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Forward  ForwardConfig  `yaml:"forward,omitempty"`
	Watch    WatchConfig    `yaml:"watch"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
}

// BuildConfig describes how the build tool is invoked.
type BuildConfig struct {
	Tool       string   `yaml:"tool"`                 // Build tool executable
	Logger     string   `yaml:"logger,omitempty"`     // Structured logger extension passed as /logger:
	ExtraArgs  []string `yaml:"extra_args,omitempty"` // Appended after the generated arguments
	StopGrace  string   `yaml:"stop_grace"`           // Time allowed for output to drain after exit or stop
	ReadBuffer int      `yaml:"read_buffer"`          // Per stream line buffer in bytes
}

// StopGraceDuration returns the parsed stop grace period.
func (b BuildConfig) StopGraceDuration() time.Duration {
	d, _ := time.ParseDuration(b.StopGrace)
	return d
}

// SolutionConfig overrides the initial configuration/platform selection.
type SolutionConfig struct {
	Configuration string `yaml:"configuration,omitempty"`
	Platform      string `yaml:"platform,omitempty"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ServerConfig controls the HTTP control surface of serve mode.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ForwardConfig enables forwarding of build events to NATS.
type ForwardConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether forwarding is configured.
func (f ForwardConfig) Enabled() bool { return f.NATSURL != "" }

// WatchConfig controls reloading the solution when its file changes.
type WatchConfig struct {
	Enabled  bool        `yaml:"enabled"`
	Debounce string      `yaml:"debounce"`
	Retry    RetryConfig `yaml:"retry"`
}

// RetryConfig controls how often a failed reload is retried. Editors that
// write the solution in several steps can leave it briefly unreadable.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"` // fixed|linear|exponential
	Initial    string           `yaml:"initial"`
	Max        string           `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// InitialDuration returns the parsed first retry delay.
func (r RetryConfig) InitialDuration() time.Duration {
	d, _ := time.ParseDuration(r.Initial)
	return d
}

// MaxDuration returns the parsed delay cap.
func (r RetryConfig) MaxDuration() time.Duration {
	d, _ := time.ParseDuration(r.Max)
	return d
}

// DebounceDuration returns the parsed debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

// ScheduleConfig triggers builds periodically in serve mode. Every and Cron
// may both be set.
type ScheduleConfig struct {
	Every  string `yaml:"every,omitempty"`
	Cron   string `yaml:"cron,omitempty"`
	Target string `yaml:"target,omitempty"`
}

// EveryDuration returns the parsed interval, zero when unset.
func (s ScheduleConfig) EveryDuration() time.Duration {
	d, _ := time.ParseDuration(s.Every)
	return d
}

// Load reads the configuration file at path. A missing file at the default
// location yields the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	if loaded := loadEnvFiles(); len(loaded) > 0 {
		slog.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user supplied configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.NotFoundError("configuration file not found").
				WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("path", path).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", logfields.Path(path))
	return cfg, nil
}

// Parse decodes YAML configuration after expanding ${VAR} references, then
// applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Build()
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}

	example := Example()
	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIO, "failed to write config file").
			WithContext("path", path).Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Build: BuildConfig{
			Tool:      "msbuild",
			Logger:    "${SOLVENT_LOGGER}",
			ExtraArgs: []string{"/m"},
		},
		Metrics: MetricsConfig{Enabled: true},
		Watch:   WatchConfig{Enabled: true},
		Schedule: ScheduleConfig{
			Cron:   "0 2 * * *",
			Target: "build",
		},
	}
	applyDefaults(cfg)
	return cfg
}
