package config

const (
	defaultTool       = "msbuild"
	defaultStopGrace  = "5s"
	defaultReadBuffer = 64 * 1024
	defaultAddr       = "127.0.0.1:8765"
	defaultSubject    = "solvent"
	defaultDebounce   = "500ms"
	defaultTarget     = "build"

	defaultRetryInitial = "200ms"
	defaultRetryMax     = "2s"
	defaultRetries      = 3
)

// applyDefaults fills unset fields. Enumerations are normalised first so
// unknown log settings fall back to their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Build.Tool == "" {
		cfg.Build.Tool = defaultTool
	}
	if cfg.Build.StopGrace == "" {
		cfg.Build.StopGrace = defaultStopGrace
	}
	if cfg.Build.ReadBuffer <= 0 {
		cfg.Build.ReadBuffer = defaultReadBuffer
	}

	cfg.Log.Level = NormalizeLogLevel(string(cfg.Log.Level))
	cfg.Log.Format = NormalizeLogFormat(string(cfg.Log.Format))

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Forward.NATSURL != "" && cfg.Forward.Subject == "" {
		cfg.Forward.Subject = defaultSubject
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce
	}
	if cfg.Watch.Retry == (RetryConfig{}) {
		cfg.Watch.Retry.MaxRetries = defaultRetries
	}
	cfg.Watch.Retry.Backoff = NormalizeRetryBackoff(string(cfg.Watch.Retry.Backoff))
	if cfg.Watch.Retry.Initial == "" {
		cfg.Watch.Retry.Initial = defaultRetryInitial
	}
	if cfg.Watch.Retry.Max == "" {
		cfg.Watch.Retry.Max = defaultRetryMax
	}
	if (cfg.Schedule.Every != "" || cfg.Schedule.Cron != "") && cfg.Schedule.Target == "" {
		cfg.Schedule.Target = defaultTarget
	}
}
