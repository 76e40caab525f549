package config

import (
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
)

// Validate rejects configurations that cannot be acted on.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Build.Tool) == "" {
		return ferrors.ValidationError("build.tool must not be empty").Build()
	}
	if err := validateDuration("build.stop_grace", cfg.Build.StopGrace, false); err != nil {
		return err
	}
	if err := validateDuration("watch.debounce", cfg.Watch.Debounce, false); err != nil {
		return err
	}
	if err := validateDuration("watch.retry.initial", cfg.Watch.Retry.Initial, false); err != nil {
		return err
	}
	if err := validateDuration("watch.retry.max", cfg.Watch.Retry.Max, false); err != nil {
		return err
	}
	if cfg.Watch.Retry.MaxRetries < 0 {
		return ferrors.ValidationError("watch.retry.max_retries cannot be negative").
			WithContext("max_retries", cfg.Watch.Retry.MaxRetries).Build()
	}
	if err := validateDuration("schedule.every", cfg.Schedule.Every, true); err != nil {
		return err
	}
	if cfg.Schedule.Every != "" || cfg.Schedule.Cron != "" {
		switch cfg.Schedule.Target {
		case "build", "clean":
		default:
			return ferrors.ValidationError("schedule.target must be build or clean").
				WithContext("target", cfg.Schedule.Target).Build()
		}
	}
	if cfg.Schedule.Cron != "" && len(strings.Fields(cfg.Schedule.Cron)) != 5 {
		return ferrors.ValidationError("schedule.cron must have five fields").
			WithContext("cron", cfg.Schedule.Cron).Build()
	}
	if cfg.Forward.Enabled() && strings.ContainsAny(cfg.Forward.Subject, " \t*>") {
		return ferrors.ValidationError("forward.subject must be a literal subject").
			WithContext("subject", cfg.Forward.Subject).Build()
	}
	return nil
}

func validateDuration(field, raw string, optional bool) error {
	if raw == "" && optional {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid duration").
			WithContext("field", field).
			WithContext("value", raw).Build()
	}
	if d <= 0 {
		return ferrors.ValidationError("duration must be positive").
			WithContext("field", field).
			WithContext("value", raw).Build()
	}
	return nil
}
