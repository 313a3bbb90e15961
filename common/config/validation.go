package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the configuration. Sections of disabled hooks are not checked.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message})
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port", "port must be between 0 and 65535")
	}
	if c.Hooks.Timeout < 0 {
		add("hooks.timeout", "timeout must not be negative")
	}

	if c.Database.Enabled {
		switch c.Database.Driver {
		case "mysql", "postgres":
			if c.Database.Host == "" {
				add("database.host", "host is required")
			}
		case "sqlite":
			if c.Database.Path == "" {
				add("database.path", "path is required for sqlite")
			}
		default:
			add("database.driver", fmt.Sprintf("unsupported driver %q", c.Database.Driver))
		}
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		add("redis.host", "host is required")
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		add("storage.bucket", "bucket is required")
	}

	if c.Scheduler.Heartbeat < 0 {
		add("scheduler.heartbeat", "heartbeat must not be negative")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
