package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidConfig) true for any validation failure.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig && len(e) > 0
}

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateTape(&c.Tape)...)
	errs = append(errs, validateBus(&c.Bus)...)
	errs = append(errs, validateChord(&c.Chord)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, *RequiredFieldError("logging.file_path"))
		}
		if l.MaxSizeMB < 1 {
			errs = append(errs, ValidationError{
				Field:   "logging.max_size_mb",
				Message: "rotation size must be at least 1 MB",
			})
		}
		if l.MaxBackups < 0 {
			errs = append(errs, ValidationError{
				Field:   "logging.max_backups",
				Message: "backup count cannot be negative",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	return errs
}

func validateTape(t *TapeConfig) ValidationErrors {
	var errs ValidationErrors
	if t.Enabled && t.Path == "" {
		errs = append(errs, *RequiredFieldError("tape.path"))
	}
	return errs
}

func validateBus(b *BusConfig) ValidationErrors {
	var errs ValidationErrors
	if !b.Enabled {
		return errs
	}

	if _, _, err := net.SplitHostPort(b.Addr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "bus.addr",
			Message: fmt.Sprintf("invalid address %q: want host:port", b.Addr),
		})
	}
	if b.Channel == "" {
		errs = append(errs, *RequiredFieldError("bus.channel"))
	}
	if b.DB < 0 || b.DB > 15 {
		errs = append(errs, *RangeError("bus.db", 0, 15))
	}
	if b.TimeoutMs < 1 {
		errs = append(errs, ValidationError{
			Field:   "bus.timeout_ms",
			Message: "timeout must be at least 1 ms",
		})
	}
	return errs
}

func validateChord(c *ChordConfig) ValidationErrors {
	var errs ValidationErrors
	if c.OutlineWindow < 1 || c.OutlineWindow > 64 {
		errs = append(errs, *RangeError("chord.outline_window", 1, 64))
	}
	return errs
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
