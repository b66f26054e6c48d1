package model

import (
	"errors"
	"fmt"
)

// Data-quality conditions. They are wrapped in a DataQualityError naming the
// unit that has to be skipped.
var (
	ErrMissingChannel = errors.New("response channel not in file header")
	ErrMissingColumn  = errors.New("required column not in file header")
	ErrNoDate         = errors.New("no date digits in line name")
	ErrNoAMPM         = errors.New("line name too short for AM/PM code")
	ErrEmptyMask      = errors.New("no samples within mask radius of seed")
	ErrNoSensorLines  = errors.New("no lines for sensor")
)

// ConfigError aborts a whole run.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigError returns a ConfigError for field.
func NewConfigError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataQualityError marks a unit (file, sensor, line or pass/seed pair) that
// is skipped while the rest of the run continues.
type DataQualityError struct {
	Unit string
	Err  error
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: %s: %v", e.Unit, e.Err)
}

func (e *DataQualityError) Unwrap() error {
	return e.Err
}

// NewDataQualityError wraps err for unit.
func NewDataQualityError(unit string, err error) error {
	return &DataQualityError{Unit: unit, Err: err}
}

// IsDataQuality reports whether err is a skippable data-quality condition.
func IsDataQuality(err error) bool {
	var dq *DataQualityError
	return errors.As(err, &dq)
}

// IsConfig reports whether err is a fatal configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
