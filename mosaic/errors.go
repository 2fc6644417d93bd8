package mosaic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("malformed pixel buffer")
)

// ConfigError reports an invalid input parameter, such as a zero seed count
// or an empty grid. It matches ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Param  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Param, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func mustBePositive(param string, v int) error {
	if v < 1 {
		return &ConfigError{Param: param, Value: v, Reason: "must be at least 1"}
	}
	return nil
}

// FormatError reports a raw pixel buffer that doesn't hold exactly three
// 8-bit channels per pixel. It matches ErrFormat with errors.Is.
type FormatError struct {
	Channels int
	Len      int // Length of the buffer that was passed
	Want     int // Expected length, 0 if the channel count was already wrong
}

func (e *FormatError) Error() string {
	if e.Channels != Channels {
		return fmt.Sprintf("buffer has %d channels, need %d", e.Channels, Channels)
	}
	return fmt.Sprintf("buffer is %d bytes, need %d", e.Len, e.Want)
}

func (e *FormatError) Unwrap() error { return ErrFormat }
