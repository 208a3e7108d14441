// Package logging builds the zap loggers used by the starksign binary.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name (debug, info, warn, error) to a zap level.
// The empty string means info.
func ParseLevel(name string) (zapcore.Level, error) {
	var level zapcore.Level
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", name)
	}
	return level, nil
}

// New returns a console logger writing to stderr at the named level.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a console logger writing to w.
func NewWithWriter(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), lvl)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
