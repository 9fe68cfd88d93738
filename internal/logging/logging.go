// Package logging builds the zap logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when neither a level nor a verbosity is given.
const DefaultLevel = "info"

// levelByVerbosity maps --verbosity 0..4 to a level.
var levelByVerbosity = []zapcore.Level{
	zapcore.ErrorLevel,
	zapcore.DPanicLevel,
	zapcore.WarnLevel,
	zapcore.InfoLevel,
	zapcore.DebugLevel,
}

// MaxVerbosity is the highest accepted verbosity.
var MaxVerbosity = len(levelByVerbosity) - 1

// Options selects the logger level and format. Debug wins over Verbosity,
// which wins over Level.
type Options struct {
	Level     string
	Verbosity int // -1 when unset
	Debug     bool
	Output    io.Writer
}

// ResolveLevel picks the effective level from opts.
func ResolveLevel(opts Options) (zapcore.Level, error) {
	switch {
	case opts.Debug:
		if opts.Level != "" {
			return parseLevel(opts.Level)
		}
		return zapcore.DebugLevel, nil
	case opts.Verbosity >= 0:
		if opts.Verbosity > MaxVerbosity {
			return 0, fmt.Errorf("verbosity must be between 0 and %d, got %d", MaxVerbosity, opts.Verbosity)
		}
		return levelByVerbosity[opts.Verbosity], nil
	case opts.Level != "":
		return parseLevel(opts.Level)
	default:
		return parseLevel(DefaultLevel)
	}
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid logging level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger writing to opts.Output, or stderr. Debug mode uses the
// development encoder with caller information.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ResolveLevel(opts)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encCfg zapcore.EncoderConfig
	var zapOpts []zap.Option
	if opts.Debug {
		encCfg = zap.NewDevelopmentEncoderConfig()
		zapOpts = append(zapOpts, zap.AddCaller(), zap.Development())
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.TimeKey = ""
		encCfg.CallerKey = ""
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), lvl)
	return zap.New(core, zapOpts...).Named("eido"), nil
}
