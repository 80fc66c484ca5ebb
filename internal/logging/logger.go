package logging

import (
	"os"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/grindlemire/go-track/internal/config"
)

// DebugEnv names the environment variable that, when set to a file path,
// appends debug-level logs to that file.
const DebugEnv = "TRACK_DEBUG"

// New builds a logger from cfg. Console output is written to console at the
// configured level; the optional file always receives JSON.
func New(cfg config.Logging, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, errors.Annotatef(err, "logging level %q", cfg.Level)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(), console, level),
	}

	file := cfg.File
	fileLevel := zapcore.LevelEnabler(level)
	if file == "" {
		if path := os.Getenv(DebugEnv); path != "" {
			file = path
			fileLevel = zap.DebugLevel
		}
	}
	if file != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(jsonEncoder(), writer, fileLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("track"), nil
}

// Default returns the logger used when the caller supplies none: warnings
// and above on stderr, plus TRACK_DEBUG file output when set.
func Default() *zap.Logger {
	l, err := New(config.Logging{Level: "warn", MaxSize: 10, MaxBackups: 3}, zapcore.Lock(os.Stderr))
	if err != nil {
		// The level above is a constant; this cannot fail.
		panic(err)
	}
	return l
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zapcore.NewConsoleEncoder(cfg)
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}
