// Package logger builds the process-wide zap logger.
//
// Events are JSON encoded. With a file path they go to a lumberjack-rotated
// file and, when running in a TTY, are teed to stdout in console format.
// Without a file path they go to stdout only.
package logger

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a *zap.SugaredLogger at the given level and installs it as
// the global logger via zap.ReplaceGlobals.
func New(level, file string, tee bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores  []zapcore.Core
		errOut zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	)

	if file != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, lvl))
		errOut = fileSink
	}

	switch {
	case file == "":
		enc := zapcore.NewJSONEncoder(encCfg)
		if tee {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl))
	case tee:
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), lvl))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(errOut),
	)
	zap.ReplaceGlobals(z)

	s := z.Sugar()
	s.Debugw("logger online", "level", lvl.String(), "file", file, "tee", tee)
	return s, nil
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
