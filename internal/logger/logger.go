// Package logger provides structured logging for the fleshring tools using
// zap. The engine packages never log; only the app surface does.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log *zap.Logger

// Sugar is the sugared logger for convenient logging.
var Sugar *zap.SugaredLogger

func init() {
	// Keep the globals safe to use before Init, as tests do.
	Log = zap.NewNop()
	Sugar = Log.Sugar()
}

// FileConfig holds rotating-file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default rotation settings for the given path.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init initializes the logger with the given level and optional rotating
// file output. An empty logFile logs to the console only.
func Init(level, logFile string) error {
	lvl := parseLevel(level)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			ConsoleSeparator: " ",
		}),
		zapcore.AddSync(os.Stdout),
		lvl,
	)
	cores := []zapcore.Core{consoleCore}
	if logFile != "" {
		fileCfg := DefaultFileConfig(logFile)
		fileWriter := &lumberjack.Logger{
			Filename:   fileCfg.Path,
			MaxSize:    fileCfg.MaxSizeMB,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAgeDays,
			Compress:   fileCfg.Compress,
			LocalTime:  true,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:          "time",
				LevelKey:         "level",
				MessageKey:       "msg",
				EncodeTime:       zapcore.ISO8601TimeEncoder,
				EncodeLevel:      zapcore.CapitalLevelEncoder,
				ConsoleSeparator: " ",
			}),
			zapcore.AddSync(fileWriter),
			lvl,
		)
		cores = append(cores, fileCore)
	}
	Log = zap.New(zapcore.NewTee(cores...))
	Sugar = Log.Sugar()
	return nil
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
