package logger

import (
	"fmt"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v3"
)

// Two loggers: the application logger writes to console and a rotating file,
// the cycle logger records every completed polling cycle as JSON to its own
// rotating file so past boards can be replayed offline.

type rotation struct {
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

var (
	once        sync.Once
	appLogger   *zap.Logger
	cycleLogger *zap.Logger
)

// Get returns the main application logger.
func Get() *zap.Logger {
	once.Do(initLoggers)
	return appLogger
}

// GetCycleLogger returns the JSON-only logger fed with each cycle's computed
// board and opportunities.
func GetCycleLogger() *zap.Logger {
	once.Do(initLoggers)
	return cycleLogger
}

func newLogger(cfg rotation, useConsole bool) (*zap.Logger, error) {
	fileHandler, err := lumberjack.New(
		lumberjack.WithFileName(cfg.Filename),
		lumberjack.WithMaxBytes(int64(cfg.MaxSize*1024*1024)),
		lumberjack.WithMaxBackups(cfg.MaxBackups),
		lumberjack.WithMaxDays(cfg.MaxAge),
		lumberjack.WithCompress(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file handler: %w", err)
	}

	logLevel := zap.NewAtomicLevelAt(levelFromEnv())

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "timestamp"
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(fileCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(fileEncoder, zapcore.AddSync(fileHandler), logLevel),
	}
	if useConsole {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), logLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func levelFromEnv() zapcore.Level {
	if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
		if parsed, err := zapcore.ParseLevel(levelEnv); err == nil {
			return parsed
		}
	}
	return zap.InfoLevel
}

func initLoggers() {
	var err error

	appLogger, err = newLogger(rotation{
		Filename:   "logs/app.log",
		MaxSize:    5,
		MaxBackups: 10,
		MaxAge:     14,
	}, true)
	if err != nil {
		log.Fatalf("failed to create app logger: %v", err)
	}

	cycleLogger, err = newLogger(rotation{
		Filename:   "logs/cycles.log",
		MaxSize:    5,
		MaxBackups: 10,
		MaxAge:     14,
	}, false)
	if err != nil {
		log.Fatalf("failed to create cycle logger: %v", err)
	}
}
