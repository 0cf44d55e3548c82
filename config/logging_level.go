package config

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.viam.com/dwa/logging"
)

var globalLogger struct {
	// Set once at startup.
	logger           logging.Logger
	cmdLineDebugFlag bool

	mu                  sync.Mutex
	fileConfigDebugFlag bool
}

// InitLoggingSettings initializes the global logging settings.
func InitLoggingSettings(logger logging.Logger, cmdLineDebugFlag bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	globalLogger.logger = logger
	globalLogger.cmdLineDebugFlag = cmdLineDebugFlag
	if cmdLineDebugFlag {
		logging.GlobalLogLevel.SetLevel(zapcore.DebugLevel)
	} else {
		logging.GlobalLogLevel.SetLevel(zapcore.InfoLevel)
	}
	logger.Debugw("log level initialized", "level", logging.GlobalLogLevel.Level().String())
}

// ApplyLogSettings applies the debug flag and logger level patterns of a loaded config. Either the
// command line or the file asking for debug output turns it on.
func ApplyLogSettings(cfg *Config) error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if globalLogger.logger == nil {
		globalLogger.logger = logging.Global()
	}
	globalLogger.fileConfigDebugFlag = cfg.Debug
	refreshLogLevelInLock()
	return logging.UpdateLoggerLevels(cfg.Log, globalLogger.logger)
}

func refreshLogLevelInLock() {
	newLevel := zap.InfoLevel
	if globalLogger.cmdLineDebugFlag || globalLogger.fileConfigDebugFlag {
		newLevel = zap.DebugLevel
	}

	if logging.GlobalLogLevel.Level() == newLevel {
		return
	}
	globalLogger.logger.Infow("new log level", "level", newLevel.String())
	logging.GlobalLogLevel.SetLevel(newLevel)
}
