package logging

import (
	"regexp"
	"sync"
)

// registration is a named logger and the logger it was derived from. Loggers registered directly
// have no parent.
type registration struct {
	logger Logger
	parent Logger
}

// Registry tracks named loggers so their levels can be changed from configuration after they were
// created.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]registration
	logConfig []compiledPattern
}

type compiledPattern struct {
	re    *regexp.Regexp
	level Level
}

var globalLoggerRegistry = newRegistry()

func newRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]registration),
	}
}

func (lr *Registry) registerLogger(name string, logger Logger) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = registration{logger: logger}
}

func (lr *Registry) loggerNamed(name string) (Logger, bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	reg, ok := lr.loggers[name]
	return reg.logger, ok
}

// levelForLocked returns the level of the last pattern matching `name`. Callers hold mu.
func (lr *Registry) levelForLocked(name string) (Level, bool) {
	var (
		level   Level
		matched bool
	)
	for _, p := range lr.logConfig {
		if p.re.MatchString(name) {
			level, matched = p.level, true
		}
	}
	return level, matched
}

func compilePatterns(logConfig []LoggerPatternConfig, errorLogger Logger) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		level, err := LevelFromString(lpc.Level)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{re: re, level: level})
	}
	return compiled, nil
}

// UpdateConfig replaces the pattern configuration and re-levels every registered logger. Loggers
// that match no pattern are set to INFO. Invalid patterns are skipped with a warning to
// `errorLogger`.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	compiled, err := compilePatterns(logConfig, errorLogger)
	if err != nil {
		return err
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = compiled
	for name, reg := range lr.loggers {
		level, ok := lr.levelForLocked(name)
		if !ok {
			level = INFO
		}
		reg.logger.SetLevel(level)
	}
	return nil
}

// getOrRegister returns the logger already registered under `name` when it was derived from the
// same `parent`, so concurrent callers share one logger. Otherwise `logger` takes the name, picks
// up the configured level and is returned. A logger derived from a different parent is stale: it
// still writes to the old parent's appenders.
func (lr *Registry) getOrRegister(name string, parent, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existing, ok := lr.loggers[name]; ok && existing.parent == parent {
		return existing.logger
	}

	lr.loggers[name] = registration{logger: logger, parent: parent}
	if level, ok := lr.levelForLocked(name); ok {
		logger.SetLevel(level)
	}
	return logger
}

// RegisterLogger registers a new logger with a given name, replacing any logger of that name.
func RegisterLogger(name string, logger Logger) {
	globalLoggerRegistry.registerLogger(name, logger)
}

// LoggerNamed returns logger with specified name if exists.
func LoggerNamed(name string) (logger Logger, ok bool) {
	return globalLoggerRegistry.loggerNamed(name)
}

// UpdateLoggerLevels applies the level patterns to every registered logger.
func UpdateLoggerLevels(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	return globalLoggerRegistry.UpdateConfig(logConfig, errorLogger)
}

// ValidatePatterns reports the patterns in `logConfig` that are not well formed logger names.
func ValidatePatterns(logConfig []LoggerPatternConfig) []string {
	var invalid []string
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			invalid = append(invalid, lpc.Pattern)
		}
	}
	return invalid
}

