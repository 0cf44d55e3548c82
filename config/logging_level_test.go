package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/dwa/logging"
)

func TestLogSettings(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Cleanup(func() {
		InitLoggingSettings(logger, false)
	})

	InitLoggingSettings(logger, false)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	test.That(t, ApplyLogSettings(&Config{Debug: true}), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)

	test.That(t, ApplyLogSettings(&Config{}), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	// The command line flag wins over a file without debug.
	InitLoggingSettings(logger, true)
	test.That(t, ApplyLogSettings(&Config{}), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)
}

func TestApplyLogSettingsPatterns(t *testing.T) {
	logger := logging.NewTestLogger(t)
	InitLoggingSettings(logger, false)

	planner := logging.NewBlankLogger("dwatest.config.planner")
	logging.RegisterLogger("dwatest.config.planner", planner)

	err := ApplyLogSettings(&Config{Log: []logging.LoggerPatternConfig{{Pattern: "dwatest.config.*", Level: "warn"}}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, planner.GetLevel(), test.ShouldEqual, logging.WARN)

	err = ApplyLogSettings(&Config{Log: []logging.LoggerPatternConfig{{Pattern: "dwatest.config.*", Level: "loud"}}})
	test.That(t, err, test.ShouldNotBeNil)
}
