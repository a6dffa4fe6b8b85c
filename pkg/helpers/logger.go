package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger. Text output in development,
// JSON elsewhere; level falls back to debug in development and info otherwise
// when it does not parse.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if env == "development" {
		if err != nil {
			lvl = logrus.DebugLevel
		}
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		if err != nil {
			lvl = logrus.InfoLevel
		}
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(lvl)
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": lvl.String()}).Info("logger initialized")
	return logger
}

// LogError Convenience methods to keep a unified logging interface
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

func LogInfo(logger *logrus.Logger, msg string, fields logrus.Fields) {
	logger.WithFields(fields).Info(msg)
}
