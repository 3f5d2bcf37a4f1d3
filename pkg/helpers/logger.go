package helpers

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LoggerOption func(*logrus.Logger)

// WithLevel overrides the env default. Unknown or empty names are ignored.
func WithLevel(name string) LoggerOption {
	return func(l *logrus.Logger) {
		if lvl, err := logrus.ParseLevel(strings.TrimSpace(name)); err == nil && name != "" {
			l.SetLevel(lvl)
		}
	}
}

// appHook stamps every entry with the process name so API, worker and
// janitor logs can share a sink.
type appHook struct{ app string }

func (h appHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["app"]; !ok {
		e.Data["app"] = h.app
	}
	return nil
}

// NewLogger creates a configured Logrus logger: text at debug level in
// development, JSON at info level elsewhere.
func NewLogger(appName, env string, opts ...LoggerOption) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	for _, opt := range opts {
		opt(logger)
	}
	logger.AddHook(appHook{app: appName})
	logger.WithFields(logrus.Fields{"env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}

// LogError logs msg with fields and the error message under "error".
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

func LogInfo(logger logrus.FieldLogger, msg string, fields logrus.Fields) {
	logger.WithFields(fields).Info(msg)
}
