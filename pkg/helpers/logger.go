package helpers

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// appFieldHook stamps every entry with the service name so API and worker
// logs can share one sink.
type appFieldHook struct{ app string }

func (h appFieldHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appFieldHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["app"]; !ok {
		e.Data["app"] = h.app
	}
	return nil
}

// NewLogger creates a configured Logrus logger. Development gets debug-level
// text output, everything else info-level JSON. LOG_LEVEL overrides the level.
func NewLogger(appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); err == nil {
		logger.SetLevel(lvl)
	}
	logger.AddHook(appFieldHook{app: appName})
	logger.WithField("env", env).Info("logger initialized")
	return logger
}
