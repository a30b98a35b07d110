package logger

import (
	"os"

	"storefront/internal/config"

	"github.com/sirupsen/logrus"
)

// prod は JSON、それ以外はテキスト
func New(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.IsProd() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown LOG_LEVEL, falling back to info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
