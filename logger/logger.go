package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a global variable that represents the logger instance.
var Logger *logrus.Logger

// Init initializes the logger by creating a new instance of logrus.Logger
func Init() {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		Logger.SetLevel(lvl)
	}
}
