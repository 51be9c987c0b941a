package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	LogV2 *AppLogger
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	initLogger()
}

type AppLogger struct {
	*logrus.Logger
}

func (l *AppLogger) Infof(params ...interface{}) {
	strs := make([]string, len(params))

	for i, param := range params {
		strs[i] = fmt.Sprint(param)
	}

	l.Info(strings.Join(strs, ", "))
}

func (l *AppLogger) Debugf(params ...interface{}) {
	strs := make([]string, len(params))

	for i, param := range params {
		strs[i] = fmt.Sprint(param)
	}

	l.Debug(strings.Join(strs, ", "))
}

func (l *AppLogger) Errorf(params ...interface{}) {
	strs := make([]string, len(params))

	for i, param := range params {
		strs[i] = fmt.Sprint(param)
	}

	l.Error(strings.Join(strs, ", "))
}

func initLogger() {
	base := logrus.New()
	base.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	env := os.Getenv("DEVHUB_ENV")
	if len(env) == 0 {
		env = "unknown"
	}
	if env == "prod" {
		base.SetFormatter(&logrus.JSONFormatter{})
	}

	LogV2 = &AppLogger{
		base,
	}
}
