package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "Resonance",
			CallerOffset:    1,
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel accepts debug, info, warn, error or fatal. Unknown values fall back to info.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger().SetLevel(lvl)
}

// SetOutput redirects every subsequent log line, mostly for tests.
func SetOutput(w io.Writer) {
	logger().SetOutput(w)
}

func Debug(msg string, args ...interface{}) {
	logger().Debugf(msg, args...)
}

func Info(msg string, args ...interface{}) {
	logger().Infof(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	logger().Warnf(msg, args...)
}

func Error(msg string, args ...interface{}) {
	logger().Errorf(msg, args...)
}

func Fatal(msg string, args ...interface{}) {
	logger().Fatalf(msg, args...)
}
