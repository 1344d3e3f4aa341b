package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields type alias for logrus.Fields.
type Fields = logrus.Fields

type Log struct {
	*logrus.Logger
}

var globalLogger *Log

func init() {
	globalLogger = newLogger()
}

func newLogger() *Log {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(levelStr)); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Log{Logger: logger}
}

func GetLogger() *Log {
	return globalLogger
}

// Configure applies the level and optional rotating log file. An empty file
// keeps stdout only.
func (l *Log) Configure(level, file string, maxSizeMB int) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	l.SetLevel(lvl)

	if file != "" {
		if maxSizeMB <= 0 {
			maxSizeMB = 100
		}
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: 5,
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}

	return nil
}

// WithComponent returns an entry tagged with the originating component.
func (l *Log) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}
