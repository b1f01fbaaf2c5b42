// Package log writes the daily log file under where.Logs() through logrus.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

var discard = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// Setup opens today's log file when logs.write is set. Otherwise every entry is discarded.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("empty log directory")
	}

	path := filepath.Join(dir, time.Now().Format(time.DateOnly)+".log")
	file, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logrus.SetOutput(file)
	logrus.SetFormatter(formatter(viper.GetBool(key.LogsJson)))

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return nil
}

func formatter(json bool) logrus.Formatter {
	if json {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}

	return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
}

// Component returns an entry tagged with name. While logging is disabled the entry writes nowhere.
func Component(name string) *logrus.Entry {
	return base().WithField(FieldComponent, name)
}

func base() *logrus.Entry {
	if !enabled {
		return logrus.NewEntry(discard)
	}

	return logrus.NewEntry(logrus.StandardLogger())
}

func Error(args ...any) {
	base().Error(args...)
}

func Warnf(format string, args ...any) {
	base().Warnf(format, args...)
}

func Infof(format string, args ...any) {
	base().Infof(format, args...)
}

func Debugf(format string, args ...any) {
	base().Debugf(format, args...)
}
