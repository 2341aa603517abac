// Package log is the leveled, structured logger used across jp2mi. It wraps
// logrus so that callers only deal with F fields and a handful of level
// functions.
package log

import (
	"io"
	"os"
	"sync/atomic"

	"jp2mi/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single key/value pair attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F creates a field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled log lines with attached fields
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out  io.Writer
	json bool
	file string
}

// Option configures a Logger
type Option func(*options)

// WithOutput directs log output to w
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile tees log output into the named file in addition to the output writer
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// NewLogger creates a logger writing to stderr unless configured otherwise
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		})
	}

	l := &Logger{}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out = io.MultiWriter(o.out, f)
		} else {
			base.SetOutput(o.out)
			base.WithError(err).WithField("file", o.file).Warn("could not open log file")
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	prev := logger
	logger = NewLogger(opts...)
	prev.Close()
}

// SetOutput sends package-level log output to w
func SetOutput(w io.Writer) {
	Configure(WithOutput(w))
}

// Close releases the log file, if any
func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// SetDebug enables or disables debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// With returns a logger that attaches fields to every line
func (l *Logger) With(fields ...Field) *Logger {
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(lf), file: l.file}
}

// WithError attaches err together with its kind and its typed details
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

// Info logs an informational message
func (l *Logger) Info(msg string) { l.entry.Info(msg) }

// Infof logs a formatted informational message
func (l *Logger) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

// Warn logs a warning
func (l *Logger) Warn(msg string) { l.entry.Warn(msg) }

// Warnf logs a formatted warning
func (l *Logger) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

// Error logs an error message
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Debug logs only when debug output is enabled
func (l *Logger) Debug(msg string) {
	if isDebug.Load() {
		l.entry.Debug(msg)
	}
}

// Debugf logs a formatted message only when debug output is enabled
func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debugf(format, args...)
	}
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{
		F("error", err.Error()),
		F("error_kind", errors.KindOf(err).String()),
	}

	var (
		selErr    *errors.SelectionError
		fieldErr  *errors.FieldError
		cbErr     *errors.CodeblockError
		fileErr   *errors.FileError
		cfgErr    *errors.ConfigError
		launchErr *errors.LaunchError
	)
	switch {
	case errors.As(err, &selErr):
		fields = append(fields, F("group", selErr.Group()))
	case errors.As(err, &fieldErr):
		fields = append(fields, F("field", fieldErr.Field()))
	case errors.As(err, &cbErr):
		fields = append(fields, F("codeblock", cbErr.Value()))
	case errors.As(err, &launchErr):
		fields = append(fields, F("executable", launchErr.Executable()))
	case errors.As(err, &cfgErr):
		fields = append(fields, F("param", cfgErr.Param()))
	case errors.As(err, &fileErr):
		fields = append(fields, F("path", fileErr.Path()))
	}
	return fields
}

// LogWithFields returns the package logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger with err attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with a message
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}

func Info(msg string) {
	logger.Info(msg)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a debug message
func Debug(msg string) {
	logger.Debug(msg)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs a warning message
func Warn(msg string) {
	logger.Warn(msg)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs an error message
func Error(msg string) {
	logger.Error(msg)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
