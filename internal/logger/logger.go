package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog that carries the component,
// file and function names as attributes on every record.
type Logger struct {
	slog     *slog.Logger
	name     string
	file     string
	function string
}

func New(name string) Logger {
	return Logger{
		slog: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		name: name,
	}
}

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) attrs(args ...any) []any {
	out := []any{"component", l.name}
	if l.file != "" {
		out = append(out, "file", l.file)
	}
	if l.function != "" {
		out = append(out, "function", l.function)
	}
	return append(out, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, l.attrs(args...)...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, l.attrs(args...)...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, l.attrs(args...)...)
}

// Er logs an error without returning one.
func (l Logger) Er(msg string, err error, args ...any) {
	l.slog.Error(msg, l.attrs(append([]any{"error", err}, args...)...)...)
}

// Err logs an error and returns it wrapped with the message.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs a message as an error and returns a new error with that message.
func (l Logger) Error(msg string, args ...any) error {
	l.slog.Error(msg, l.attrs(args...)...)
	return fmt.Errorf("%s", msg)
}

// ErrMsg returns a new error with the message, logging it first.
func (l Logger) ErrMsg(msg string) error {
	return l.Error(msg)
}
