// Package logging provides the leveled process logger used by the l2
// daemons, backed by zap.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Writer struct {
	level  zap.AtomicLevel
	logger *zap.Logger
	name   string
}

func parseLevel(lvl string) (zapcore.Level, error) {
	var l zapcore.Level
	switch strings.ToLower(lvl) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "err", "alert":
		return zapcore.ErrorLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToLower(lvl))); err != nil {
		return l, fmt.Errorf("logging: unknown level %q", lvl)
	}
	return l, nil
}

// NewLogger creates a console logger for process name, tagging every entry
// with tag.
func NewLogger(name string, tag string, lvl string) (*Writer, error) {
	l, err := parseLevel(lvl)
	if err != nil {
		return nil, err
	}
	level := zap.NewAtomicLevelAt(l)
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.Development = false
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	z, err := cfg.Build(zap.Fields(zap.String("proc", name), zap.String("tag", tag)))
	if err != nil {
		return nil, err
	}
	return &Writer{level: level, logger: z, name: name}, nil
}

// NewNopLogger returns a Writer that discards everything.
func NewNopLogger() *Writer {
	return &Writer{level: zap.NewAtomicLevel(), logger: zap.NewNop()}
}

// NewWriter wraps an existing zap logger.
func NewWriter(z *zap.Logger) *Writer {
	return &Writer{level: zap.NewAtomicLevel(), logger: z}
}

func (w *Writer) SetLevel(lvl string) error {
	l, err := parseLevel(lvl)
	if err != nil {
		return err
	}
	w.level.SetLevel(l)
	return nil
}

func (w *Writer) Zap() *zap.Logger { return w.logger }

func (w *Writer) Sync() error { return w.logger.Sync() }

func (w *Writer) Info(msg string)    { w.logger.Info(strings.TrimRight(msg, "\n")) }
func (w *Writer) Debug(msg string)   { w.logger.Debug(strings.TrimRight(msg, "\n")) }
func (w *Writer) Warning(msg string) { w.logger.Warn(strings.TrimRight(msg, "\n")) }
func (w *Writer) Err(msg string)     { w.logger.Error(strings.TrimRight(msg, "\n")) }

// Alert logs at the highest non fatal level.
func (w *Writer) Alert(msg string) {
	w.logger.Error(strings.TrimRight(msg, "\n"), zap.Bool("alert", true))
}
