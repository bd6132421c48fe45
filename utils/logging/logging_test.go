package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriterLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := NewWriter(zap.New(core))

	w.Info("info msg\n")
	w.Debug("debug msg")
	w.Warning("warn msg")
	w.Err("err msg")
	w.Alert("alert msg")

	entries := logs.AllUntimed()
	if len(entries) != 5 {
		t.Fatal("expected 5 entries got", len(entries))
	}
	if entries[0].Message != "info msg" {
		t.Errorf("trailing newline not trimmed: %q", entries[0].Message)
	}
	expected := []zapcore.Level{zapcore.InfoLevel, zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != expected[i] {
			t.Errorf("entry %d level %s expected %s", i, e.Level, expected[i])
		}
	}
	if len(logs.FilterField(zap.Bool("alert", true)).All()) != 1 {
		t.Error("alert entry not tagged")
	}
}

func TestParseLevel(t *testing.T) {
	for lvl, expected := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"err":     zapcore.ErrorLevel,
		"error":   zapcore.ErrorLevel,
		"alert":   zapcore.ErrorLevel,
	} {
		l, err := parseLevel(lvl)
		if err != nil || l != expected {
			t.Errorf("level %q parsed to %s err %v", lvl, l, err)
		}
	}
	if _, err := parseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerSetLevel(t *testing.T) {
	w, err := NewLogger("lldpd", "LLDP", "info")
	if err != nil {
		t.Fatal("failed to create logger", err)
	}
	if w.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled at info level")
	}
	if err := w.SetLevel("debug"); err != nil {
		t.Error(err)
	}
	if !w.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled after SetLevel")
	}
	if _, err := NewLogger("lldpd", "LLDP", "bogus"); err == nil {
		t.Error("expected error for bad level")
	}
}
