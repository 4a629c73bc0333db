package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("should be filtered")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("info message was not filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn message missing: %s", out)
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("verbose", &buf)
	log.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected info logging at unknown level")
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewText("info", &buf)
	log.Info("text message", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "key=value") {
		t.Fatalf("expected text key=value formatting: %s", out)
	}
}
