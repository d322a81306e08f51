package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetVerbosity(t *testing.T) {
	defer Logger.SetLevel(logrus.InfoLevel)

	tests := []struct {
		level    int
		expected logrus.Level
	}{
		{level: 0, expected: logrus.InfoLevel},
		{level: 1, expected: logrus.DebugLevel},
		{level: 2, expected: logrus.InfoLevel},
		{level: 3, expected: logrus.DebugLevel},
	}

	for _, tt := range tests {
		SetVerbosity(tt.level)
		if got := Logger.GetLevel(); got != tt.expected {
			t.Errorf("SetVerbosity(%d) level = %v, want %v", tt.level, got, tt.expected)
		}
	}
}

func TestSetLogLevel_Invalid(t *testing.T) {
	if err := SetLogLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWithDevice(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	WithDevice("10.0.0.1").Info("connected")
	if !strings.Contains(buf.String(), "device=10.0.0.1") {
		t.Errorf("log line missing device field: %s", buf.String())
	}
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)
	defer SetFormat("text")

	if err := SetFormat("json"); err != nil {
		t.Fatalf("SetFormat(json) returned error: %v", err)
	}
	WithFields(logrus.Fields{"device": "sw1", "run_id": "r1"}).Info("inspected")
	if !strings.Contains(buf.String(), `"device":"sw1"`) || !strings.Contains(buf.String(), `"run_id":"r1"`) {
		t.Errorf("expected JSON fields, got: %s", buf.String())
	}

	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
