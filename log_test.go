package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logLevel{
		"debug":   logDebug,
		"INFO":    logInfo,
		"warning": logWarn,
		"error":   logError,
		"":        logInfo,
		"10":      logDebug,
		"30":      logWarn,
		"50":      logError,
		"bogus":   logInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(logWarn, &buf)

	l.debugf("hidden")
	l.infof("hidden too")
	l.warnf("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-threshold lines leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestLoggerChildScope(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(logDebug, &buf).child("scheduler").child("task")

	l.infof("hello")

	if !strings.Contains(buf.String(), "[scheduler.task]") {
		t.Errorf("scope missing from output: %q", buf.String())
	}
}
