package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type logLevel int

const (
	logDebug logLevel = iota
	logInfo
	logWarn
	logError
)

// parseLogLevel accepts a level name or a numeric threshold (python-logging
// style, where <=10 is debug and <=30 is warn). Unrecognized values fall back
// to info.
func parseLogLevel(s string) logLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logDebug
	case "", "info":
		return logInfo
	case "warn", "warning":
		return logWarn
	case "error":
		return logError
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		switch {
		case n <= 10:
			return logDebug
		case n <= 20:
			return logInfo
		case n <= 30:
			return logWarn
		default:
			return logError
		}
	}
	return logInfo
}

var (
	debugTag = "debug"
	infoTag  = color.YellowString("info")
	warnTag  = color.New(color.Bold, color.FgBlue).Sprint("warning")
	errorTag = color.New(color.Bold, color.FgRed).Sprint("error")
)

// logger writes timestamped, level-filtered lines to a single destination.
// Child loggers share the destination and level but carry a dotted scope so
// lines can be traced back to the component that emitted them.
type logger struct {
	mu    *sync.Mutex
	out   io.Writer
	level logLevel
	scope string
}

func newLogger(level logLevel, out io.Writer) *logger {
	return &logger{mu: &sync.Mutex{}, out: out, level: level}
}

func (l *logger) child(scope string) *logger {
	c := *l
	if l.scope != "" {
		scope = l.scope + "." + scope
	}
	c.scope = scope
	return &c
}

func (l *logger) logf(lv logLevel, tag, format string, args ...any) {
	if lv < l.level {
		return
	}
	var scope string
	if l.scope != "" {
		scope = " [" + l.scope + "]"
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	fmt.Fprintf(l.out, "%s %s%s %s\n",
		time.Now().Format("2006-01-02 15:04:05"), tag, scope, msg)
	l.mu.Unlock()
}

func (l *logger) debugf(format string, args ...any) { l.logf(logDebug, debugTag, format, args...) }
func (l *logger) infof(format string, args ...any)  { l.logf(logInfo, infoTag, format, args...) }
func (l *logger) warnf(format string, args ...any)  { l.logf(logWarn, warnTag, format, args...) }
func (l *logger) errorf(format string, args ...any) { l.logf(logError, errorTag, format, args...) }
