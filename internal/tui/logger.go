package tui

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/fluxorio/todolist/pkg/core"
)

// LogOptions configures the diagnostics log of the terminal UI
type LogOptions struct {
	Debug     bool
	Formatter log.Formatter
}

// NewLogger returns a core.Logger writing leveled lines to w through
// charmbracelet/log. The terminal owns stdout, so w is usually a file.
func NewLogger(w io.Writer, opts LogOptions) core.Logger {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return &charmLogger{l: log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       opts.Formatter,
		ReportTimestamp: true,
		Prefix:          "todo-ui",
	})}
}

type charmLogger struct {
	l *log.Logger
}

func (c *charmLogger) Error(args ...interface{})                 { c.l.Error(fmt.Sprint(args...)) }
func (c *charmLogger) Errorf(format string, args ...interface{}) { c.l.Errorf(format, args...) }
func (c *charmLogger) Warn(args ...interface{})                  { c.l.Warn(fmt.Sprint(args...)) }
func (c *charmLogger) Warnf(format string, args ...interface{})  { c.l.Warnf(format, args...) }
func (c *charmLogger) Info(args ...interface{})                  { c.l.Info(fmt.Sprint(args...)) }
func (c *charmLogger) Infof(format string, args ...interface{})  { c.l.Infof(format, args...) }
func (c *charmLogger) Debug(args ...interface{})                 { c.l.Debug(fmt.Sprint(args...)) }
func (c *charmLogger) Debugf(format string, args ...interface{}) { c.l.Debugf(format, args...) }

func (c *charmLogger) WithFields(fields map[string]interface{}) core.Logger {
	if len(fields) == 0 {
		return c
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &charmLogger{l: c.l.With(kv...)}
}
