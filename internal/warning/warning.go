// Package warning collects the non-fatal anomalies found during a
// conversion. A warning never stops the pipeline; it is reported with the
// source line it came from once the output has been written.
package warning

import (
	"fmt"
	"log/slog"
)

// Warning is one recoverable anomaly.
type Warning struct {
	Line    int    // 1-based source line or paragraph number, 0 if unknown
	Source  string // offending source text, may be empty
	Message string
}

func (w Warning) String() string {
	if w.Line <= 0 {
		return "warning: " + w.Message
	}
	if w.Source == "" {
		return fmt.Sprintf("warning: %s (line %d)", w.Message, w.Line)
	}
	return fmt.Sprintf("warning: %s (line %d) %s", w.Message, w.Line, w.Source)
}

// Collector accumulates warnings for one conversion run. The zero value is
// ready to use; a nil *Collector discards everything.
type Collector struct {
	items  []Warning
	logger *slog.Logger
}

// NewCollector returns a Collector that also logs every warning at Warn
// level when logger is non-nil.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Add records a warning.
func (c *Collector) Add(line int, source, format string, args ...any) {
	if c == nil {
		return
	}
	w := Warning{Line: line, Source: source, Message: fmt.Sprintf(format, args...)}
	c.items = append(c.items, w)
	if c.logger != nil {
		c.logger.Warn(w.Message, "line", w.Line)
	}
}

// Len returns the number of recorded warnings.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// All returns a copy of the recorded warnings in insertion order.
func (c *Collector) All() []Warning {
	if c == nil {
		return nil
	}
	out := make([]Warning, len(c.items))
	copy(out, c.items)
	return out
}

// At returns a Reporter bound to one source location.
func (c *Collector) At(line int, source string) Reporter {
	return Reporter{c: c, line: line, source: source}
}

// Reporter adds warnings for a fixed source location.
type Reporter struct {
	c      *Collector
	line   int
	source string
}

// Warn records a warning at the reporter's location.
func (r Reporter) Warn(format string, args ...any) {
	r.c.Add(r.line, r.source, format, args...)
}

// Line returns the bound source line.
func (r Reporter) Line() int { return r.line }
