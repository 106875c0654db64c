package diagnostic

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal finding surfaced alongside a successful run.
// Warnings are values, never logged out-of-band, so the driver can
// return them deterministically.
type Warning struct {
	Message  string
	Location *SourceLocation
}

func (w Warning) String() string {
	if loc := w.Location.String(); loc != "" {
		return fmt.Sprintf("warning: %s (%s)", w.Message, loc)
	}
	return "warning: " + w.Message
}

// Collector accumulates warnings in emission order.
type Collector struct {
	warnings []Warning
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Warn records a warning. A nil collector discards it.
func (c *Collector) Warn(loc *SourceLocation, format string, args ...any) {
	if c == nil {
		return
	}
	c.warnings = append(c.warnings, Warning{
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Warnings returns all collected warnings in the order they were added.
func (c *Collector) Warnings() []Warning {
	if c == nil {
		return nil
	}
	return c.warnings
}

// Len returns the number of collected warnings.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.warnings)
}

// FormatAll formats all warnings as a multi-line string.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, w := range c.warnings {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
