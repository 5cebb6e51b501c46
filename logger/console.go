// Package logger provides the console output stack for webpcbz: a slog
// handler for plain lines plus progress bars, spinners, tables and timers
// for batch feedback.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

type Console struct {
	Logger    *slog.Logger
	Colorized bool
}

func NewConsole(opts *Options) *Console {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Console{
		Logger:    NewLogger(opts),
		Colorized: opts.EnableColors,
	}
}

func (c *Console) paint(color, msg string) string {
	if !c.Colorized {
		return msg
	}
	return color + msg + Reset
}

func (c *Console) Success(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Green+Bold, "✓ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Info(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Blue, "• "+fmt.Sprintf(format, args...)))
}

func (c *Console) Log(format string, args ...interface{}) {
	c.Logger.Info(fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.Logger.Warn(c.paint(Yellow+Bold, "! "+fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...interface{}) {
	c.Logger.Error(c.paint(Red+Bold, "✗ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Fatal(format string, args ...interface{}) {
	c.Logger.Error(c.paint(BgRed+White+Bold, fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func (c *Console) StartTimer(name string) *Timer {
	return &Timer{Name: name, StartTime: time.Now(), Console: c}
}

func (c *Console) StartSpinner(message string) *Spinner {
	s := &Spinner{
		Message: message,
		Console: c,
		done:    make(chan struct{}),
	}
	s.start()
	return s
}

func (c *Console) NewProgressBar(total int64, label string) *ProgressBar {
	return NewProgressBar(total, label)
}

func (c *Console) NewTable(headers ...string) *Table {
	return NewTable(headers)
}
