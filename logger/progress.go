package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressBar renders a single-line terminal progress bar. Safe for
// concurrent Increment calls from worker goroutines.
type ProgressBar struct {
	mu       sync.Mutex
	label    string
	total    int64
	current  int64
	width    int
	started  time.Time
	finished bool
}

func NewProgressBar(total int64, label string) *ProgressBar {
	return &ProgressBar{
		label:   label,
		total:   total,
		width:   40,
		started: time.Now(),
	}
}

func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

func (p *ProgressBar) Set(value int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = value
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

func (p *ProgressBar) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.current = p.total
	p.render()
	p.finished = true
	fmt.Fprintln(os.Stdout)
}

func (p *ProgressBar) render() {
	if p.finished || p.total <= 0 {
		return
	}

	frac := float64(p.current) / float64(p.total)
	filled := int(frac * float64(p.width))

	elapsed := time.Since(p.started)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}
	var eta time.Duration
	if p.current > 0 {
		eta = time.Duration(float64(elapsed) * float64(p.total-p.current) / float64(p.current))
	}

	fmt.Fprintf(os.Stdout, "\r%s [%s%s] %d/%d (%.1f/s) ETA %s ",
		p.label,
		strings.Repeat("=", filled),
		strings.Repeat("-", p.width-filled),
		p.current, p.total, rate, shortDuration(eta))
}

func shortDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
