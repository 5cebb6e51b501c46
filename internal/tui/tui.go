// Package tui provides a Bubble Tea terminal user interface for webpcbz.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"webpcbz/internal/config"
	"webpcbz/internal/convert"
	"webpcbz/internal/resolver"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FD4A3")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateConverting
	StateComplete
	StateError
)

// logBuffer collects pipeline events from worker goroutines; the UI copies
// the tail out on each tick.
type logBuffer struct {
	mu      sync.Mutex
	entries []convert.Event
}

func (b *logBuffer) add(ev convert.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, ev)
	if len(b.entries) > 200 {
		b.entries = b.entries[len(b.entries)-200:]
	}
}

func (b *logBuffer) tail(n int) []convert.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) > n {
		return append([]convert.Event(nil), b.entries[len(b.entries)-n:]...)
	}
	return append([]convert.Event(nil), b.entries...)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	textarea textarea.Model
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings

	pipeline *convert.Pipeline
	logs     *logBuffer
	visible  []convert.Event
	results  []convert.Result
	err      error

	done  int64
	total int64

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a new TUI model with persisted settings.
func NewModel() Model {
	ta := textarea.New()
	ta.Placeholder = "/path/to/image.png\n/path/to/folder\n/path/to/book.cbz"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(64)
	ta.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		settings = config.DefaultSettings()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		textarea: ta,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     &logBuffer{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Message types
type (
	// ConvertDoneMsg is sent when the batch finishes.
	ConvertDoneMsg struct {
		Results []convert.Result
		Err     error
	}

	// TickMsg drives progress and log refreshes while converting.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = clamp(msg.Width-20, 20, 80)
		m.textarea.SetWidth(clamp(msg.Width-10, 30, 100))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting {
				m.cancel()
			}

		case "ctrl+s":
			if m.state == StateInput {
				return m.startConversion()
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.settings.Lossless = !m.settings.Lossless
			}

		case "ctrl+b":
			if m.state == StateInput {
				m.settings.SaveAsCBZ = !m.settings.SaveAsCBZ
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.settings.ResizeEnabled = !m.settings.ResizeEnabled
			}

		case "ctrl+up":
			if m.state == StateInput && m.settings.Quality < 100 {
				m.settings.Quality += 5
				if m.settings.Quality > 100 {
					m.settings.Quality = 100
				}
			}

		case "ctrl+down":
			if m.state == StateInput && m.settings.Quality > 0 {
				m.settings.Quality -= 5
				if m.settings.Quality < 0 {
					m.settings.Quality = 0
				}
			}

		case "ctrl+e":
			if m.state == StateInput {
				m.settings.Effort = m.settings.Effort%6 + 1
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "n":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = &logBuffer{}
				m.visible = nil
				m.results = nil
				m.err = nil
				m.done, m.total = 0, 0
				m.pipeline = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textarea.SetValue("")
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ConvertDoneMsg:
		m.results = msg.Results
		m.visible = m.logs.tail(10)
		if m.pipeline != nil {
			m.done, m.total = m.pipeline.Progress()
		}
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.pipeline != nil && m.state == StateConverting {
			m.done, m.total = m.pipeline.Progress()
			m.visible = m.logs.tail(10)

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tick())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startConversion validates input and settings, then kicks off the batch on
// a background goroutine.
func (m Model) startConversion() (tea.Model, tea.Cmd) {
	items := resolver.Parse(m.textarea.Value())
	if len(items) == 0 {
		return m, nil
	}

	logs := m.logs
	pipeline, err := convert.NewPipeline(m.settings.ToPipelineConfig(), logs.add)
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	// Persist the knobs the same way the run will use them.
	if err := m.settings.Save(config.DefaultPath()); err != nil {
		logs.add(convert.Event{Message: "Could not save settings: " + err.Error(), Level: convert.LevelWarning})
	}

	m.pipeline = pipeline
	m.state = StateConverting
	m.textarea.Blur()

	ctx := m.ctx
	run := func() tea.Msg {
		results := pipeline.Run(ctx, items)
		return ConvertDoneMsg{Results: results}
	}
	return m, tea.Batch(run, m.tick(), m.spinner.Tick)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("webpcbz"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Convert images, folders and CBZ archives to WebP"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Paste paths below, one per line (files, folders or .cbz):"))
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")

	resize := "off"
	if m.settings.ResizeEnabled {
		resize = fmt.Sprintf("longest side ≤ %d px", m.settings.MaxSize)
	}
	b.WriteString(infoStyle.Render("Settings:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s quality %d (ctrl+↑/↓)\n", check(true), m.settings.Quality))
	b.WriteString(fmt.Sprintf("  %s lossless (ctrl+l)\n", check(m.settings.Lossless)))
	b.WriteString(fmt.Sprintf("  %s effort %d (ctrl+e)\n", check(true), m.settings.Effort))
	b.WriteString(fmt.Sprintf("  %s save folders as .cbz (ctrl+b)\n", check(m.settings.SaveAsCBZ)))
	b.WriteString(fmt.Sprintf("  %s resize: %s (ctrl+r)\n", check(m.settings.ResizeEnabled), resize))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewConverting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Converting..."))
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Images: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	successes, failures := 0, 0
	for _, r := range m.results {
		if r.OK() {
			successes++
		} else {
			failures++
		}
	}

	var sizes string
	if m.pipeline != nil {
		original, converted := m.pipeline.Totals()
		if original > 0 {
			sizes = fmt.Sprintf("\nSize: %.2f MB → %.2f MB (%.1f%%)",
				float64(original)/1024/1024,
				float64(converted)/1024/1024,
				float64(converted)/float64(original)*100)
		}
	}

	var b strings.Builder
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"Conversion complete\n\nSuccessful: %d\nFailed: %d%s",
		successes, failures, sizes)))
	b.WriteString("\n\n")
	b.WriteString(m.renderFailures())
	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderFailures())
	return b.String()
}

func (m Model) renderFailures() string {
	var b strings.Builder
	for _, r := range m.results {
		if r.OK() {
			continue
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", r.Input, r.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, ev := range m.visible {
		var style lipgloss.Style
		prefix := "•"
		switch ev.Level {
		case convert.LevelError:
			style = errorStyle
			prefix = "✗"
		case convert.LevelWarning:
			style = warningStyle
			prefix = "!"
		case convert.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case convert.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + ev.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "ctrl+s: convert • ctrl+l/b/r/e: toggles • ctrl+↑/↓: quality • esc: quit"
	case StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "n: new batch • q: quit"
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
