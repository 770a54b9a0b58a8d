package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/config"
	"murmur/dictation"
)

type tickMsg time.Time

var (
	styleStatusRec   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleStatusWork  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	styleStatusIdle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleMeterOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleMeterOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	styleModeLine    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleTranscript  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	stylePartial     = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	styleErrorLine   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleHelp        = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	styleTitle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	styleNoSpeech    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	spinnerFrames    = []string{"|", "/", "-", "\\"}
)

type tuiModel struct {
	cfg     config.Config
	backend string

	state        dictation.State
	frame        int
	sessionStart time.Time
	level        float64
	peak         float64

	lastText   string
	partial    string
	noSpeech   bool
	lastErr    string
	injectedBy string
	sessions   int

	width, height int
}

func newTUIModel(cfg config.Config, backend string) tuiModel {
	return tuiModel{cfg: cfg, backend: backend, state: dictation.StateIdle}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case dictation.Event:
		return m.applyEvent(msg), nil
	}
	return m, nil
}

func (m tuiModel) applyEvent(ev dictation.Event) tuiModel {
	switch ev.Kind {
	case dictation.EventState:
		m.state = ev.State
		if ev.State == dictation.StateIdle || ev.State == dictation.StateError {
			m.level = 0
		}

	case dictation.EventSession:
		m.sessionStart = ev.Time
		m.level = 0
		m.peak = 0
		m.partial = ""
		m.lastErr = ""

	case dictation.EventLevel:
		m.level = m.level*0.6 + ev.Value*0.4
		if ev.Value > m.peak {
			m.peak = ev.Value
		}

	case dictation.EventPartial:
		m.partial = ev.Text

	case dictation.EventInjected:
		m.sessions++
		m.lastText = ev.Text
		m.injectedBy = ev.Strategy
		m.noSpeech = false
		m.partial = ""

	case dictation.EventNoSpeech:
		m.noSpeech = true
		m.partial = ""

	case dictation.EventFailure:
		m.partial = ""
		if ev.Err != nil {
			m.lastErr = ev.Err.Error()
		}
	}
	return m
}

func (m tuiModel) statusLine() string {
	switch m.state {
	case dictation.StateListening:
		elapsed := time.Since(m.sessionStart).Seconds()
		line := styleStatusRec.Render(fmt.Sprintf("● LISTENING %.1fs", elapsed))
		if elapsed > 1.0 && m.peak < m.cfg.Silence.Threshold*2 {
			line += styleErrorLine.Render("  no voice detected")
		}
		return line
	case dictation.StateDraining, dictation.StateTranscribing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		return styleStatusWork.Render(spin + " TRANSCRIBING")
	case dictation.StateInjecting:
		return styleStatusWork.Render("➤ TYPING")
	case dictation.StateError:
		return styleErrorLine.Render("✗ ERROR")
	default:
		return styleStatusIdle.Render("○ STANDBY")
	}
}

func (m tuiModel) meter() string {
	const cells = 24
	lit := int(m.level * 3 * cells)
	if lit > cells {
		lit = cells
	}
	var b strings.Builder
	for i := 0; i < cells; i++ {
		if i < lit {
			b.WriteString(styleMeterOn.Render("█"))
		} else {
			b.WriteString(styleMeterOff.Render("░"))
		}
	}
	return b.String()
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	wrapWidth := m.width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  "+m.statusLine())
	lines = append(lines, "  "+m.meter())
	lines = append(lines, "")

	mode := fmt.Sprintf("[%s | %s | %s]", m.backend, m.cfg.Buffer.Mode, m.cfg.Model.Format)
	lines = append(lines, "  "+styleModeLine.Render(mode))
	lines = append(lines, "")

	switch {
	case m.partial != "":
		lines = append(lines, "  "+styleTitle.Render("Transcribing..."))
		for _, l := range wrapText(m.partial, wrapWidth) {
			lines = append(lines, "  "+stylePartial.Render(l))
		}
	case m.noSpeech:
		lines = append(lines, "  "+styleNoSpeech.Render("(no speech detected)"))
	case m.lastText != "":
		title := fmt.Sprintf("Last transcription (#%d, via %s)", m.sessions, m.injectedBy)
		lines = append(lines, "  "+styleTitle.Render(title))
		for _, l := range wrapText(m.lastText, wrapWidth) {
			lines = append(lines, "  "+styleTranscript.Render(l))
		}
	default:
		lines = append(lines, "  "+styleStatusIdle.Render("No transcriptions yet"))
	}

	if m.lastErr != "" {
		lines = append(lines, "")
		for _, l := range wrapText(m.lastErr, wrapWidth) {
			lines = append(lines, "  "+styleErrorLine.Render(l))
		}
	}

	lines = append(lines, "")
	help := styleHelpKey.Render(m.cfg.Hotkeys.Toggle) + styleHelp.Render(" dictate  ") +
		styleHelpKey.Render(m.cfg.Hotkeys.CopyLast) + styleHelp.Render(" copy last  ") +
		styleHelpKey.Render("q") + styleHelp.Render(" quit")
	lines = append(lines, "  "+help)
	lines = append(lines, "  "+styleHelp.Render("murmur "+version))

	return strings.Join(lines, "\n")
}

// wrapText breaks text into lines no wider than width, on word boundaries
// where possible.
func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		if current.Len() == 0 {
			current.WriteString(word)
		} else if current.Len()+1+len(word) <= width {
			current.WriteString(" ")
			current.WriteString(word)
		} else {
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// runTUI owns the terminal until quit; machine events stream in via Send.
func runTUI(ctx context.Context, cancel context.CancelFunc, cfg config.Config, machine *dictation.Machine, backend string) {
	p := tea.NewProgram(newTUIModel(cfg, backend), tea.WithAltScreen())

	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Quit()
				return
			case ev := <-machine.Events():
				playCue(ev)
				p.Send(ev)
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
	}
	cancel()
}
