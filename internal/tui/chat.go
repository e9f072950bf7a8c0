package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"edututor/internal/domain"
	"edututor/internal/usecase"
)

// ChatPort is the TUI-facing subset of the chat use case.
type ChatPort interface {
	Ask(ctx context.Context, question string, mode domain.Mode, onDelta func(string)) (*usecase.Answer, error)
	History() ([]domain.Turn, error)
	ClearHistory() error
}

type deltaMsg string

type doneMsg struct {
	answer *usecase.Answer
	err    error
}

// Model is the Bubble Tea model for the interactive tutoring session.
type Model struct {
	chat    ChatPort
	input   textinput.Model
	vp      viewport.Model
	summary string

	transcript []string
	partial    string
	streaming  bool
	events     chan tea.Msg
	mode       domain.Mode
	status     string
	ready      bool
}

// New creates the chat model. The summary line describes the loaded
// index and is shown under the header.
func New(chat ChatPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	m := Model{
		chat:    chat,
		input:   ti,
		vp:      vp,
		summary: summary,
		mode:    domain.ModeConcise,
		status:  "Ready. Tab toggles concise/detailed, Ctrl+L clears history.",
	}

	// Earlier turns are replayed so a resumed session shows its context.
	if turns, err := chat.History(); err == nil {
		for _, t := range turns {
			m.transcript = append(m.transcript, renderTurn(t.Role, t.Text))
		}
	}
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// waitForEvent delivers the next streaming event from the answer
// goroutine.
func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-events }
}

func (m *Model) submit(question string) tea.Cmd {
	m.streaming = true
	m.partial = ""
	m.transcript = append(m.transcript, renderTurn(domain.RoleUser, question))
	m.status = "Thinking..."
	m.events = make(chan tea.Msg, 64)

	events := m.events
	chat := m.chat
	mode := m.mode
	go func() {
		answer, err := chat.Ask(context.Background(), question, mode, func(fragment string) {
			events <- deltaMsg(fragment)
		})
		events <- doneMsg{answer: answer, err: err}
	}()
	return waitForEvent(events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, spacer, input frame, status
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.vp.Width = maxInt(20, msg.Width)
		m.vp.Height = vh
		m.refresh()
		return m, nil

	case deltaMsg:
		m.partial += string(msg)
		m.refresh()
		return m, waitForEvent(m.events)

	case doneMsg:
		m.streaming = false
		text := m.partial
		m.partial = ""
		switch {
		case msg.err != nil:
			if msg.answer != nil {
				text = msg.answer.Text
			}
			m.transcript = append(m.transcript, renderTurn(domain.RoleAssistant, text))
			m.status = "Error: " + msg.err.Error()
		default:
			m.transcript = append(m.transcript, renderTurn(domain.RoleAssistant, text))
			m.status = statusLine(msg.answer, m.mode)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.streaming {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.submit(q)
		case "tab":
			if m.mode == domain.ModeConcise {
				m.mode = domain.ModeDetailed
			} else {
				m.mode = domain.ModeConcise
			}
			m.status = fmt.Sprintf("Mode: %s", m.mode)
			return m, nil
		case "ctrl+l":
			if m.streaming {
				return m, nil
			}
			if err := m.chat.ClearHistory(); err != nil {
				m.status = "Error: " + err.Error()
			} else {
				m.transcript = nil
				m.status = "History cleared."
			}
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("EduTutor")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	transcript := transcriptStyle.Render(m.vp.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	lines := make([]string, len(m.transcript))
	copy(lines, m.transcript)
	if m.streaming && m.partial != "" {
		lines = append(lines, renderTurn(domain.RoleAssistant, m.partial))
	}
	m.vp.SetContent(strings.Join(lines, "\n\n"))
	m.vp.GotoBottom()
}

func statusLine(answer *usecase.Answer, mode domain.Mode) string {
	if answer == nil {
		return fmt.Sprintf("Mode: %s", mode)
	}
	switch {
	case len(answer.Sources) > 0:
		return fmt.Sprintf("Sources: %s | Mode: %s", strings.Join(answer.Sources, ", "), mode)
	case len(answer.WebResults) > 0:
		return fmt.Sprintf("Answered from live web results | Mode: %s", mode)
	default:
		return fmt.Sprintf("No document context used | Mode: %s", mode)
	}
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func renderTurn(role domain.Role, text string) string {
	label := userStyle.Render("You")
	if role == domain.RoleAssistant {
		label = assistantStyle.Render("Tutor")
	}
	return label + "\n" + text
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
