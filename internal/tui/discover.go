// Package tui renders live discovery progress as a Bubbletea view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dsmmcken/lsc/internal/discovery"
)

// RunFunc performs one full discovery, pushing progress through observer.
type RunFunc func(observer func(discovery.Event)) (*discovery.Credentials, error)

type eventMsg discovery.Event

type doneMsg struct {
	creds *discovery.Credentials
	err   error
}

type discoverKeyMap struct {
	Retry key.Binding
	Quit  key.Binding
}

func (k discoverKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Quit}
}

func (k discoverKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Retry, k.Quit}}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	credBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// DiscoverScreen shows the attempt/stage event stream while a discovery
// runs in the background, then the credential bundle or failure guidance.
type DiscoverScreen struct {
	keys      discoverKeyMap
	spinner   spinner.Model
	run       RunFunc
	events    chan discovery.Event
	lines     []string
	running   bool
	creds     *discovery.Credentials
	err       error
	showToken bool
}

func NewDiscoverScreen(run RunFunc, showToken bool) DiscoverScreen {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return DiscoverScreen{
		keys: discoverKeyMap{
			Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
			Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		spinner:   s,
		run:       run,
		events:    make(chan discovery.Event, 64),
		running:   true,
		showToken: showToken,
	}
}

func (m DiscoverScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start(), m.nextEvent())
}

// start launches the discovery in the command's goroutine. Events flow
// through the channel; the final outcome arrives as doneMsg. The observer
// is synchronous, so closing after run returns cannot race a send, and the
// close lets the outstanding nextEvent reader finish instead of leaking.
func (m DiscoverScreen) start() tea.Cmd {
	run, events := m.run, m.events
	return func() tea.Msg {
		creds, err := run(func(e discovery.Event) { events <- e })
		close(events)
		return doneMsg{creds: creds, err: err}
	}
}

func (m DiscoverScreen) nextEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func (m DiscoverScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Retry):
			if !m.running {
				m.running = true
				m.lines = nil
				m.creds = nil
				m.err = nil
				// The previous run's channel is closed; each run gets its own.
				m.events = make(chan discovery.Event, 64)
				return m, tea.Batch(m.spinner.Tick, m.start(), m.nextEvent())
			}
		}
		return m, nil

	case eventMsg:
		m.lines = append(m.lines, renderEvent(discovery.Event(msg)))
		return m, m.nextEvent()

	case doneMsg:
		m.running = false
		m.creds = msg.creds
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func renderEvent(e discovery.Event) string {
	label := fmt.Sprintf("attempt %d: %s", e.Attempt, e.Stage)
	if e.Detail != "" {
		label += " " + e.Detail
	}
	switch e.Stage {
	case discovery.StageSuccess:
		return okStyle.Render("✓ " + label)
	case discovery.StageRetry, discovery.StageGiveUp:
		return failStyle.Render(fmt.Sprintf("✗ %s (%s)", label, e.Reason))
	default:
		return stageStyle.Render("• " + label)
	}
}

func (m DiscoverScreen) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lsc — credential discovery"))
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case m.running:
		b.WriteString(m.spinner.View())
		b.WriteString(" discovering...\n")
	case m.creds != nil:
		token := "(hidden — run with --show-token)"
		if m.showToken {
			token = m.creds.Token
		}
		b.WriteString("\n")
		b.WriteString(credBoxStyle.Render(fmt.Sprintf(
			"extension port  %d\nconnect port    %d\ntoken           %s",
			m.creds.ExtensionPort, m.creds.ConnectPort, token)))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(failStyle.Render(m.err.Error()))
		if nf, ok := m.err.(*discovery.NotFoundError); ok && nf.Guidance != "" {
			b.WriteString("\n" + stageStyle.Render(nf.Guidance))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(stageStyle.Render("r retry · q quit"))
	b.WriteString("\n")
	return b.String()
}
