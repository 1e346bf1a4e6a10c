package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dsmmcken/lsc/internal/discovery"
)

func TestDiscoverScreen_EventChannelDrainsAfterDone(t *testing.T) {
	run := func(observer func(discovery.Event)) (*discovery.Credentials, error) {
		observer(discovery.Event{Attempt: 1, Stage: discovery.StageLocate})
		observer(discovery.Event{Attempt: 1, Stage: discovery.StageSuccess})
		return &discovery.Credentials{ExtensionPort: 1, ConnectPort: 1, Token: "t"}, nil
	}
	m := NewDiscoverScreen(run, false)

	if msg, ok := m.start()().(doneMsg); !ok || msg.creds == nil {
		t.Fatalf("start() = %#v, want doneMsg with credentials", msg)
	}

	// Buffered events are still delivered after the run closes the channel,
	// and the reader then gets a nil message instead of blocking forever.
	first, ok := m.nextEvent()().(eventMsg)
	if !ok || first.Stage != discovery.StageLocate {
		t.Fatalf("first event = %#v", first)
	}
	second, ok := m.nextEvent()().(eventMsg)
	if !ok || second.Stage != discovery.StageSuccess {
		t.Fatalf("second event = %#v", second)
	}
	if msg := m.nextEvent()(); msg != nil {
		t.Errorf("drained channel returned %#v, want nil", msg)
	}
}

func TestDiscoverScreen_RetryUsesFreshChannel(t *testing.T) {
	run := func(observer func(discovery.Event)) (*discovery.Credentials, error) {
		return nil, &discovery.NotFoundError{Attempts: 1, LastReason: discovery.ReasonProcessNotFound}
	}
	m := NewDiscoverScreen(run, false)
	m.start()() // closes the first run's channel
	old := m.events

	updated, _ := m.Update(doneMsg{err: &discovery.NotFoundError{Attempts: 1}})
	m = updated.(DiscoverScreen)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(DiscoverScreen)

	if m.events == old {
		t.Error("retry reused the closed event channel")
	}
	if !m.running {
		t.Error("retry did not restart the run")
	}
}
