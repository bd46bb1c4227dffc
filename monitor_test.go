package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mrdg/polysynth/audio"
)

func press(m tea.Model, msg tea.KeyMsg) tea.Model {
	m, _ = m.Update(msg)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyToNote(t *testing.T) {
	tests := []struct {
		key    string
		octave int
		want   int
	}{
		{"z", 4, 60},
		{"s", 4, 61},
		{"q", 4, 72},
		{"p", 4, 88},
		{"z", 0, 12},
		{"p", 9, -1},
		{"a", 4, -1},
	}
	for _, test := range tests {
		if got := keyToNote(test.key, test.octave); got != test.want {
			t.Errorf("keyToNote(%q, %d): want %d, got %d", test.key, test.octave, test.want, got)
		}
	}
}

func TestMonitorTogglesNotes(t *testing.T) {
	engine := newTestEngine(t)
	var m tea.Model = newMonitor(engine)

	m = press(m, runes("z"))
	m = press(m, runes("c"))
	process(engine)
	m, _ = m.Update(tickMsg{})
	if got := boundKeys(m.(monitor).snap); len(got) != 2 || got[0] != 60 || got[1] != 64 {
		t.Fatalf("expected C4 and E4 sounding, got %v", got)
	}

	m = press(m, runes("z"))
	process(engine)
	m, _ = m.Update(tickMsg{})
	if got := boundKeys(m.(monitor).snap); len(got) != 1 || got[0] != 64 {
		t.Errorf("expected only E4 sounding, got %v", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	process(engine)
	if got := boundKeys(engine.Snapshot()); len(got) != 0 {
		t.Errorf("expected all notes off, got %v", got)
	}
	if len(m.(monitor).held) != 0 {
		t.Errorf("expected no held notes")
	}
}

func TestMonitorEditsEnvelope(t *testing.T) {
	engine := newTestEngine(t)
	var m tea.Model = newMonitor(engine)

	// attack is selected first
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	v, _ := engine.Get(audio.PropEnvAttack)
	if want, got := 0.03, v.(float64); !approxEqual(want, got) {
		t.Errorf("want attack %v, got %v", want, got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	for i := 0; i < 30; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	v, _ = engine.Get(audio.PropEnvSustain)
	if want, got := 1.0, v.(float64); !approxEqual(want, got) {
		t.Errorf("want sustain clamped to %v, got %v", want, got)
	}
	if m.View() == "" {
		t.Errorf("empty view")
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
