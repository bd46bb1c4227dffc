package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrdg/polysynth/audio"
)

// envParam is one envelope property the monitor can edit.
type envParam struct {
	label string
	prop  string
	step  float64
	min   float64
	max   float64
}

var envParams = []envParam{
	{"attack", audio.PropEnvAttack, 0.01, 0, 30},
	{"peak", audio.PropEnvPeak, 0.05, 0, 1},
	{"decay", audio.PropEnvDecay, 0.01, 0, 30},
	{"sustain", audio.PropEnvSustain, 0.05, 0, 1},
	{"release", audio.PropEnvRelease, 0.01, 0, 30},
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	soundingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	releaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	meterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// monitor shows the voice pool and lets the computer keyboard play notes.
// Terminals do not report key releases, so a note key toggles its note.
type monitor struct {
	engine   *audio.Engine
	snap     audio.Snapshot
	octave   int
	velocity int
	selected int
	held     map[int]bool
	status   string
}

func newMonitor(engine *audio.Engine) monitor {
	return monitor{
		engine:   engine,
		snap:     engine.Snapshot(),
		octave:   4,
		velocity: defaultVelocity,
		held:     make(map[int]bool),
	}
}

func runMonitor(engine *audio.Engine) error {
	_, err := tea.NewProgram(newMonitor(engine), tea.WithAltScreen()).Run()
	return err
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m monitor) Init() tea.Cmd {
	return tickCmd()
}

func (m monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snap = m.engine.Snapshot()
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m monitor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		m.engine.AllNotesOff()
		return m, tea.Quit
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(envParams)-1 {
			m.selected++
		}
	case "left":
		m.adjust(-1)
	case "right":
		m.adjust(1)
	case "shift+left":
		m.adjust(-10)
	case "shift+right":
		m.adjust(10)
	case "*":
		if m.octave < 8 {
			m.octave++
		}
	case "/":
		if m.octave > 0 {
			m.octave--
		}
	case " ", "space":
		m.engine.AllNotesOff()
		m.held = make(map[int]bool)
		m.status = "all notes off"
	default:
		if note := keyToNote(key, m.octave); note >= 0 {
			m.toggle(note)
		}
	}
	return m, nil
}

func (m *monitor) adjust(steps float64) {
	p := envParams[m.selected]
	v, err := m.engine.Get(p.prop)
	if err != nil {
		m.status = err.Error()
		return
	}
	// keep the value on the step grid so repeated presses do not drift
	next := math.Round((v.(float64)+steps*p.step)/p.step) * p.step
	next = math.Max(p.min, math.Min(p.max, next))
	if err := m.engine.Set(p.prop, next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s = %.3f", p.label, next)
}

func (m *monitor) toggle(note int) {
	var (
		msg []byte
		err error
	)
	if m.held[note] {
		msg, err = noteOffMessage(0, note)
		delete(m.held, note)
	} else {
		msg, err = noteOnMessage(0, note, m.velocity)
		m.held[note] = true
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.engine.Send(0, msg)
}

// keyToNote maps a piano-style layout onto two octaves starting at octave.
func keyToNote(key string, octave int) int {
	notes := map[string]int{
		"z": 0, "s": 1, "x": 2, "d": 3, "c": 4, "v": 5,
		"g": 6, "b": 7, "h": 8, "n": 9, "j": 10, "m": 11,
		"q": 12, "2": 13, "w": 14, "3": 15, "e": 16, "r": 17,
		"5": 18, "t": 19, "6": 20, "y": 21, "7": 22, "u": 23,
		"i": 24, "9": 25, "o": 26, "0": 27, "p": 28,
	}
	n, ok := notes[key]
	if !ok {
		return -1
	}
	note := (octave+1)*12 + n
	if note > 127 {
		return -1
	}
	return note
}

func (m monitor) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("POLYSYNTH"))
	fmt.Fprintf(&b, "  t=%.1fs  octave %d  bend %+.2f\n\n", m.snap.Time, m.octave, m.snap.Bend)

	for n, p := range envParams {
		v, _ := m.engine.Get(p.prop)
		line := fmt.Sprintf("%-8s %7.3f", p.label, v)
		if n == m.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	for _, v := range m.snap.Voices {
		b.WriteString(m.voiceRow(v) + "\n")
	}

	b.WriteString("\n")
	if len(m.held) > 0 {
		var names []string
		for _, note := range sortedKeys(m.held) {
			names = append(names, noteName(note))
		}
		b.WriteString("held: " + strings.Join(names, " ") + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(dimStyle.Render("↑↓ select  ←→ adjust  z-m q-p play  * / octave  space all off  esc quit"))
	return b.String()
}

func (m monitor) voiceRow(v audio.VoiceInfo) string {
	state := fmt.Sprintf("%-9s", v.State)
	switch v.State {
	case audio.Sounding:
		state = soundingStyle.Render(state)
	case audio.Releasing:
		state = releaseStyle.Render(state)
	default:
		state = dimStyle.Render(state)
	}
	key := "  - "
	if v.Bound {
		key = fmt.Sprintf("%4s", noteName(v.Key))
	}
	return fmt.Sprintf("%2d %s %s %s", v.ID, state, key, meterStyle.Render(meter(v.Amplitude)))
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
