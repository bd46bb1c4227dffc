package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrdg/polysynth/audio"
)

const meterWidth = 20

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// renderVoices writes one row per voice: id, state, key and a level meter.
func renderVoices(snap audio.Snapshot, w io.Writer) {
	env := snap.Envelope
	fmt.Fprintf(w, "t=%.2fs  A %.3fs → %.2f  D %.3fs  S %.2f  R %.3fs  bend %+.2f\n",
		snap.Time, env.AttackTime, env.AttackLevel, env.DecayTime, env.SustainLevel,
		env.ReleaseTime, snap.Bend)

	for _, v := range snap.Voices {
		id := colorize(fmt.Sprintf("%2d", v.ID), colorMagenta)
		key := "  - "
		if v.Bound {
			key = fmt.Sprintf("%4s", noteName(v.Key))
		}
		fmt.Fprintf(w, "%s %s %s %s\n", id, stateLabel(v.State), key, meter(v.Amplitude))
	}
}

func stateLabel(s audio.VoiceState) string {
	label := fmt.Sprintf("%-9s", s)
	switch s {
	case audio.Sounding:
		return colorize(label, colorGreen)
	case audio.Releasing:
		return colorize(label, colorYellow)
	}
	return colorize(label, colorBlue)
}

func meter(amp float64) string {
	n := int(amp*meterWidth + 0.5)
	if n > meterWidth {
		n = meterWidth
	}
	if n < 0 {
		n = 0
	}
	return "▕" + strings.Repeat("█", n) + strings.Repeat(" ", meterWidth-n) + "▏"
}

// noteName returns the name of a note number with middle C as C4.
func noteName(key int) string {
	if key < 0 {
		return "-"
	}
	return fmt.Sprintf("%s%d", noteNames[key%12], key/12-1)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
