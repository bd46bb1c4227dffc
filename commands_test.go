package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/mrdg/polysynth/audio"
	"github.com/mrdg/polysynth/dub"
)

func newTestEngine(t *testing.T) *audio.Engine {
	t.Helper()
	cfg := audio.DefaultConfig()
	cfg.SampleRate = 1000
	cfg.Voices = 4
	engine, err := audio.NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func process(engine *audio.Engine) {
	engine.Process([][]float32{make([]float32, 64), make([]float32, 64)})
}

func boundKeys(snap audio.Snapshot) []int {
	var keys []int
	for _, v := range snap.Voices {
		if v.State == audio.Sounding {
			keys = append(keys, v.Key)
		}
	}
	return keys
}

func TestEvalNotes(t *testing.T) {
	engine := newTestEngine(t)
	env := newEnv(engine, &bytes.Buffer{})

	for _, line := range []string{"on 60", "on 64 90", "on 67; off 64"} {
		cmds, err := dub.ParseAll(line)
		if err != nil {
			t.Fatal(err)
		}
		for _, cmd := range cmds {
			if _, err := env.exec(cmd); err != nil {
				t.Fatalf("%s: %v", line, err)
			}
		}
	}
	process(engine)

	if want, got := []int{60, 67}, boundKeys(engine.Snapshot()); !reflect.DeepEqual(want, got) {
		t.Errorf("want sounding keys %v, got %v", want, got)
	}

	if _, err := env.eval("panic"); err != nil {
		t.Fatal(err)
	}
	process(engine)
	if got := boundKeys(engine.Snapshot()); len(got) != 0 {
		t.Errorf("expected no sounding voices after panic, got %v", got)
	}
}

func TestEvalBend(t *testing.T) {
	engine := newTestEngine(t)
	env := newEnv(engine, &bytes.Buffer{})
	if _, err := env.eval("bend 1"); err != nil {
		t.Fatal(err)
	}
	process(engine)
	if want, got := 2.0, engine.Snapshot().Bend; want != got {
		t.Errorf("want bend %v, got %v", want, got)
	}
	if _, err := env.eval("bend -1"); err != nil {
		t.Fatal(err)
	}
	process(engine)
	if want, got := -2.0, engine.Snapshot().Bend; want != got {
		t.Errorf("want bend %v, got %v", want, got)
	}
}

func TestEvalRawShortMessageIsIgnored(t *testing.T) {
	engine := newTestEngine(t)
	env := newEnv(engine, &bytes.Buffer{})
	for _, input := range []string{"raw 0xe0 0", "raw 0x90 60"} {
		if _, err := env.eval(input); err != nil {
			t.Fatal(err)
		}
	}
	process(engine)
	snap := engine.Snapshot()
	if want, got := 0.0, snap.Bend; want != got {
		t.Errorf("want bend %v, got %v", want, got)
	}
	if got := boundKeys(snap); len(got) != 0 {
		t.Errorf("expected no sounding voices, got %v", got)
	}
}

func TestEvalProps(t *testing.T) {
	engine := newTestEngine(t)
	env := newEnv(engine, &bytes.Buffer{})

	if _, err := env.eval("set env.attack 0.25"); err != nil {
		t.Fatal(err)
	}
	got, err := env.eval("get env.attack")
	if err != nil {
		t.Fatal(err)
	}
	if want := dub.Float(0.25); want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	if _, err := env.eval("set osc.wave square"); err != nil {
		t.Fatal(err)
	}
	if got, _ := env.eval("get osc.wave"); got != dub.String("square") {
		t.Errorf("want square, got %v", got)
	}

	if _, err := env.eval("preset pluck"); err != nil {
		t.Fatal(err)
	}
	if got, _ := env.eval("get env.sustain"); got != dub.Float(0) {
		t.Errorf("want sustain 0 after pluck preset, got %v", got)
	}
}

func TestEvalErrors(t *testing.T) {
	env := newEnv(newTestEngine(t), &bytes.Buffer{})
	for _, input := range []string{
		"",
		"nope",
		"on",
		"on 60 100 1",
		"on 128",
		"on 60 200",
		"on 60.5",
		"off",
		"bend 2",
		"raw 0x90 60 100 0",
		"raw 256",
		"set env.attack",
		"set env.attack -1",
		"set env.nope 1",
		"get nope",
		"preset nope",
		`load-wave "does/not/exist.wav"`,
		"voices 1",
	} {
		if _, err := env.eval(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}

func TestVoicesCommand(t *testing.T) {
	engine := newTestEngine(t)
	env := newEnv(engine, &bytes.Buffer{})
	env.eval("on 69")
	process(engine)

	result, err := env.eval("voices")
	if err != nil {
		t.Fatal(err)
	}
	table := string(result.(dub.String))
	if want, got := 5, len(strings.Split(table, "\n")); want != got {
		t.Errorf("want %d lines, got %d:\n%s", want, got, table)
	}
	if !strings.Contains(table, "A4") {
		t.Errorf("expected A4 in voice table:\n%s", table)
	}
}

func TestBendMessage(t *testing.T) {
	tests := []struct {
		amount float64
		want   []byte
	}{
		{0, []byte{0xe0, 0x00, 0x40}},
		{1, []byte{0xe0, 0x7f, 0x7f}},
		{-1, []byte{0xe0, 0x00, 0x00}},
	}
	for _, test := range tests {
		got, err := bendMessage(0, test.amount)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(test.want, got.Bytes()) {
			t.Errorf("bend %v: want % x, got % x", test.amount, test.want, got.Bytes())
		}
		if ev := audio.Decode(got); ev.Bend != test.amount {
			t.Errorf("bend %v decodes to %v", test.amount, ev.Bend)
		}
	}
}

func TestNoteMessages(t *testing.T) {
	on, err := noteOnMessage(2, 60, 100)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := (audio.Event{Kind: audio.NoteOn, Channel: 2, Key: 60, Velocity: 100}), audio.Decode(on); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	off, err := noteOffMessage(2, 60)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := (audio.Event{Kind: audio.NoteOff, Channel: 2, Key: 60}), audio.Decode(off); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}
