package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrdg/polysynth/audio"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func main() {
	def := audio.DefaultConfig()
	var (
		voices    = flag.Int("voices", def.Voices, "number of voices")
		attack    = flag.Float64("attack", def.Envelope.AttackTime, "attack time in seconds")
		peak      = flag.Float64("peak", def.Envelope.AttackLevel, "level reached at the end of the attack (0-1)")
		decay     = flag.Float64("decay", def.Envelope.DecayTime, "decay time in seconds")
		sustain   = flag.Float64("sustain", def.Envelope.SustainLevel, "sustain level (0-1)")
		release   = flag.Float64("release", def.Envelope.ReleaseTime, "release time in seconds")
		headroom  = flag.Bool("headroom", def.Headroom, "divide note velocity by the number of voices")
		gate      = flag.Bool("gate", false, "switch notes on and off without an envelope")
		curve     = flag.String("curve", def.Shape.String(), "envelope curve: linear or exp")
		bendRange = flag.Float64("bend-range", def.BendRange, "pitch bend range in semitones")
		backend   = flag.String("backend", "portaudio", "audio output: portaudio or oto")
		midiIn    = flag.String("midi", "", "MIDI input port to listen on (a substring of its name is enough)")
		listMIDI  = flag.Bool("list-midi", false, "list MIDI input ports and exit")
		run       = flag.String("run", "", "file with commands to run at startup")
		render    = flag.String("render", "", "render the score to this WAV file and exit")
		score     = flag.String("score", "", "score file to play")
		monitor   = flag.Bool("monitor", false, "show the voice monitor instead of the prompt")
	)
	flag.Parse()

	if *listMIDI {
		defer drivers.Close()
		if err := listMIDIInputs(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	shape, err := audio.ParseShape(*curve)
	if err != nil {
		log.Fatal(err)
	}
	cfg := def
	cfg.Voices = *voices
	cfg.Envelope = audio.ADSR{
		AttackTime:   *attack,
		AttackLevel:  *peak,
		DecayTime:    *decay,
		SustainLevel: *sustain,
		ReleaseTime:  *release,
	}
	cfg.Shape = shape
	cfg.Headroom = *headroom
	cfg.Gate = *gate
	cfg.BendRange = *bendRange

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	env := newEnv(engine, os.Stdout)

	var sc *audio.Score
	if *score != "" {
		if sc, err = loadScore(*score); err != nil {
			log.Fatal(err)
		}
	}

	if *render != "" {
		if sc == nil {
			log.Fatal("-render needs a -score")
		}
		if *run != "" {
			if err := runScript(env, *run); err != nil {
				log.Fatal(err)
			}
		}
		if err := renderScore(engine, sc, *render); err != nil {
			log.Fatal(err)
		}
		return
	}

	sink := &audio.Sink{}
	if sc != nil {
		sink.AddTicker(audio.NewSequencer(sc, engine, engine.SampleRate()))
	}
	sink.AddSources(engine)

	out, err := newBackend(*backend, sink, engine.SampleRate())
	if err != nil {
		log.Fatal(err)
	}
	if err := out.Start(); err != nil {
		log.Fatal(err)
	}
	defer out.Stop()

	if *midiIn != "" {
		stop, err := listenMIDI(*midiIn, engine)
		if err != nil {
			log.Fatal(err)
		}
		defer stop()
	}

	if *run != "" {
		if err := runScript(env, *run); err != nil {
			log.Fatal(err)
		}
	}

	if *monitor {
		err = runMonitor(engine)
	} else {
		err = repl(env)
	}
	engine.AllNotesOff()
	if err != nil {
		fmt.Println(err)
	}
}

func newBackend(name string, sink *audio.Sink, sampleRate float64) (audio.Backend, error) {
	switch name {
	case "portaudio":
		return audio.NewPortAudio(sink, sampleRate)
	case "oto":
		return audio.NewOto(sink, sampleRate)
	}
	return nil, fmt.Errorf("unknown backend: %s", name)
}

// renderScore plays sc offline into a WAV file. The render runs until the
// last release has finished.
func renderScore(engine *audio.Engine, sc *audio.Score, file string) error {
	v, err := engine.Get(audio.PropEnvRelease)
	if err != nil {
		return err
	}
	seconds := sc.End() + v.(float64) + 0.1

	sink := &audio.Sink{}
	sink.AddTicker(audio.NewSequencer(sc, engine, engine.SampleRate()))
	sink.AddSources(engine)

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := audio.RenderWAV(f, sink, engine.SampleRate(), seconds); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("rendered %.2fs to %s", seconds, file)
	return nil
}
