package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

const (
	blockSize         = 16 // this gives about 0.35ms accuracy for events
	DefaultSampleRate = 44100
	bufferSize        = 512
)

const (
	PropEnvAttack  = "env.attack"
	PropEnvPeak    = "env.peak"
	PropEnvDecay   = "env.decay"
	PropEnvSustain = "env.sustain"
	PropEnvRelease = "env.release"
	PropLevel      = "level"
	PropBendRange  = "bend.range"
	PropCutoff     = "cutoff"
	PropOscWave    = "osc.wave"
	PropOscTable   = "osc.table"
)

type Config struct {
	SampleRate float64
	Voices     int
	Envelope   ADSR
	Shape      Shape
	Headroom   bool
	Gate       bool
	BendRange  float64 // semitones
	Tuning     Tuning
}

func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		Voices:     8,
		Envelope: ADSR{
			AttackTime:   0.01,
			AttackLevel:  1,
			DecayTime:    0.2,
			SustainLevel: 0.6,
			ReleaseTime:  0.3,
		},
		Shape:     Linear,
		Headroom:  true,
		BendRange: 2,
		Tuning:    DefaultTuning,
	}
}

// Engine runs the voice pool on the audio thread. Messages from other
// goroutines reach it through Send; the UI reads state through Snapshot.
type Engine struct {
	*Props
	sampleRate float64
	timeline   *Timeline
	pool       *Pool
	interp     *Interpreter
	oscs       []*osc
	filter     *filter
	events     *eventBuffer
	sendMu     sync.Mutex
	buf        []float64
	frames     uint64 // frames rendered so far
	wave       string
	table      *Wavetable

	envAttack  *atomic.Value
	envPeak    *atomic.Value
	envDecay   *atomic.Value
	envSustain *atomic.Value
	envRelease *atomic.Value
	level      *atomic.Value
	bendRange  *atomic.Value
	cutoff     *atomic.Value
	oscWave    *atomic.Value
	oscTable   *atomic.Value

	allOff   atomic.Bool
	snapshot atomic.Value
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %v", cfg.SampleRate)
	}
	if cfg.Voices < 1 {
		return nil, fmt.Errorf("need at least one voice, got %d", cfg.Voices)
	}
	if err := cfg.Envelope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	env := cfg.Envelope.Clamp(1)
	props := NewProps()
	e := &Engine{
		Props:      props,
		sampleRate: cfg.SampleRate,
		timeline:   NewTimeline(),
		filter:     newFilter(cfg.SampleRate),
		events:     newEventBuffer(256),
		buf:        make([]float64, bufferSize),
	}
	var err error
	register := func(key string, set setter, init interface{}) *atomic.Value {
		if err != nil {
			return nil
		}
		var prop *atomic.Value
		prop, err = props.Register(key, set, init)
		return prop
	}
	e.envAttack = register(PropEnvAttack, setEnvTime, env.AttackTime)
	e.envPeak = register(PropEnvPeak, setEnvLevel, env.AttackLevel)
	e.envDecay = register(PropEnvDecay, setEnvTime, env.DecayTime)
	e.envSustain = register(PropEnvSustain, setEnvLevel, env.SustainLevel)
	e.envRelease = register(PropEnvRelease, setEnvTime, env.ReleaseTime)
	e.level = register(PropLevel, setLevel, 0.)
	e.bendRange = register(PropBendRange, setFloat64(0, 48), cfg.BendRange)
	e.cutoff = register(PropCutoff, setFloat64(20, cfg.SampleRate/2-1), math.Min(12_000, cfg.SampleRate/2-1))
	e.oscWave = register(PropOscWave, setWaveform, "saw")
	e.oscTable = register(PropOscTable, setWavetable, &Wavetable{})
	if err != nil {
		return nil, fmt.Errorf("register properties: %w", err)
	}

	outputs := make([]Output, cfg.Voices)
	for n := range outputs {
		o := newOsc(cfg.SampleRate)
		e.oscs = append(e.oscs, o)
		outputs[n] = o
	}
	e.pool = NewPool(PoolConfig{
		Envelope: env,
		Shape:    cfg.Shape,
		Tuning:   cfg.Tuning,
		Headroom: cfg.Headroom,
		Gate:     cfg.Gate,
	}, outputs, e.timeline, e.timeline)
	e.interp = NewInterpreter(e.pool, cfg.BendRange)
	e.snapshot.Store(e.pool.Snapshot())
	return e, nil
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Send queues a raw message for the audio thread. offset is the frame
// within the next processed buffer at which the message takes effect.
// Send may be called from any goroutine.
func (e *Engine) Send(offset int, msg []byte) {
	m := newMessage(offset, msg)
	e.sendMu.Lock()
	e.events.push(m)
	e.sendMu.Unlock()
}

// TrySend is Send without blocking. It reports false if the message could
// not be queued, either because the buffer is full or because another
// goroutine is sending. The audio thread uses it to feed itself.
func (e *Engine) TrySend(offset int, msg []byte) bool {
	if !e.sendMu.TryLock() {
		return false
	}
	defer e.sendMu.Unlock()
	return e.events.tryPush(newMessage(offset, msg))
}

func newMessage(offset int, msg []byte) message {
	var m message
	m.offset = offset
	m.n = uint8(copy(m.data[:], msg))
	return m
}

// AllNotesOff releases every voice at the start of the next buffer.
func (e *Engine) AllNotesOff() {
	e.allOff.Store(true)
}

// Snapshot returns the voice state as of the last processed buffer.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot.Load().(Snapshot)
}

func (e *Engine) Process(samples [][]float32) {
	frames := len(samples[0])
	if len(e.buf) < frames {
		e.buf = make([]float64, frames)
	}
	buf := e.buf[:frames]
	e.syncProps()
	if e.allOff.Swap(false) {
		e.pool.AllNotesOff()
	}

	for n := 0; n < frames; n += blockSize {
		end := min(n+blockSize, frames)
		t := e.time(n)
		e.timeline.Advance(t)
		e.events.iter(end, func(m message) {
			e.interp.HandleMessage(m.bytes())
		})
		for _, o := range e.oscs {
			o.process(buf[n:end], t)
		}
	}
	e.filter.process(buf)

	db := e.level.Load().(float64)
	gain := math.Pow(10, db/20.0)
	for n := range buf {
		sample := float32(gain * buf[n])
		for c := range samples {
			samples[c][n] += sample
		}
		buf[n] = 0
	}
	e.frames += uint64(frames)
	e.timeline.Advance(e.time(0))
	e.snapshot.Store(e.pool.Snapshot())
}

// time converts a frame offset in the current buffer to timeline seconds.
func (e *Engine) time(offset int) float64 {
	return float64(e.frames+uint64(offset)) / e.sampleRate
}

func (e *Engine) syncProps() {
	e.pool.SetEnvelope(ADSR{
		AttackTime:   e.envAttack.Load().(float64),
		AttackLevel:  e.envPeak.Load().(float64),
		DecayTime:    e.envDecay.Load().(float64),
		SustainLevel: e.envSustain.Load().(float64),
		ReleaseTime:  e.envRelease.Load().(float64),
	})
	e.interp.BendRange = e.bendRange.Load().(float64)
	e.filter.calculateCoefficients(e.cutoff.Load().(float64))
	wave := e.oscWave.Load().(string)
	table := e.oscTable.Load().(*Wavetable)
	if wave == e.wave && table == e.table {
		return
	}
	e.wave, e.table = wave, table
	for _, o := range e.oscs {
		o.setWaveform(wave, table)
	}
}
