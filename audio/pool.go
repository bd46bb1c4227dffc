package audio

import "log"

type PoolConfig struct {
	Envelope ADSR
	Shape    Shape
	Tuning   Tuning

	// Headroom divides every note's level by the pool size so that a full
	// pool cannot clip.
	Headroom bool

	// Gate disables the envelope: notes switch their gain on and off.
	Gate bool
}

// Pool binds notes to a fixed set of voices. It is not safe for concurrent
// use; the engine calls it from the audio thread only.
type Pool struct {
	voices []*voice
	clock  Clock
	timers Scheduler
	gen    Generator
	tuning Tuning
	params ADSR
	bend   float64 // semitones

	headroom bool
	gate     bool
}

func NewPool(cfg PoolConfig, outputs []Output, clock Clock, timers Scheduler) *Pool {
	if len(outputs) == 0 {
		panic("pool needs at least one voice")
	}
	p := &Pool{
		clock:    clock,
		timers:   timers,
		gen:      Generator{Shape: cfg.Shape, MaxAmplitude: 1},
		tuning:   cfg.Tuning,
		params:   cfg.Envelope,
		headroom: cfg.Headroom,
		gate:     cfg.Gate,
	}
	if p.tuning == (Tuning{}) {
		p.tuning = DefaultTuning
	}
	for i, out := range outputs {
		p.voices = append(p.voices, &voice{id: i, out: out})
	}
	return p
}

func (p *Pool) Size() int { return len(p.voices) }

// SetEnvelope replaces the envelope used by subsequent notes. Voices that are
// already playing keep the curve they were started with.
func (p *Pool) SetEnvelope(params ADSR) {
	p.params = params
}

func (p *Pool) Envelope() ADSR { return p.params }

// NoteOn binds key to a voice and starts it, stealing a voice if none is
// free. It never fails and returns the id of the chosen voice.
func (p *Pool) NoteOn(key, velocity int) int {
	now := p.clock.Now()
	v := p.pick(key)
	if v.state() == Sounding && v.key != key {
		log.Printf("pool: voice %d stolen from key %d for key %d", v.id, v.key, key)
	}
	v.stopFreeTimer()
	v.key = key
	v.bound = true
	v.decaying = false
	v.pressedAt = now
	v.setFrequency(p.frequency(key))

	scale := p.scale(velocity)
	if p.gate {
		v.setGainImmediate(scale, now)
	} else {
		v.startEnvelope(p.gen, p.params, scale, now)
	}
	return v.id
}

// pick chooses the voice for a new note: a voice already playing the key,
// then an idle voice, then the voice released longest ago, then the voice
// pressed longest ago.
func (p *Pool) pick(key int) *voice {
	var (
		same      *voice
		idle      *voice
		releasing *voice
		sounding  *voice
	)
	for _, v := range p.voices {
		switch v.state() {
		case Idle:
			if idle == nil {
				idle = v
			}
		case Releasing:
			if v.key == key && (same == nil || same.decaying && v.releasedAt > same.releasedAt) {
				same = v
			}
			if releasing == nil || v.releasedAt < releasing.releasedAt {
				releasing = v
			}
		case Sounding:
			if v.key == key && (same == nil || same.decaying || v.pressedAt > same.pressedAt) {
				same = v
			}
			if sounding == nil || v.pressedAt < sounding.pressedAt {
				sounding = v
			}
		}
	}
	switch {
	case same != nil:
		return same
	case idle != nil:
		return idle
	case releasing != nil:
		return releasing
	default:
		return sounding
	}
}

// NoteOff releases the most recently pressed sounding voice bound to key.
// Keys without a sounding voice are ignored.
func (p *Pool) NoteOff(key int) {
	var v *voice
	for _, candidate := range p.voices {
		if candidate.state() != Sounding || candidate.key != key {
			continue
		}
		if v == nil || candidate.pressedAt > v.pressedAt {
			v = candidate
		}
	}
	if v == nil {
		return
	}
	p.release(v)
}

// AllNotesOff releases every sounding voice.
func (p *Pool) AllNotesOff() {
	for _, v := range p.voices {
		if v.state() == Sounding {
			p.release(v)
		}
	}
}

func (p *Pool) release(v *voice) {
	now := p.clock.Now()
	if p.gate {
		v.setGainImmediate(0, now)
		v.bound = false
		return
	}
	v.decaying = true
	v.releasedAt = now
	v.endEnvelope(p.gen, now)

	v.stopFreeTimer()
	var t Timer
	t = p.timers.After(v.params.ReleaseTime, func() {
		if v.free != t {
			return
		}
		p.free(v)
	})
	v.free = t
}

func (p *Pool) free(v *voice) {
	v.free = nil
	v.bound = false
	v.decaying = false
	v.setGainImmediate(0, p.clock.Now())
}

// PitchBend sets the bend offset and retunes every voice that is bound to a
// key, including voices that are releasing.
func (p *Pool) PitchBend(semitones float64) {
	p.bend = semitones
	for _, v := range p.voices {
		if v.bound {
			v.setFrequency(p.frequency(v.key))
		}
	}
}

func (p *Pool) Bend() float64 { return p.bend }

func (p *Pool) frequency(key int) float64 {
	return p.tuning.Frequency(float64(key) + p.bend)
}

func (p *Pool) scale(velocity int) float64 {
	s := clamp(float64(velocity)/127, 0, 1)
	if p.headroom {
		s /= float64(len(p.voices))
	}
	return s
}

// VoiceInfo is a read-only view of a voice.
type VoiceInfo struct {
	ID        int
	Key       int
	Bound     bool
	Decaying  bool
	State     VoiceState
	Amplitude float64
	Phases    Curve // envelope segments in timeline seconds
}

type Snapshot struct {
	Time     float64
	Envelope ADSR
	Bend     float64
	Voices   []VoiceInfo
}

func (p *Pool) Snapshot() Snapshot {
	now := p.clock.Now()
	s := Snapshot{
		Time:     now,
		Envelope: p.params,
		Bend:     p.bend,
		Voices:   make([]VoiceInfo, len(p.voices)),
	}
	for i, v := range p.voices {
		info := VoiceInfo{
			ID:        v.id,
			Bound:     v.bound,
			Decaying:  v.decaying,
			State:     v.state(),
			Amplitude: v.amplitude(now),
		}
		if v.bound {
			info.Key = v.key
		}
		if v.curve != nil {
			info.Phases = append(Curve(nil), v.curve...)
		}
		s.Voices[i] = info
	}
	return s
}
