package audio

// Output is the sound source behind one voice. Segment times are absolute
// timeline seconds. CancelScheduled drops all pending automation and holds
// the level the source had at time at.
type Output interface {
	SetFrequency(hz float64)
	SetGain(level float64)
	ScheduleRamp(s Segment)
	CancelScheduled(at float64)
}

type VoiceState int

const (
	Idle VoiceState = iota
	Sounding
	Releasing
)

func (s VoiceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sounding:
		return "sounding"
	case Releasing:
		return "releasing"
	}
	return "unknown"
}

// voice is one slot of the pool. Only the pool touches it.
type voice struct {
	id  int
	out Output

	key        int
	bound      bool
	pressedAt  float64
	releasedAt float64
	decaying   bool
	free       Timer

	params ADSR    // envelope the current note started with
	curve  Curve   // anchored at absolute time, nil when gain is manual
	gain   float64 // level outside of any curve
}

func (v *voice) state() VoiceState {
	switch {
	case !v.bound:
		return Idle
	case v.decaying:
		return Releasing
	default:
		return Sounding
	}
}

// amplitude estimates the level the output has at time now.
func (v *voice) amplitude(now float64) float64 {
	if v.curve == nil {
		return v.gain
	}
	return v.curve.At(now)
}

func (v *voice) startEnvelope(gen Generator, p ADSR, scale, now float64) {
	from := v.amplitude(now)
	v.cancel(now)
	v.params = p
	v.apply(gen.AttackFrom(p, scale, from).Shift(now))
}

func (v *voice) endEnvelope(gen Generator, now float64) {
	from := v.amplitude(now)
	v.cancel(now)
	v.apply(gen.Release(v.params, from).Shift(now))
}

func (v *voice) setFrequency(hz float64) {
	v.out.SetFrequency(hz)
}

func (v *voice) setGainImmediate(level, now float64) {
	v.cancel(now)
	v.gain = level
	v.out.SetGain(level)
}

// cancel freezes the voice at its current level and drops any automation.
func (v *voice) cancel(now float64) {
	v.gain = v.amplitude(now)
	v.curve = nil
	v.out.CancelScheduled(now)
}

func (v *voice) apply(c Curve) {
	v.curve = c
	for _, s := range c {
		v.out.ScheduleRamp(s)
	}
}

func (v *voice) stopFreeTimer() {
	if v.free != nil {
		v.free.Cancel()
		v.free = nil
	}
}
