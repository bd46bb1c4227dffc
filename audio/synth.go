package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	twoPi           = 2 * math.Pi
	numCoefficients = 5
)

// osc is the output stage of one voice. It renders a naive waveform and
// follows the gain automation the voice schedules on it.
type osc struct {
	sampleRate float64
	phase      float64
	phaseDelta float64
	freq       float64
	fn         func(float64) float64

	ramps []Segment
	hold  float64
}

func newOsc(sampleRate float64) *osc {
	o := &osc{
		sampleRate: sampleRate,
		ramps:      make([]Segment, 0, 4),
	}
	o.setWaveform("sine", nil)
	return o
}

func (o *osc) SetFrequency(hz float64) {
	o.freq = hz
	o.phaseDelta = hz * twoPi / o.sampleRate
}

func (o *osc) SetGain(level float64) {
	o.ramps = o.ramps[:0]
	o.hold = level
}

func (o *osc) ScheduleRamp(s Segment) {
	o.ramps = append(o.ramps, s)
}

func (o *osc) CancelScheduled(at float64) {
	o.hold = o.gain(at)
	o.ramps = o.ramps[:0]
}

func (o *osc) gain(t float64) float64 {
	if len(o.ramps) == 0 || t < o.ramps[0].Start {
		return o.hold
	}
	return Curve(o.ramps).At(t)
}

func (o *osc) silent(t float64) bool {
	if len(o.ramps) == 0 {
		return o.hold == 0
	}
	last := o.ramps[len(o.ramps)-1]
	return last.To == 0 && t >= last.End
}

// process adds the oscillator to buf. t is the time of the first sample.
func (o *osc) process(buf []float64, t float64) {
	if o.silent(t) {
		return
	}
	dt := 1 / o.sampleRate
	for n := range buf {
		buf[n] += o.fn(o.phase) * o.gain(t+float64(n)*dt)
		o.phase += o.phaseDelta
		if o.phase >= twoPi {
			o.phase -= twoPi
		}
	}
}

func (o *osc) setWaveform(s string, table *Wavetable) {
	switch s {
	case "sine":
		o.fn = math.Sin
	case "saw":
		o.fn = func(phase float64) float64 {
			return (2.0 * phase / twoPi) - 1.
		}
	case "square":
		o.fn = func(phase float64) float64 {
			if phase <= math.Pi {
				return 1.0
			}
			return -1.0
		}
	case "triangle":
		o.fn = func(phase float64) float64 {
			return 2*math.Abs(2*phase/twoPi-1) - 1
		}
	case "table":
		if table == nil || len(table.samples) == 0 {
			o.fn = math.Sin
			return
		}
		o.fn = table.lookup
	case "off":
		o.fn = func(_ float64) float64 { return 0 }
	}
}

func setWaveform(v interface{}, dest *atomic.Value) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("value is not a string: %v", v)
	}
	switch s {
	case "sine", "saw", "square", "triangle", "table", "off":
		dest.Store(s)
		return nil
	default:
		return fmt.Errorf("not a valid waveform type: %v", s)
	}
}

type filter struct {
	sampleRate   float64
	cutoff       float64
	coefficients []float64

	// state
	y1, y2 float64 // y[n-1] y[n-2]
}

func newFilter(sampleRate float64) *filter {
	return &filter{
		sampleRate:   sampleRate,
		coefficients: make([]float64, numCoefficients),
	}
}

// Lowpass filter based on https://www.w3.org/2011/audio/audio-eq-cookbook.html
func (f *filter) process(buf []float64) {
	c0 := f.coefficients[0]
	c1 := f.coefficients[1]
	c2 := f.coefficients[2]
	c3 := f.coefficients[3]
	c4 := f.coefficients[4]

	for n := range buf {
		in := buf[n]
		out := c0*in + f.y1
		buf[n] = out
		f.y1 = c1*in - c3*out + f.y2
		f.y2 = c2*in - c4*out
	}
}

func (f *filter) calculateCoefficients(freq float64) {
	if freq == f.cutoff {
		return
	}
	f.cutoff = freq
	omega := 2 * math.Pi * freq / f.sampleRate
	cos := math.Cos(omega)
	sin := math.Sin(omega)

	const q = 1 / math.Sqrt2
	alpha := sin / (2. * q)

	b0 := (1 - cos) / 2
	b1 := 1 - cos
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cos
	a2 := 1 - alpha

	f.coefficients[0] = b0 / a0
	f.coefficients[1] = b1 / a0
	f.coefficients[2] = b2 / a0
	f.coefficients[3] = a1 / a0
	f.coefficients[4] = a2 / a0
}
