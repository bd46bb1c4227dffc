package audio

import (
	"fmt"
	"math"
)

// ADSR holds the envelope configuration for a note. Times are in seconds,
// levels are linear gain.
type ADSR struct {
	AttackTime   float64
	AttackLevel  float64
	DecayTime    float64
	SustainLevel float64
	ReleaseTime  float64
}

func (p ADSR) Validate() error {
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"attack", p.AttackTime},
		{"decay", p.DecayTime},
		{"release", p.ReleaseTime},
	} {
		if t.v < 0 || math.IsNaN(t.v) || math.IsInf(t.v, 0) {
			return fmt.Errorf("%s time must be a non-negative number: %v", t.name, t.v)
		}
	}
	return nil
}

// Clamp limits both levels to [0, max].
func (p ADSR) Clamp(max float64) ADSR {
	p.AttackLevel = clamp(p.AttackLevel, 0, max)
	p.SustainLevel = clamp(p.SustainLevel, 0, max)
	return p
}

// Shape selects how a segment moves between its levels.
type Shape int

const (
	Linear Shape = iota
	Exponential
)

func (s Shape) String() string {
	switch s {
	case Linear:
		return "linear"
	case Exponential:
		return "exp"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

func ParseShape(s string) (Shape, error) {
	switch s {
	case "linear", "lin":
		return Linear, nil
	case "exp", "exponential":
		return Exponential, nil
	}
	return Linear, fmt.Errorf("unknown curve shape: %q", s)
}

// expCurvature is the number of time constants an exponential segment spans.
const expCurvature = 4

// Segment moves from From to To between Start and End.
type Segment struct {
	Start, End float64
	From, To   float64
	Shape      Shape
}

func (s Segment) At(t float64) float64 {
	if t <= s.Start {
		return s.From
	}
	if t >= s.End {
		return s.To
	}
	x := (t - s.Start) / (s.End - s.Start)
	if s.Shape == Exponential {
		// normalized so the segment lands on To exactly at End
		k := math.Exp(-expCurvature)
		x = (1 - math.Exp(-expCurvature*x)) / (1 - k)
	}
	return s.From + x*(s.To-s.From)
}

// Curve is a sequence of contiguous segments. Its value before the first
// segment is the first From, after the last segment the last To.
type Curve []Segment

func (c Curve) At(t float64) float64 {
	if len(c) == 0 {
		return 0
	}
	for _, s := range c {
		if t < s.End {
			return s.At(t)
		}
	}
	return c[len(c)-1].To
}

func (c Curve) Duration() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].End - c[0].Start
}

// Shift returns a copy of c with all segment times offset by t0.
func (c Curve) Shift(t0 float64) Curve {
	shifted := make(Curve, len(c))
	for i, s := range c {
		s.Start += t0
		s.End += t0
		shifted[i] = s
	}
	return shifted
}

// Generator computes envelope curves relative to the moment a note starts or
// ends. It holds no state of its own.
type Generator struct {
	Shape        Shape
	MaxAmplitude float64
}

func (g Generator) Attack(p ADSR, scale float64) Curve {
	return g.AttackFrom(p, scale, 0)
}

// AttackFrom returns the attack and decay segments starting at level from.
// The sustain level is the To of the last segment and holds from then on.
func (g Generator) AttackFrom(p ADSR, scale, from float64) Curve {
	p = p.Clamp(g.max())
	peak := p.AttackLevel * scale
	sustain := p.SustainLevel * scale
	attack := Segment{
		Start: 0,
		End:   p.AttackTime,
		From:  from,
		To:    peak,
		Shape: g.Shape,
	}
	decay := Segment{
		Start: attack.End,
		End:   attack.End + p.DecayTime,
		From:  peak,
		To:    sustain,
		Shape: g.Shape,
	}
	return Curve{attack, decay}
}

// Release ramps from the live level down to silence.
func (g Generator) Release(p ADSR, from float64) Curve {
	return Curve{{
		Start: 0,
		End:   p.ReleaseTime,
		From:  from,
		To:    0,
		Shape: g.Shape,
	}}
}

func (g Generator) max() float64 {
	if g.MaxAmplitude <= 0 {
		return 1
	}
	return g.MaxAmplitude
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
