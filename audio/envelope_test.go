package audio

import (
	"math"
	"testing"
)

func TestLinearAttackAndDecay(t *testing.T) {
	gen := Generator{Shape: Linear, MaxAmplitude: 1}
	p := ADSR{AttackTime: 0.1, AttackLevel: 0.8, DecayTime: 0.4, SustainLevel: 0.5, ReleaseTime: 1}
	curve := gen.Attack(p, 0.5)

	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.05, 0.2},
		{0.1, 0.4},
		{0.2, 0.1*(0.25-0.4)/0.4 + 0.4},
		{0.5, 0.25},
		{10, 0.25},
	}
	for _, test := range tests {
		if got := curve.At(test.t); !approx(got, test.want) {
			t.Errorf("At(%v): want %v, got %v", test.t, test.want, got)
		}
	}
	if want, got := 0.5, curve.Duration(); !approx(want, got) {
		t.Errorf("wrong duration: want %v, got %v", want, got)
	}
}

func TestAttackFromLevel(t *testing.T) {
	gen := Generator{}
	p := ADSR{AttackTime: 1, AttackLevel: 1, DecayTime: 1, SustainLevel: 0.5}
	curve := gen.AttackFrom(p, 1, 0.4)
	if got := curve.At(0); got != 0.4 {
		t.Errorf("expected curve to start at 0.4, got %v", got)
	}
	if got := curve.At(0.5); !approx(got, 0.7) {
		t.Errorf("expected 0.7 halfway through the attack, got %v", got)
	}
}

func TestZeroLengthStages(t *testing.T) {
	gen := Generator{}
	p := ADSR{AttackTime: 0, AttackLevel: 1, DecayTime: 0, SustainLevel: 0.3}
	curve := gen.Attack(p, 1)
	if got := curve.At(0); got != 0.3 {
		t.Errorf("expected to jump to sustain, got %v", got)
	}
	release := gen.Release(p, 0.3)
	if got := release.At(0); got != 0 {
		t.Errorf("expected zero length release to be silent, got %v", got)
	}
}

func TestLevelsAreClamped(t *testing.T) {
	gen := Generator{MaxAmplitude: 1}
	p := ADSR{AttackTime: 1, AttackLevel: 3, DecayTime: 1, SustainLevel: -1}
	curve := gen.Attack(p, 1)
	if got := curve[0].To; got != 1 {
		t.Errorf("expected peak clamped to 1, got %v", got)
	}
	if got := curve[1].To; got != 0 {
		t.Errorf("expected sustain clamped to 0, got %v", got)
	}
}

func TestExponentialSegmentsReachTargets(t *testing.T) {
	gen := Generator{Shape: Exponential}
	p := ADSR{AttackTime: 0.2, AttackLevel: 1, DecayTime: 0.3, SustainLevel: 0.4, ReleaseTime: 0.5}
	curve := gen.Attack(p, 1)
	if got := curve.At(0.2); !approx(got, 1) {
		t.Errorf("expected peak at end of attack, got %v", got)
	}
	if got := curve.At(0.5); !approx(got, 0.4) {
		t.Errorf("expected sustain at end of decay, got %v", got)
	}
	// exponential approach runs ahead of the straight line
	if lin, got := 0.5, curve.At(0.1); got <= lin {
		t.Errorf("expected exponential attack above %v at midpoint, got %v", lin, got)
	}
	prev := -1.0
	for x := 0.0; x <= 0.2; x += 0.01 {
		v := curve.At(x)
		if v < prev {
			t.Fatalf("attack not monotonic at %v: %v < %v", x, v, prev)
		}
		prev = v
	}

	release := gen.Release(p, 0.4)
	if got := release.At(0.5); got != 0 {
		t.Errorf("expected release to end silent, got %v", got)
	}
}

func TestCurveShift(t *testing.T) {
	curve := Generator{}.Release(ADSR{ReleaseTime: 2}, 1)
	shifted := curve.Shift(10)
	if shifted[0].Start != 10 || shifted[0].End != 12 {
		t.Errorf("wrong shifted segment: %+v", shifted[0])
	}
	if curve[0].Start != 0 {
		t.Errorf("shift modified the original curve")
	}
	if got := shifted.At(11); !approx(got, 0.5) {
		t.Errorf("want 0.5, got %v", got)
	}
	if got := shifted.At(5); got != 1 {
		t.Errorf("want first level before the curve starts, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	bad := []ADSR{
		{AttackTime: -1},
		{DecayTime: math.NaN()},
		{ReleaseTime: math.Inf(1)},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("expected error for %+v", p)
		}
	}
	if err := testEnvelope.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseShape(t *testing.T) {
	for input, want := range map[string]Shape{
		"linear": Linear,
		"lin":    Linear,
		"exp":    Exponential,
	} {
		got, err := ParseShape(input)
		if err != nil {
			t.Errorf("%s: unexpected error %v", input, err)
		}
		if got != want {
			t.Errorf("%s: want %v, got %v", input, want, got)
		}
	}
	if _, err := ParseShape("cubic"); err == nil {
		t.Errorf("expected error for unknown shape")
	}
}
