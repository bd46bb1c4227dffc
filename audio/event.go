package audio

import (
	"fmt"
	"math"
)

type Kind int

const (
	Unknown Kind = iota
	NoteOn
	NoteOff
	PitchBend
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case PitchBend:
		return "pitch-bend"
	}
	return "unknown"
}

// Event is a decoded channel message.
type Event struct {
	Kind     Kind
	Channel  int
	Key      int
	Velocity int
	Bend     float64 // -1..1, pitch bend only
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("%v ch=%d key=%d vel=%d", e.Kind, e.Channel, e.Key, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("%v ch=%d key=%d", e.Kind, e.Channel, e.Key)
	case PitchBend:
		return fmt.Sprintf("%v ch=%d bend=%.4f", e.Kind, e.Channel, e.Bend)
	}
	return e.Kind.String()
}

const bendCenter = 8192

// Decode classifies a three byte channel message. Anything it does not
// understand decodes to an Unknown event.
func Decode(msg []byte) Event {
	if len(msg) < 3 {
		return Event{}
	}
	status, data1, data2 := msg[0], msg[1]&0x7f, msg[2]&0x7f
	ch := int(status & 0x0f)
	switch status & 0xf0 {
	case 0x80:
		return Event{Kind: NoteOff, Channel: ch, Key: int(data1)}
	case 0x90:
		if data2 == 0 {
			return Event{Kind: NoteOff, Channel: ch, Key: int(data1)}
		}
		return Event{Kind: NoteOn, Channel: ch, Key: int(data1), Velocity: int(data2)}
	case 0xe0:
		v := int(data1) | int(data2)<<7
		var bend float64
		if v < bendCenter {
			bend = float64(v-bendCenter) / bendCenter
		} else {
			bend = float64(v-bendCenter) / (bendCenter - 1)
		}
		return Event{Kind: PitchBend, Channel: ch, Bend: bend}
	}
	return Event{}
}

// Tuning maps note numbers to frequencies in equal temperament.
type Tuning struct {
	RefPitch float64
	RefNote  float64
}

var DefaultTuning = Tuning{RefPitch: 440, RefNote: 69}

// Frequency accepts fractional notes so that pitch bend can be added to the
// note number.
func (t Tuning) Frequency(note float64) float64 {
	return t.RefPitch * math.Pow(2, (note-t.RefNote)/12)
}

// Interpreter turns events into pool operations.
type Interpreter struct {
	pool      *Pool
	BendRange float64 // semitones at full deflection
}

func NewInterpreter(pool *Pool, bendRange float64) *Interpreter {
	return &Interpreter{pool: pool, BendRange: bendRange}
}

func (in *Interpreter) HandleMessage(msg []byte) {
	in.Handle(Decode(msg))
}

func (in *Interpreter) Handle(ev Event) {
	switch ev.Kind {
	case NoteOn:
		in.pool.NoteOn(ev.Key, ev.Velocity)
	case NoteOff:
		in.pool.NoteOff(ev.Key)
	case PitchBend:
		in.pool.PitchBend(ev.Bend * in.BendRange)
	}
}
