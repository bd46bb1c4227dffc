package audio

import (
	"reflect"
	"testing"
)

type sent struct {
	offset int
	data   [3]byte
}

type testInstrument struct {
	events []sent
	room   int // messages accepted per buffer, 0 for no limit
}

func (i *testInstrument) TrySend(offset int, msg []byte) bool {
	if i.room > 0 && len(i.events) == i.room {
		return false
	}
	var ev sent
	ev.offset = offset
	copy(ev.data[:], msg)
	i.events = append(i.events, ev)
	return true
}

func (i *testInstrument) flush() {
	i.events = nil
}

func TestSequencer(t *testing.T) {
	const sampleRate = 1000
	const bufferSize = 500
	instrument := &testInstrument{}

	var score Score
	score.Add(0.75, []byte{0x80, 60, 0})
	score.Add(0, []byte{0x90, 60, 100})
	score.Add(0.25, []byte{0x90, 64, 100})
	score.Add(0.75, []byte{0x80, 64, 0})

	seq := NewSequencer(&score, instrument, sampleRate)
	seq.Tick(bufferSize)

	if want, got := []sent{
		{offset: 0, data: [3]byte{0x90, 60, 100}},
		{offset: 250, data: [3]byte{0x90, 64, 100}},
	}, instrument.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}
	if seq.Done() {
		t.Errorf("sequencer done after first buffer")
	}

	instrument.flush()
	seq.Tick(bufferSize)

	if want, got := []sent{
		{offset: 250, data: [3]byte{0x80, 60, 0}},
		{offset: 250, data: [3]byte{0x80, 64, 0}},
	}, instrument.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}

	instrument.flush()
	seq.Tick(bufferSize)

	if want, got := 0, len(instrument.events); want != got {
		t.Errorf("wanted zero events, got: %v", instrument.events)
	}
	if !seq.Done() {
		t.Errorf("sequencer not done after last message")
	}
	if want, got := 0.75, score.End(); want != got {
		t.Errorf("wrong score end: want %v, got %v", want, got)
	}
}

func TestSequencerCarriesOverWhenTargetIsFull(t *testing.T) {
	instrument := &testInstrument{room: 2}

	var score Score
	for key := byte(60); key < 65; key++ {
		score.Add(0.1, []byte{0x90, key, 100})
	}
	seq := NewSequencer(&score, instrument, 1000)

	var keys []byte
	var offsets []int
	for n := 0; n < 3; n++ {
		instrument.flush()
		seq.Tick(200)
		for _, ev := range instrument.events {
			keys = append(keys, ev.data[1])
			offsets = append(offsets, ev.offset)
		}
	}
	if want := []byte{60, 61, 62, 63, 64}; !reflect.DeepEqual(want, keys) {
		t.Errorf("wrong keys: want %v, got %v", want, keys)
	}
	if want := []int{100, 100, 0, 0, 0}; !reflect.DeepEqual(want, offsets) {
		t.Errorf("wrong offsets: want %v, got %v", want, offsets)
	}
	if !seq.Done() {
		t.Errorf("sequencer not done")
	}
}

func TestScoreKeepsMessageLength(t *testing.T) {
	instrument := &testInstrument{}
	var got []int
	target := playableFunc(func(offset int, msg []byte) bool {
		got = append(got, len(msg))
		return instrument.TrySend(offset, msg)
	})

	var score Score
	score.Add(0, []byte{0xe0, 0x00})
	score.Add(0, []byte{0x90, 60, 100})
	NewSequencer(&score, target, 1000).Tick(16)

	if want := []int{2, 3}; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong message lengths: want %v, got %v", want, got)
	}
}

type playableFunc func(offset int, msg []byte) bool

func (f playableFunc) TrySend(offset int, msg []byte) bool { return f(offset, msg) }
