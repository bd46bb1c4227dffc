package audio

import (
	"math"
	"sort"
)

// Playable accepts raw messages at a frame offset within the next buffer.
// TrySend must not block: the sequencer runs on the audio thread. It
// reports false when the message has to wait for a later buffer.
type Playable interface {
	TrySend(offset int, msg []byte) bool
}

type timedMessage struct {
	time float64 // seconds from the start of the score
	data [3]byte
	n    uint8
}

// Score is a list of messages with their times in seconds.
type Score struct {
	messages []timedMessage
}

func (s *Score) Add(time float64, msg []byte) {
	var m timedMessage
	m.time = time
	m.n = uint8(copy(m.data[:], msg))
	s.messages = append(s.messages, m)
}

func (s *Score) Len() int { return len(s.messages) }

// End returns the time of the last message.
func (s *Score) End() float64 {
	var end float64
	for _, m := range s.messages {
		end = math.Max(end, m.time)
	}
	return end
}

// Sequencer plays a score into a Playable. Messages that share a time are
// sent in the order they were added. Messages the target cannot take yet
// are sent at the start of the next buffer.
type Sequencer struct {
	target     Playable
	sampleRate float64
	messages   []timedMessage
	next       int
	frames     uint64
}

func NewSequencer(score *Score, target Playable, sampleRate float64) *Sequencer {
	messages := append([]timedMessage(nil), score.messages...)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].time < messages[j].time
	})
	return &Sequencer{
		target:     target,
		sampleRate: sampleRate,
		messages:   messages,
	}
}

func (s *Sequencer) Tick(numSamples int) {
	start := s.frames
	end := start + uint64(numSamples)
	for ; s.next < len(s.messages); s.next++ {
		m := s.messages[s.next]
		frame := uint64(math.Round(m.time * s.sampleRate))
		if frame >= end {
			break
		}
		offset := 0
		if frame > start {
			offset = int(frame - start)
		}
		if !s.target.TrySend(offset, m.data[:m.n]) {
			break
		}
	}
	s.frames = end
}

func (s *Sequencer) Done() bool {
	return s.next == len(s.messages)
}
