package audio

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"
)

const otoChannels = 2

// Oto plays a Sink through oto, for systems without portaudio.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewOto(sink *Sink, sampleRate float64) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: otoChannels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	player := ctx.NewPlayer(newOtoStream(sink))
	player.SetBufferSize(bufferSize * otoChannels * 4)
	return &Oto{ctx: ctx, player: player}, nil
}

func (o *Oto) Start() error {
	o.player.Play()
	return nil
}

func (o *Oto) Stop() error {
	return o.player.Close()
}

// otoStream implements io.Reader for oto by rendering the sink one buffer
// at a time and interleaving the channels.
type otoStream struct {
	sink    *Sink
	samples [][]float32
	pos     int
}

func newOtoStream(sink *Sink) *otoStream {
	s := &otoStream{sink: sink, samples: make([][]float32, otoChannels)}
	for c := range s.samples {
		s.samples[c] = make([]float32, bufferSize)
	}
	s.pos = bufferSize
	return s
}

func (s *otoStream) Read(buf []byte) (int, error) {
	const frameSize = otoChannels * 4
	n := 0
	for n+frameSize <= len(buf) {
		if s.pos == bufferSize {
			s.sink.Process(s.samples)
			s.pos = 0
		}
		for c := 0; c < otoChannels; c++ {
			binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(s.samples[c][s.pos]))
			n += 4
		}
		s.pos++
	}
	return n, nil
}
