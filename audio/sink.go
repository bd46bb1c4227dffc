package audio

import (
	"github.com/gordonklaus/portaudio"
)

type Source interface {
	Process([][]float32)
}

type Ticker interface {
	Tick(numSamples int)
}

// Backend is an audio output that pulls from a Sink.
type Backend interface {
	Start() error
	Stop() error
}

// Sink mixes its sources into each buffer the backend asks for. Tickers run
// before any source so that they can schedule events for the same buffer.
type Sink struct {
	sources []Source
	tickers []Ticker
}

func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) AddTicker(ticker Ticker) {
	s.tickers = append(s.tickers, ticker)
}

func (s *Sink) Process(samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, ticker := range s.tickers {
		ticker.Tick(len(samples[0]))
	}
	for _, source := range s.sources {
		source.Process(samples)
	}
}

type PortAudio struct {
	stream *portaudio.Stream
}

func NewPortAudio(sink *Sink, sampleRate float64) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, bufferSize, sink.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &PortAudio{stream: stream}, nil
}

func (p *PortAudio) Start() error {
	return p.stream.Start()
}

func (p *PortAudio) Stop() error {
	p.stream.Close()
	portaudio.Terminate()
	return nil
}
