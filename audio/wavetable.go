package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/youpy/go-wav"
)

// Wavetable is a single waveform cycle read from a WAV file. Only the first
// channel is used.
type Wavetable struct {
	samples []float64
	file    string
}

func (t *Wavetable) Name() string {
	if t == nil {
		return ""
	}
	return filepath.Base(t.file)
}

func (t *Wavetable) Len() int { return len(t.samples) }

// lookup reads the table at phase (0..2π) with linear interpolation.
func (t *Wavetable) lookup(phase float64) float64 {
	n := len(t.samples)
	pos := phase / twoPi * float64(n)
	i := int(pos)
	frac := pos - float64(i)
	a := t.samples[i%n]
	b := t.samples[(i+1)%n]
	return a + frac*(b-a)
}

func LoadWavetable(file string) (*Wavetable, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := readWavetable(f)
	if err != nil {
		return nil, fmt.Errorf("load wavetable %s: %w", file, err)
	}
	t.file = file
	return t, nil
}

// wavSource is what the riff reader underneath go-wav needs.
type wavSource interface {
	io.Reader
	io.ReaderAt
}

func readWavetable(r wavSource) (*Wavetable, error) {
	var t Wavetable
	wr := wav.NewReader(r)
	for {
		samples, err := wr.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			t.samples = append(t.samples, wr.FloatValue(sample, 0))
		}
	}
	if len(t.samples) == 0 {
		return nil, fmt.Errorf("no samples")
	}
	return &t, nil
}
