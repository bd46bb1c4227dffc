package audio

import (
	"io"

	"github.com/youpy/go-wav"
)

const bitsPerSample = 16

// RenderWAV runs sink offline for the given number of seconds and writes the
// result as a 16 bit stereo WAV file.
func RenderWAV(w io.Writer, sink *Sink, sampleRate, seconds float64) error {
	frames := int(seconds * sampleRate)
	buf := [][]float32{
		make([]float32, bufferSize),
		make([]float32, bufferSize),
	}
	out := make([]wav.Sample, 0, frames)
	for n := 0; n < frames; n += bufferSize {
		k := min(bufferSize, frames-n)
		chunk := [][]float32{buf[0][:k], buf[1][:k]}
		sink.Process(chunk)
		for i := 0; i < k; i++ {
			out = append(out, wav.Sample{Values: [2]int{
				toPCM(chunk[0][i]),
				toPCM(chunk[1][i]),
			}})
		}
	}
	writer := wav.NewWriter(w, uint32(len(out)), 2, uint32(sampleRate), bitsPerSample)
	return writer.WriteSamples(out)
}

func toPCM(sample float32) int {
	const scale = 1<<(bitsPerSample-1) - 1
	if sample > 1 {
		sample = 1
	}
	if sample < -1 {
		sample = -1
	}
	return int(scale * sample)
}
