// Package beep plays short audio cues when the engine confirms a lifecycle
// transition: a tick when recording starts, a lower one when it stops and a
// double beep on an engine error. Playback failures stay silent; a cue is
// never worth an error of its own.
package beep

import "math"

const sampleRate = 44100

// cue is one synthesized tone: a sine burst shaped by an exponential decay,
// repeated count times with gap seconds of silence in between.
type cue struct {
	freq  float64 // Hz
	burst float64 // audible seconds per repeat
	vol   float64
	decay float64 // envelope steepness, higher dies faster
	count int
	gap   float64 // silence between repeats, seconds
}

var (
	cueStart = cue{freq: 1175, burst: 0.05, vol: 0.5, decay: 55, count: 1}
	cueEnd   = cue{freq: 880, burst: 0.06, vol: 0.5, decay: 40, count: 1}
	cueError = cue{freq: 349, burst: 0.08, vol: 0.6, decay: 30, count: 2, gap: 0.05}
)

// render synthesizes the cue as interleaved PCM, padded with tail seconds of
// silence for sinks that drain on end-of-data and would clip the decay.
func (c cue) render(channels int, tail float64) []int16 {
	burst := int(sampleRate * c.burst)
	gap := int(sampleRate * c.gap)
	frames := c.count*burst + (c.count-1)*gap + int(sampleRate*tail)
	out := make([]int16, frames*channels)
	for rep := 0; rep < c.count; rep++ {
		base := rep * (burst + gap)
		for i := 0; i < burst; i++ {
			t := float64(i) / sampleRate
			env := math.Exp(-t * c.decay)
			s := int16(math.Sin(2*math.Pi*c.freq*t) * 32767 * c.vol * env)
			for ch := 0; ch < channels; ch++ {
				out[(base+i)*channels+ch] = s
			}
		}
	}
	return out
}
