//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// tail keeps the PulseAudio buffer fed through the decay so Drain does not
// cut the cue short.
const tail = 0.15

var (
	prepOnce sync.Once
	pcmStart []int16
	pcmEnd   []int16
	pcmError []int16
)

func prepare() {
	pcmStart = cueStart.render(2, tail)
	pcmEnd = cueEnd.render(2, tail)
	pcmError = cueError.render(2, tail)
}

// play opens a short-lived stream per cue. The PulseAudio connection is
// cheap next to the cue itself and holding one open keeps the daemon from
// idling the sink.
func play(samples []int16) {
	if len(samples) == 0 {
		return
	}
	client, err := pulse.NewClient(pulse.ClientApplicationName("whisper"))
	if err != nil {
		return
	}
	defer client.Close()

	pos := 0
	source := pulse.Int16Reader(func(out []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(out, samples[pos:])
		pos += n
		return n, nil
	})

	stream, err := client.NewPlayback(source,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(c *proto.CreatePlaybackStream) {
			c.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	stream.Stop()
}

// Init renders the cues ahead of the first playback.
func Init() {
	prepOnce.Do(prepare)
}

func PlayStart() {
	prepOnce.Do(prepare)
	go play(pcmStart)
}

func PlayEnd() {
	prepOnce.Do(prepare)
	go play(pcmEnd)
}

func PlayError() {
	prepOnce.Do(prepare)
	go play(pcmError)
}
