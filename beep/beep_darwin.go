//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// Core Audio keeps one playback device open; each cue rewinds it. The data
// callback reads the active buffer lock-free.
type player struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	dev    *malgo.Device
	active atomic.Pointer[[]byte]
	pos    atomic.Uint32
}

var (
	prepOnce sync.Once
	out      player
	pcmStart []byte
	pcmEnd   []byte
	pcmError []byte
)

func prepare() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	out.ctx = ctx

	// Mono, no tail: Core Audio does not drain on end-of-data.
	pcmStart = encode(cueStart.render(1, 0))
	pcmEnd = encode(cueEnd.render(1, 0))
	pcmError = encode(cueError.render(1, 0))

	if err := out.open(); err != nil {
		ctx.Uninit()
		out.ctx = nil
	}
}

// encode packs samples little-endian for the byte-oriented device callback.
func encode(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func (p *player) open() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	dev, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: p.feed})
	if err != nil {
		return err
	}
	p.dev = dev
	return nil
}

// feed runs on the audio thread and must not block or allocate.
func (p *player) feed(outBuf, _ []byte, frameCount uint32) {
	want := int(frameCount) * 2
	buf := p.active.Load()
	if buf == nil {
		zero(outBuf[:want])
		return
	}
	pos := int(p.pos.Load())
	n := copy(outBuf[:want], (*buf)[pos:])
	if n < want {
		zero(outBuf[n:want])
	}
	if pos+n >= len(*buf) {
		p.active.Store(nil)
		return
	}
	p.pos.Store(uint32(pos + n))
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (p *player) play(pcm []byte) {
	if p.ctx == nil || len(pcm) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return
	}

	p.dev.Stop() // no-op when idle
	p.pos.Store(0)
	p.active.Store(&pcm)

	if err := p.dev.Start(); err != nil {
		// Start can fail after sleep/wake; rebuild the device once.
		p.dev.Uninit()
		p.dev = nil
		if err := p.open(); err != nil {
			p.active.Store(nil)
			return
		}
		if err := p.dev.Start(); err != nil {
			p.active.Store(nil)
		}
	}
}

func Init() {
	prepOnce.Do(prepare)
}

func PlayStart() {
	prepOnce.Do(prepare)
	out.play(pcmStart)
}

func PlayEnd() {
	prepOnce.Do(prepare)
	out.play(pcmEnd)
}

func PlayError() {
	prepOnce.Do(prepare)
	out.play(pcmError)
}
