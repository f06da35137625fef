// Package monitor plays the engine's 12-bit sample stream on the host
// soundcard, so the pipeline can be heard without DAC hardware attached.
// Each engine sample is held for a fixed number of soundcard frames
// (zero-order hold) and scaled to a unipolar float level, the same way the
// DAC would hold its output voltage between transfers.
package monitor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	oto "github.com/ebitengine/oto/v3"
	"github.com/viterin/vek/vek32"

	"github.com/aaltosynth/aalto"
)

const sampleRate = 44100

// maxQueued bounds the backlog to one second; if the soundcard falls
// behind, the oldest levels are discarded.
const maxQueued = sampleRate

type Sink struct {
	player *oto.Player
	gain   float32
	hold   int // soundcard frames per engine sample

	mu        sync.Mutex
	queue     []float32 // pending raw sample values, one per engine sample
	level     float32   // current held value
	remaining int       // frames left at the current level

	tmp []float32
}

// NewSink opens the soundcard. outputRate is the rate samples arrive at,
// i.e. the pipeline tick rate divided by the output task period.
func NewSink(outputRate int, gain float32) (*Sink, error) {
	if outputRate < 1 {
		return nil, fmt.Errorf("output rate must be positive, got %d", outputRate)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	s := &Sink{gain: gain, hold: sampleRate / outputRate}
	if s.hold < 1 {
		s.hold = 1
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Send queues one sample for playback. It never blocks; when the monitor
// lags more than a second behind, the oldest queued samples are discarded.
func (s *Sink) Send(sample aalto.Sample) error {
	s.mu.Lock()
	if len(s.queue) >= maxQueued {
		s.queue = s.queue[len(s.queue)-maxQueued+1:]
	}
	s.queue = append(s.queue, float32(sample))
	s.mu.Unlock()
	return nil
}

// Read is called by the oto player to pull audio. The queued raw values are
// expanded by the hold factor and normalized to [0, gain] in one batch; an
// empty queue keeps holding the last level, which keeps underruns
// click-free.
func (s *Sink) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if cap(s.tmp) < frames {
		s.tmp = make([]float32, frames)
	}
	block := s.tmp[:frames]
	s.mu.Lock()
	for i := range block {
		if s.remaining <= 0 {
			if len(s.queue) > 0 {
				s.level = s.queue[0]
				s.queue = s.queue[1:]
				s.remaining = s.hold
			} else {
				s.remaining = 1
			}
		}
		block[i] = s.level
		s.remaining--
	}
	s.mu.Unlock()
	vek32.DivNumber_Inplace(block, float32(aalto.MaxSample))
	vek32.MulNumber_Inplace(block, s.gain)
	for i, v := range block {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return frames * 4, nil
}

func (s *Sink) Close() error {
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
