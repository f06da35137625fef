package pipeline

import (
	"time"

	"github.com/aaltosynth/aalto"
)

// Producer drives the engine once per tick and enqueues the result. When
// the sample queue is full it applies its backpressure policy: stall (hold
// the pending sample and retry it every tick, voice phases frozen, nothing
// lost) or drop-newest (discard and keep ticking).
type Producer struct {
	engine *aalto.Engine
	broker *Broker
	policy string

	pending aalto.Sample
	stalled bool
}

func NewProducer(engine *aalto.Engine, broker *Broker, policy string) *Producer {
	return &Producer{engine: engine, broker: broker, policy: policy}
}

// Stalled reports whether a sample is pending delivery.
func (p *Producer) Stalled() bool { return p.stalled }

// Tick performs one tick of work: at most one engine step and one
// non-blocking enqueue. A tick spent retrying a pending sample does not
// advance the engine.
func (p *Producer) Tick() {
	if p.stalled {
		if TrySend(p.broker.Samples, p.pending) {
			p.stalled = false
		} else {
			p.broker.Stats.StalledTicks.Add(1)
		}
		return
	}
	s := p.engine.Tick()
	if TrySend(p.broker.Samples, s) {
		return
	}
	switch p.policy {
	case aalto.BackpressureDropNewest:
		p.broker.Stats.DroppedSamples.Add(1)
	default: // stall
		p.pending = s
		p.stalled = true
		p.broker.Stats.StalledTicks.Add(1)
	}
}

// Run ticks the producer from the given tick source until the broker
// requests closing. It is meant to be run as a goroutine.
func (p *Producer) Run(ticks <-chan time.Time) {
	defer close(p.broker.FinishedProducer)
	for {
		select {
		case <-p.broker.CloseProducer:
			return
		case <-ticks:
			p.Tick()
		}
	}
}
