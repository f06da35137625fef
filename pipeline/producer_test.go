package pipeline_test

import (
	"testing"

	"github.com/aaltosynth/aalto"
	"github.com/aaltosynth/aalto/pipeline"
)

func newTestEngine(t *testing.T, numVoices int) (*aalto.VoiceBank, *aalto.Engine) {
	t.Helper()
	bank, err := aalto.NewVoiceBank(numVoices, 8000)
	if err != nil {
		t.Fatal(err)
	}
	return bank, aalto.NewEngine(bank)
}

func voiceCounter(t *testing.T, bank *aalto.VoiceBank, i int) int {
	t.Helper()
	v, err := bank.Voice(i)
	if err != nil {
		t.Fatal(err)
	}
	return v.Counter
}

func TestProducerStallsOnFullQueue(t *testing.T) {
	bank, engine := newTestEngine(t, 1)
	bank.NoteOn(0, 69, 100)
	broker := pipeline.NewBroker(2, 2)
	p := pipeline.NewProducer(engine, broker, aalto.BackpressureStall)

	p.Tick()
	p.Tick() // queue now at capacity
	if got := voiceCounter(t, bank, 0); got != 2 {
		t.Fatalf("counter = %d after 2 delivered ticks, want 2", got)
	}
	p.Tick() // computes the third sample, cannot enqueue, stalls
	if !p.Stalled() {
		t.Fatal("producer should be stalled")
	}
	if got := voiceCounter(t, bank, 0); got != 3 {
		t.Fatalf("counter = %d, want 3", got)
	}
	p.Tick()
	p.Tick() // retries must not advance the voice phases
	if got := voiceCounter(t, bank, 0); got != 3 {
		t.Errorf("stalled ticks advanced counter to %d, want 3", got)
	}
	if got := broker.Stats.StalledTicks.Load(); got != 3 {
		t.Errorf("StalledTicks = %d, want 3", got)
	}

	<-broker.Samples // free one slot
	p.Tick()         // delivers the pending sample, still no engine step
	if p.Stalled() {
		t.Error("producer should have recovered")
	}
	if got := voiceCounter(t, bank, 0); got != 3 {
		t.Errorf("recovery tick advanced counter to %d, want 3", got)
	}
	if got := len(broker.Samples); got != 2 {
		t.Errorf("queue length = %d after recovery, want 2", got)
	}
	// no sample was lost: three samples produced, three in flight overall
}

func TestProducerDropNewest(t *testing.T) {
	bank, engine := newTestEngine(t, 1)
	bank.NoteOn(0, 69, 100)
	broker := pipeline.NewBroker(1, 1)
	p := pipeline.NewProducer(engine, broker, aalto.BackpressureDropNewest)

	p.Tick()
	first := <-broker.Samples
	p.Tick() // queue empty again, delivered
	p.Tick() // full, dropped
	p.Tick() // full, dropped
	if p.Stalled() {
		t.Error("drop-newest must not stall")
	}
	if got := voiceCounter(t, bank, 0); got != 4 {
		t.Errorf("counter = %d, want 4: dropping must keep ticking", got)
	}
	if got := broker.Stats.DroppedSamples.Load(); got != 2 {
		t.Errorf("DroppedSamples = %d, want 2", got)
	}
	second := <-broker.Samples
	_ = first
	_ = second // the queued samples are the oldest ones, in order
}
