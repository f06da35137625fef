package pipeline_test

import (
	"testing"
	"time"

	"github.com/aaltosynth/aalto/pipeline"
)

// byteSlice is an in-memory ByteSource.
type byteSlice struct {
	data []byte
}

func (s *byteSlice) TryReadByte() (byte, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	b := s.data[0]
	s.data = s.data[1:]
	return b, true
}

func (s *byteSlice) Close() error { return nil }

func TestDrainOnceEmptiesSource(t *testing.T) {
	broker := pipeline.NewBroker(4, 8)
	src := &byteSlice{data: []byte{0x90, 0x45, 0x64}}
	d := pipeline.NewDrain(src, broker, time.Millisecond)

	// a single wake must move every buffered byte, not just one
	d.DrainOnce()
	if got := len(broker.Commands); got != 3 {
		t.Fatalf("command queue holds %d bytes, want 3", got)
	}
	for i, want := range []byte{0x90, 0x45, 0x64} {
		if got := <-broker.Commands; got != want {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, want)
		}
	}
	if got, ok := src.TryReadByte(); ok {
		t.Errorf("source still holds %#02x after drain", got)
	}
}

func TestDrainDropsOnFullQueue(t *testing.T) {
	broker := pipeline.NewBroker(4, 2)
	src := &byteSlice{data: []byte{1, 2, 3, 4}}
	d := pipeline.NewDrain(src, broker, time.Millisecond)

	d.DrainOnce()
	if got := broker.Stats.DroppedCommandBytes.Load(); got != 2 {
		t.Errorf("DroppedCommandBytes = %d, want 2", got)
	}
	if got := len(broker.Commands); got != 2 {
		t.Errorf("command queue holds %d bytes, want 2", got)
	}
	// the oldest bytes survive
	if got := <-broker.Commands; got != 1 {
		t.Errorf("first queued byte = %d, want 1", got)
	}
	if got := <-broker.Commands; got != 2 {
		t.Errorf("second queued byte = %d, want 2", got)
	}
}

func TestNotifyDataAvailableCoalesces(t *testing.T) {
	broker := pipeline.NewBroker(4, 8)
	// the wake signal is edge-triggered: repeated notifies while no one is
	// waiting collapse into one
	broker.NotifyDataAvailable()
	broker.NotifyDataAvailable()
	broker.NotifyDataAvailable()
	if got := len(broker.DataAvailable); got != 1 {
		t.Fatalf("pending wake signals = %d, want 1", got)
	}
	<-broker.DataAvailable
	select {
	case <-broker.DataAvailable:
		t.Fatal("second wake signal delivered, want none")
	default:
	}
}

func TestDrainRunStops(t *testing.T) {
	broker := pipeline.NewBroker(4, 8)
	src := &byteSlice{data: []byte{0xAA}}
	d := pipeline.NewDrain(src, broker, time.Millisecond)
	go d.Run()

	broker.NotifyDataAvailable()
	select {
	case got := <-broker.Commands:
		if got != 0xAA {
			t.Errorf("drained byte = %#02x, want 0xAA", got)
		}
	case <-time.After(time.Second):
		t.Fatal("drain never moved the byte")
	}

	broker.CloseDrain <- struct{}{}
	select {
	case <-broker.FinishedDrain:
	case <-time.After(time.Second):
		t.Fatal("drain did not stop")
	}
}
