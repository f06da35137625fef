// Package pipeline contains the concurrent tasks that move samples from the
// oscillator engine to the output device and command bytes from the input
// stream into the voice bank. The bounded queues in Broker are the only
// synchronization points between the tasks.
package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/aaltosynth/aalto"
)

type (
	// Broker holds the bounded FIFOs connecting the tasks, the
	// edge-triggered wake signal of the command input, and the close
	// bookkeeping for the task goroutines.
	//
	// For closing goroutines, the broker has two channels per task:
	// CloseXXX and FinishedXXX. The CloseXXX channel has a capacity of 1,
	// so a close request can always be sent without blocking; if the
	// channel is already full, closing is already underway and dropping
	// the request is fine. FinishedXXX is never sent to, only closed, so
	// "<-FinishedXXX" waits until the task has returned.
	Broker struct {
		// Samples is the sample FIFO: single producer (the Producer task),
		// single consumer (the Output task).
		Samples chan aalto.Sample
		// Commands is the command byte FIFO: single producer (the Drain
		// task), single consumer (the Interpreter task).
		Commands chan byte
		// DataAvailable is the edge-triggered wake signal from the command
		// input. Capacity 1: only "at least one arrival happened" is
		// preserved, never a count.
		DataAvailable chan struct{}

		CloseProducer    chan struct{}
		CloseOutput      chan struct{}
		CloseDrain       chan struct{}
		CloseInterpreter chan struct{}

		FinishedProducer    chan struct{}
		FinishedOutput      chan struct{}
		FinishedDrain       chan struct{}
		FinishedInterpreter chan struct{}

		Stats Stats
	}

	// Stats counts the documented loss and degradation modes of the
	// pipeline, for logs and tests.
	Stats struct {
		// DroppedCommandBytes counts bytes the drain loop discarded
		// because the command queue stayed full past the push timeout.
		DroppedCommandBytes atomic.Uint64
		// StalledTicks counts producer ticks spent retrying a pending
		// sample instead of computing a new one.
		StalledTicks atomic.Uint64
		// DroppedSamples counts samples discarded under the drop-newest
		// policy.
		DroppedSamples atomic.Uint64
		// Underruns counts output runs that found the sample queue empty.
		Underruns atomic.Uint64
	}
)

// NewBroker creates the queues at their fixed capacities. The queues are
// never resized or recreated afterwards.
func NewBroker(sampleQueueSize, commandQueueSize int) *Broker {
	return &Broker{
		Samples:             make(chan aalto.Sample, sampleQueueSize),
		Commands:            make(chan byte, commandQueueSize),
		DataAvailable:       make(chan struct{}, 1),
		CloseProducer:       make(chan struct{}, 1),
		CloseOutput:         make(chan struct{}, 1),
		CloseDrain:          make(chan struct{}, 1),
		CloseInterpreter:    make(chan struct{}, 1),
		FinishedProducer:    make(chan struct{}),
		FinishedOutput:      make(chan struct{}),
		FinishedDrain:       make(chan struct{}),
		FinishedInterpreter: make(chan struct{}),
	}
}

// NotifyDataAvailable raises the edge-triggered wake signal. It is safe to
// call from any goroutine, including a driver callback, and never blocks:
// if the signal is already raised the call is a no-op.
func (b *Broker) NotifyDataAvailable() {
	TrySend(b.DataAvailable, struct{}{})
}

// Close requests every task to stop and waits for each to finish, bounded
// by the timeout per task.
func (b *Broker) Close(timeout time.Duration) {
	TrySend(b.CloseProducer, struct{}{})
	TrySend(b.CloseOutput, struct{}{})
	TrySend(b.CloseDrain, struct{}{})
	TrySend(b.CloseInterpreter, struct{}{})
	for _, fin := range []chan struct{}{b.FinishedProducer, b.FinishedOutput, b.FinishedDrain, b.FinishedInterpreter} {
		select {
		case <-fin:
		case <-time.After(timeout):
		}
	}
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Returns true if the value was
// sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TryReceive is the non-blocking counterpart of TrySend.
func TryReceive[T any](c <-chan T) (v T, ok bool) {
	select {
	case v = <-c:
		return v, true
	default:
		return v, false
	}
}

// TimeoutSend blocks until the value is sent or the timeout elapses.
// Returns false on timeout.
func TimeoutSend[T any](c chan<- T, v T, t time.Duration) bool {
	timer := time.NewTimer(t)
	defer timer.Stop()
	select {
	case c <- v:
		return true
	case <-timer.C:
		return false
	}
}
