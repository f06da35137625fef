package pipeline

import (
	"log"
	"time"

	"github.com/aaltosynth/aalto"
)

// Drain bridges the command input to the command queue. It blocks
// indefinitely on the broker's edge-triggered wake signal; on wake it reads
// the source until it reports no data, pushing every byte into the command
// queue with a bounded wait, then re-blocks. The signal carries no count,
// so one wake always drains everything that has arrived.
type Drain struct {
	source      aalto.ByteSource
	broker      *Broker
	pushTimeout time.Duration
}

// NewDrain creates the drain task. pushTimeout bounds how long one byte may
// wait for a free slot in the command queue; a byte whose wait times out is
// dropped. This is a documented loss mode under burst load, not an error.
func NewDrain(source aalto.ByteSource, broker *Broker, pushTimeout time.Duration) *Drain {
	return &Drain{source: source, broker: broker, pushTimeout: pushTimeout}
}

// DrainOnce empties the source into the command queue.
func (d *Drain) DrainOnce() {
	for {
		b, ok := d.source.TryReadByte()
		if !ok {
			return
		}
		if !TimeoutSend(d.broker.Commands, b, d.pushTimeout) {
			if n := d.broker.Stats.DroppedCommandBytes.Add(1); n == 1 || n%256 == 0 {
				log.Printf("drain: command queue full, %d bytes dropped so far", n)
			}
		}
	}
}

// Run waits on the wake signal until the broker requests closing. It is
// meant to be run as a goroutine.
func (d *Drain) Run() {
	defer close(d.broker.FinishedDrain)
	for {
		select {
		case <-d.broker.CloseDrain:
			return
		case <-d.broker.DataAvailable:
			d.DrainOnce()
		}
	}
}
