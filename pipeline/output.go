package pipeline

import (
	"log"
	"time"

	"github.com/aaltosynth/aalto"
)

// Output is the periodic consumer of the sample queue. Every `every` ticks
// it dequeues a single sample without blocking and transmits it to the
// sink. An empty queue is a silent underrun: nothing is transmitted and no
// fallback sample is substituted.
type Output struct {
	sink   aalto.SampleSink
	broker *Broker
	every  int
	count  int
}

func NewOutput(sink aalto.SampleSink, broker *Broker, every int) *Output {
	if every < 1 {
		every = 1
	}
	return &Output{sink: sink, broker: broker, every: every}
}

// Tick counts ticks and performs the dequeue-and-transmit on every `every`th
// call. The sink may block on the peripheral; the queue is never blocked on.
func (o *Output) Tick() error {
	o.count++
	if o.count < o.every {
		return nil
	}
	o.count = 0
	s, ok := TryReceive(o.broker.Samples)
	if !ok {
		o.broker.Stats.Underruns.Add(1)
		return nil
	}
	return o.sink.Send(s)
}

// Run ticks the output from the given tick source until the broker requests
// closing. Transmit errors are logged and the task keeps running; a
// misbehaving peripheral should not tear down the whole pipeline.
func (o *Output) Run(ticks <-chan time.Time) {
	defer close(o.broker.FinishedOutput)
	for {
		select {
		case <-o.broker.CloseOutput:
			return
		case <-ticks:
			if err := o.Tick(); err != nil {
				log.Printf("output: %v", err)
			}
		}
	}
}
