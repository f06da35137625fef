// Package midiin implements the command byte source on top of a real MIDI
// input port. Received messages are buffered as raw bytes; every delivery
// fires the pipeline's edge-triggered wake signal exactly once, regardless
// of how many bytes it carried.
package midiin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
	notify func()

	mu  sync.Mutex
	buf []byte
}

// New opens the MIDI driver. notify is called from the driver callback on
// every message delivery and must not block; wire it to the pipeline
// broker's NotifyDataAvailable. A driver failure is returned so the caller
// can refuse to start the pipeline.
func New(notify func()) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	return &Input{driver: driver, notify: notify}, nil
}

// Open connects to the first input port whose name starts with prefix; an
// empty prefix takes the first available port.
func (i *Input) Open(prefix string) error {
	ins, err := i.driver.Ins()
	if err != nil {
		return fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if prefix != "" && !strings.HasPrefix(in.String(), prefix) {
			continue
		}
		if err := in.Open(); err != nil {
			return fmt.Errorf("opening MIDI input %v failed: %w", in, err)
		}
		stop, err := midi.ListenTo(in, i.handleMessage)
		if err != nil {
			in.Close()
			return fmt.Errorf("listening to MIDI input %v failed: %w", in, err)
		}
		i.in, i.stop = in, stop
		return nil
	}
	if prefix == "" {
		return errors.New("no MIDI input available")
	}
	return fmt.Errorf("no MIDI input with prefix %q", prefix)
}

// Name returns the name of the open port.
func (i *Input) Name() string {
	if i.in == nil {
		return ""
	}
	return i.in.String()
}

func (i *Input) handleMessage(msg midi.Message, timestampms int32) {
	i.mu.Lock()
	i.buf = append(i.buf, msg.Bytes()...)
	i.mu.Unlock()
	i.notify()
}

// TryReadByte pops the next buffered byte without blocking.
func (i *Input) TryReadByte() (byte, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.buf) == 0 {
		return 0, false
	}
	b := i.buf[0]
	i.buf = i.buf[1:]
	return b, true
}

func (i *Input) Close() error {
	if i.stop != nil {
		i.stop()
	}
	if i.in != nil && i.in.IsOpen() {
		i.in.Close()
	}
	return i.driver.Close()
}
