// Package aalto implements a real-time multi-voice digital oscillator
// engine. The engine mixes a fixed bank of square/sawtooth/triangle voices
// into a single 12-bit sample per tick; a command path mutates the voice
// bank while the sample path streams the mixed output to a DAC-style sink.
// The concurrent task pipeline lives in the pipeline package; this package
// holds the domain types and the collaborator interfaces.
package aalto

// Sample is one quantized amplitude value produced by the engine. Only the
// low 12 bits are significant.
type Sample uint16

// MaxSample is the full-scale 12-bit amplitude.
const MaxSample Sample = 0xFFF

// dacCommandMask is OR'd into the top nibble of every outgoing word; it
// selects the MCP4821-style write-and-load command.
const dacCommandMask uint16 = 0x3000

// Frame serializes the sample into the 16-bit command-tagged wire word,
// most significant byte first.
func (s Sample) Frame() [2]byte {
	w := uint16(s)&uint16(MaxSample) | dacCommandMask
	return [2]byte{byte(w >> 8), byte(w)}
}

// ByteSource is the command input collaborator. TryReadByte never blocks;
// it returns false when no byte is buffered. Arrival of new data is
// signaled separately, through the edge-triggered wake channel of the
// pipeline Broker.
type ByteSource interface {
	TryReadByte() (byte, bool)
	Close() error
}

// SampleSink is the output collaborator. Send transmits one sample to the
// output device and may block on the peripheral, but callers must never let
// it block a queue operation.
type SampleSink interface {
	Send(Sample) error
	Close() error
}
