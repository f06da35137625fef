package pipeline

import (
	"log"
	"runtime"

	"gitlab.com/gomidi/midi/v2"

	"github.com/aaltosynth/aalto"
)

// Interpreter consumes the command queue byte by byte, assembles the bytes
// into MIDI channel messages (including running status) and applies the
// three voice bank operations: note on, note off and program change. All
// other messages are decoded and ignored.
type Interpreter struct {
	bank   *aalto.VoiceBank
	broker *Broker

	status byte // current running status, 0 when none
	data   [2]byte
	have   int
}

func NewInterpreter(bank *aalto.VoiceBank, broker *Broker) *Interpreter {
	return &Interpreter{bank: bank, broker: broker}
}

// Consume feeds one byte of the command stream into the message assembler,
// dispatching a completed message to the voice bank.
func (in *Interpreter) Consume(b byte) {
	if b&0x80 != 0 {
		if b >= 0xF8 {
			return // system real-time, may interleave anywhere; ignore
		}
		if b >= 0xF0 {
			in.status = 0 // system common cancels running status
			return
		}
		in.status = b
		in.have = 0
		return
	}
	if in.status == 0 {
		return // stray data byte, nothing to attach it to
	}
	in.data[in.have] = b
	in.have++
	if in.have < dataLen(in.status) {
		return
	}
	in.have = 0 // running status: keep in.status for the next data bytes
	in.dispatch()
}

// dataLen returns the number of data bytes of a channel voice message.
func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0: // program change, channel pressure
		return 1
	default:
		return 2
	}
}

func (in *Interpreter) dispatch() {
	msg := midi.Message([]byte{in.status, in.data[0], in.data[1]}[:1+dataLen(in.status)])
	var channel, key, velocity, program uint8
	var err error
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 { // note on with zero velocity is a note off
			err = in.bank.NoteOff(in.voiceFor(channel))
		} else {
			err = in.bank.NoteOn(in.voiceFor(channel), key, velocity)
		}
	case msg.GetNoteOff(&channel, &key, &velocity):
		err = in.bank.NoteOff(in.voiceFor(channel))
	case msg.GetProgramChange(&channel, &program):
		err = in.bank.ProgramChange(in.voiceFor(channel), waveformForProgram(program))
	}
	if err != nil {
		log.Printf("interpreter: %v", err)
	}
}

// voiceFor maps a MIDI channel onto a voice slot. The bank is smaller than
// the 16 channels, so channels wrap around the bank.
func (in *Interpreter) voiceFor(channel uint8) int {
	return int(channel) % in.bank.NumVoices()
}

func waveformForProgram(program uint8) aalto.Waveform {
	return aalto.Waveform(program % 3)
}

// Run polls the command queue until the broker requests closing. When the
// queue is empty the interpreter yields to the scheduler instead of
// sleeping, so it gives way to the real-time tasks without adding latency
// to the command path.
func (in *Interpreter) Run() {
	defer close(in.broker.FinishedInterpreter)
	for {
		select {
		case <-in.broker.CloseInterpreter:
			return
		case b := <-in.broker.Commands:
			in.Consume(b)
		default:
			runtime.Gosched()
		}
	}
}
