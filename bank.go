package aalto

import (
	"fmt"
	"sync"
)

// DefaultNumVoices matches the slot count of the voice array in the
// hardware unit this engine models. The shipped example configs use 3.
const DefaultNumVoices = 4

// VoiceBank is a fixed-capacity collection of voices. It is written only by
// the command interpreter and read only by the sample engine; since those
// run as separate goroutines, every update and every read-and-advance of a
// voice happens under that voice's own mutex, so a command can never be
// observed half-applied.
type VoiceBank struct {
	tickRate int
	voices   []voiceSlot
}

type voiceSlot struct {
	mu sync.Mutex
	v  Voice
}

// NewVoiceBank creates a bank of numVoices disabled voices. tickRate is the
// sample tick rate used to derive periods from note pitches.
func NewVoiceBank(numVoices, tickRate int) (*VoiceBank, error) {
	if numVoices < 1 {
		return nil, fmt.Errorf("voice bank needs at least one voice, got %d", numVoices)
	}
	if tickRate < 1 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}
	return &VoiceBank{tickRate: tickRate, voices: make([]voiceSlot, numVoices)}, nil
}

func (b *VoiceBank) NumVoices() int { return len(b.voices) }

// TickRate returns the sample tick rate the bank derives periods for.
func (b *VoiceBank) TickRate() int { return b.tickRate }

// NoteOn enables the voice, derives its period from the note pitch and
// resets its phase. Retriggering an already enabled voice restarts its
// cycle. The velocity is part of the command contract but does not scale
// the amplitude. The derived period is always at least 1, so a zero period
// can never enter the sample path.
func (b *VoiceBank) NoteOn(voice int, note, velocity byte) error {
	slot, err := b.slot(voice)
	if err != nil {
		return err
	}
	period := PeriodForNote(note, b.tickRate)
	slot.mu.Lock()
	slot.v.Enabled = true
	slot.v.Period = period
	slot.v.Counter = 0
	slot.mu.Unlock()
	return nil
}

// NoteOff disables the voice. The phase counter is left as-is: a disabled
// voice is skipped by the engine, so the stale phase is harmless. NoteOff
// on an already disabled voice is a no-op.
func (b *VoiceBank) NoteOff(voice int) error {
	slot, err := b.slot(voice)
	if err != nil {
		return err
	}
	slot.mu.Lock()
	slot.v.Enabled = false
	slot.mu.Unlock()
	return nil
}

// ProgramChange sets the waveform of the voice without touching its phase
// or period.
func (b *VoiceBank) ProgramChange(voice int, w Waveform) error {
	slot, err := b.slot(voice)
	if err != nil {
		return err
	}
	if w != Square && w != Sawtooth && w != Triangle {
		return fmt.Errorf("invalid waveform %d for voice %d", int(w), voice)
	}
	slot.mu.Lock()
	slot.v.Waveform = w
	slot.mu.Unlock()
	return nil
}

// Voice returns a copy of the voice state, for tests and diagnostics.
func (b *VoiceBank) Voice(voice int) (Voice, error) {
	slot, err := b.slot(voice)
	if err != nil {
		return Voice{}, err
	}
	slot.mu.Lock()
	v := slot.v
	slot.mu.Unlock()
	return v, nil
}

// tick evaluates voice i at its current phase and advances it by one tick.
// Disabled voices contribute nothing and keep their phase.
func (b *VoiceBank) tick(i int) (amp Sample, enabled bool) {
	slot := &b.voices[i]
	slot.mu.Lock()
	if slot.v.Enabled {
		amp = slot.v.amplitude()
		slot.v.advance()
		enabled = true
	}
	slot.mu.Unlock()
	return amp, enabled
}

func (b *VoiceBank) slot(voice int) (*voiceSlot, error) {
	if voice < 0 || voice >= len(b.voices) {
		return nil, fmt.Errorf("voice index %d out of range [0, %d)", voice, len(b.voices))
	}
	return &b.voices[voice], nil
}
