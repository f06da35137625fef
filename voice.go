package aalto

import "math"

// Voice is one independently controllable oscillator. Counter is the
// position within the current cycle and stays in [0, Period]; a full cycle
// is Period+1 ticks. PeriodForNote compensates for the inclusive range, so
// the off-by-one does not detune the voice.
type Voice struct {
	Enabled  bool
	Waveform Waveform
	Counter  int
	Period   int
}

// amplitude evaluates the voice at its current phase.
func (v *Voice) amplitude() Sample {
	return v.Waveform.Evaluate(v.Counter, v.Period)
}

// advance moves the phase counter one tick forward, wrapping to zero after
// it has reached the period.
func (v *Voice) advance() {
	if v.Counter < v.Period {
		v.Counter++
	} else {
		v.Counter = 0
	}
}

const (
	a4Note = 69
	a4Hz   = 440.0
)

// PeriodForNote derives the phase period for a MIDI note number at the
// given tick rate, equal temperament around A4 = 440 Hz. One cycle of a
// voice takes Period+1 ticks, so one is subtracted here. The result is
// clamped to 1: the oscillator contract forbids a zero period, and tick
// rates low enough to hit the clamp simply alias to the highest
// representable pitch.
func PeriodForNote(note byte, tickRate int) int {
	freq := a4Hz * math.Exp2(float64(int(note)-a4Note)/12)
	period := int(math.Round(float64(tickRate)/freq)) - 1
	if period < 1 {
		period = 1
	}
	return period
}
