package aalto

// Engine combines all enabled voices of a bank into one composite sample
// per tick. Voices are summed with saturation at full scale: wrapping would
// be audible as a harsh discontinuity whenever several loud voices line up,
// saturation merely flattens the peak.
type Engine struct {
	bank *VoiceBank
}

func NewEngine(bank *VoiceBank) *Engine {
	return &Engine{bank: bank}
}

// Tick computes the composite sample for the current tick and advances the
// phase of every enabled voice. Callers must not call Tick while a
// previously produced sample is still pending delivery, or the stalled
// ticks would silently pitch-shift the voices.
func (e *Engine) Tick() Sample {
	sum := 0
	for i := 0; i < e.bank.NumVoices(); i++ {
		if amp, ok := e.bank.tick(i); ok {
			sum += int(amp)
		}
	}
	if sum > int(MaxSample) {
		sum = int(MaxSample)
	}
	return Sample(sum)
}
