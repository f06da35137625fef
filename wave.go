package aalto

import (
	"fmt"
	"math"
)

// Waveform selects the shape a voice oscillates with.
type Waveform int

const (
	Square Waveform = iota
	Sawtooth
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform converts the textual form used in config files back into a
// Waveform.
func ParseWaveform(s string) (Waveform, error) {
	switch s {
	case "square":
		return Square, nil
	case "sawtooth":
		return Sawtooth, nil
	case "triangle":
		return Triangle, nil
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

// peakAmplitude is the largest value Evaluate returns: full scale
// attenuated by two bits, leaving headroom for mixing four voices.
const peakAmplitude = MaxSample >> 2

// Evaluate returns the amplitude of the waveform at the given phase
// counter, in [0, 0x3FF]. period must be positive; a non-positive period is
// a contract violation and is clamped to 1 so that the sample path can
// never divide by zero.
func (w Waveform) Evaluate(counter, period int) Sample {
	if period < 1 {
		period = 1
	}
	switch w {
	case Square:
		if counter <= period/2 {
			return peakAmplitude
		}
		return 0
	case Sawtooth:
		return ramp(counter, period)
	case Triangle:
		if counter <= period>>1 {
			return ramp(counter*2, period)
		}
		return ramp((period-counter)*2, period)
	}
	return 0
}

// ramp maps num/den to a 12-bit fraction of full scale and attenuates it by
// two bits. The division is done in floating point and rounded, so the ramp
// is monotonic non-decreasing in num for a fixed positive den.
func ramp(num, den int) Sample {
	return Sample(math.Round(float64(MaxSample)*float64(num)/float64(den))) >> 2
}
