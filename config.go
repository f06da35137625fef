package aalto

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Backpressure names the policy the sample producer applies when the sample
// queue is full.
const (
	// BackpressureStall holds the pending sample and retries it on every
	// subsequent tick, freezing the voice phases until a slot frees. No
	// sample is ever lost, at the cost of timing accuracy under load.
	BackpressureStall = "stall"
	// BackpressureDropNewest discards the freshly computed sample and keeps
	// ticking. Timing stays exact, audio drops out under load.
	BackpressureDropNewest = "drop-newest"
)

// Config collects the engine parameters. All fields have working defaults;
// a config file only needs to name what it changes.
type Config struct {
	// TickRate is the sample tick rate in Hz; one sample is produced per
	// tick and note periods are derived against it.
	TickRate int `yaml:"tickrate"`
	// NumVoices is the voice bank capacity.
	NumVoices int `yaml:"numvoices"`
	// SampleQueueSize and CommandQueueSize are the bounded FIFO capacities
	// between the tasks.
	SampleQueueSize  int `yaml:"samplequeuesize"`
	CommandQueueSize int `yaml:"commandqueuesize"`
	// OutputEvery is the output task period, in ticks. One sample is
	// dequeued and transmitted per run.
	OutputEvery int `yaml:"outputevery"`
	// PushTimeoutTicks bounds how long the drain loop waits to push one
	// command byte into a full command queue before dropping it.
	PushTimeoutTicks int `yaml:"pushtimeoutticks"`
	// Backpressure selects the sample producer policy on a full queue.
	Backpressure string `yaml:"backpressure"`
	// MIDIInputPrefix selects the MIDI input port by name prefix; empty
	// picks the first available port.
	MIDIInputPrefix string `yaml:"midiinputprefix"`
	// MonitorGain scales the soundcard monitor output, 0..1.
	MonitorGain float32 `yaml:"monitorgain"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:         8000,
		NumVoices:        DefaultNumVoices,
		SampleQueueSize:  100,
		CommandQueueSize: 100,
		OutputEvery:      1,
		PushTimeoutTicks: 50,
		Backpressure:     BackpressureStall,
		MonitorGain:      0.7,
	}
}

// ReadConfig overlays a yaml config on top of the defaults.
func ReadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	b, err := io.ReadAll(r)
	if err != nil {
		return c, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("cannot parse config: %w", err)
	}
	return c, c.Validate()
}

// ReadConfigFile loads a config file; a missing file yields the defaults.
func ReadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("cannot open config file %v: %w", path, err)
	}
	defer f.Close()
	return ReadConfig(f)
}

func (c Config) Validate() error {
	if c.TickRate < 1 {
		return fmt.Errorf("tickrate must be positive, got %d", c.TickRate)
	}
	if c.NumVoices < 1 {
		return fmt.Errorf("numvoices must be at least 1, got %d", c.NumVoices)
	}
	if c.SampleQueueSize < 1 || c.CommandQueueSize < 1 {
		return fmt.Errorf("queue sizes must be at least 1, got %d and %d", c.SampleQueueSize, c.CommandQueueSize)
	}
	if c.OutputEvery < 1 {
		return fmt.Errorf("outputevery must be at least 1, got %d", c.OutputEvery)
	}
	if c.PushTimeoutTicks < 0 {
		return fmt.Errorf("pushtimeoutticks must not be negative, got %d", c.PushTimeoutTicks)
	}
	if c.Backpressure != BackpressureStall && c.Backpressure != BackpressureDropNewest {
		return fmt.Errorf("unknown backpressure policy %q", c.Backpressure)
	}
	return nil
}
