package aalto

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestReadConfigOverlaysDefaults(t *testing.T) {
	in := "tickrate: 1000\nnumvoices: 3\nbackpressure: drop-newest\n"
	c, err := ReadConfig(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if c.TickRate != 1000 || c.NumVoices != 3 || c.Backpressure != BackpressureDropNewest {
		t.Errorf("overlay not applied: %+v", c)
	}
	def := DefaultConfig()
	if c.SampleQueueSize != def.SampleQueueSize || c.OutputEvery != def.OutputEvery {
		t.Errorf("unset fields lost their defaults: %+v", c)
	}
}

func TestReadConfigRejectsBadValues(t *testing.T) {
	for _, in := range []string{
		"tickrate: 0",
		"numvoices: 0",
		"samplequeuesize: 0",
		"outputevery: 0",
		"pushtimeoutticks: -1",
		"backpressure: overwrite-oldest",
		"tickrate: [1, 2]",
	} {
		if _, err := ReadConfig(strings.NewReader(in)); err == nil {
			t.Errorf("config %q should be rejected", in)
		}
	}
}

func TestReadConfigFileMissingUsesDefaults(t *testing.T) {
	c, err := ReadConfigFile("testdata/does-not-exist.yml")
	if err != nil {
		t.Fatal(err)
	}
	if c != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", c)
	}
}
