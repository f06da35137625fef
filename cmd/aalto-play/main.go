package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/aaltosynth/aalto"
	"github.com/aaltosynth/aalto/dac"
	"github.com/aaltosynth/aalto/midiin"
	"github.com/aaltosynth/aalto/monitor"
	"github.com/aaltosynth/aalto/pipeline"
	"github.com/aaltosynth/aalto/version"
)

var (
	configPath  = flag.String("config", "", "read engine configuration from `file`")
	midiInput   = flag.String("midi-input", "", "connect MIDI input to matching device name prefix")
	spiDevice   = flag.String("spi", "", "write DAC sample frames to `device` instead of the soundcard monitor")
	testTone    = flag.Bool("test-tone", false, "enable one triangle voice at startup; runs without a MIDI input")
	versionFlag = flag.Bool("v", false, "print version")
)

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	cfg, err := aalto.ReadConfigFile(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if *midiInput != "" {
		cfg.MIDIInputPrefix = *midiInput
	}

	bank, err := aalto.NewVoiceBank(cfg.NumVoices, cfg.TickRate)
	if err != nil {
		log.Fatalf("could not create voice bank: %v", err)
	}
	engine := aalto.NewEngine(bank)
	broker := pipeline.NewBroker(cfg.SampleQueueSize, cfg.CommandQueueSize)

	// Any collaborator failing to initialize refuses the whole startup; no
	// task goroutine runs against a half-initialized peripheral.
	sink, err := openSink(cfg)
	if err != nil {
		log.Fatalf("could not open output device: %v", err)
	}
	defer sink.Close()

	var source aalto.ByteSource
	input, err := midiin.New(broker.NotifyDataAvailable)
	if err == nil {
		err = input.Open(cfg.MIDIInputPrefix)
	}
	if err != nil {
		if !*testTone {
			log.Fatalf("could not open MIDI input: %v", err)
		}
		log.Printf("running without MIDI input: %v", err)
		source = nullSource{}
	} else {
		log.Printf("listening on MIDI input %q", input.Name())
		source = input
		defer input.Close()
	}

	if *testTone {
		if err := bank.ProgramChange(0, aalto.Triangle); err != nil {
			log.Fatalf("test tone: %v", err)
		}
		if err := bank.NoteOn(0, 69, 100); err != nil {
			log.Fatalf("test tone: %v", err)
		}
	}

	tickPeriod := time.Second / time.Duration(cfg.TickRate)
	producerTicks := time.NewTicker(tickPeriod)
	defer producerTicks.Stop()
	outputTicks := time.NewTicker(tickPeriod)
	defer outputTicks.Stop()

	producer := pipeline.NewProducer(engine, broker, cfg.Backpressure)
	output := pipeline.NewOutput(sink, broker, cfg.OutputEvery)
	drain := pipeline.NewDrain(source, broker, time.Duration(cfg.PushTimeoutTicks)*tickPeriod)
	interpreter := pipeline.NewInterpreter(bank, broker)

	go drain.Run()
	go output.Run(outputTicks.C)
	go producer.Run(producerTicks.C)
	go interpreter.Run()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	broker.Close(3 * time.Second)
	log.Printf("dropped command bytes: %d, stalled ticks: %d, dropped samples: %d, underruns: %d",
		broker.Stats.DroppedCommandBytes.Load(), broker.Stats.StalledTicks.Load(),
		broker.Stats.DroppedSamples.Load(), broker.Stats.Underruns.Load())
}

func openSink(cfg aalto.Config) (aalto.SampleSink, error) {
	if *spiDevice != "" {
		f, err := os.OpenFile(*spiDevice, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("cannot open SPI device %v: %w", *spiDevice, err)
		}
		return dac.NewWriter(f), nil
	}
	return monitor.NewSink(cfg.TickRate/cfg.OutputEvery, cfg.MonitorGain)
}

// nullSource is the command input when no MIDI port is available: it never
// has data, so the drain task just sleeps on its signal.
type nullSource struct{}

func (nullSource) TryReadByte() (byte, bool) { return 0, false }
func (nullSource) Close() error              { return nil }
