// Package dac transmits engine samples to an MCP4821-style 12-bit DAC. Each
// sample is framed into a 16-bit word carrying the DAC command bits in the
// top nibble and written out most significant byte first, typically over an
// SPI device file.
package dac

import (
	"fmt"
	"io"

	"github.com/aaltosynth/aalto"
)

// Writer frames samples and writes them to w. Writes may block for the
// duration of the transfer; that is the peripheral's time, not the queue's.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (d *Writer) Send(s aalto.Sample) error {
	frame := s.Frame()
	if _, err := d.w.Write(frame[:]); err != nil {
		return fmt.Errorf("cannot write sample frame: %w", err)
	}
	return nil
}

func (d *Writer) Close() error {
	if c, ok := d.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
