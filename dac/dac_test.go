package dac

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aaltosynth/aalto"
)

func TestWriterFramesSamples(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, s := range []aalto.Sample{0x000, 0xABC, 0xFFF} {
		if err := w.Send(s); err != nil {
			t.Fatal(err)
		}
	}
	want := []byte{0x30, 0x00, 0x3A, 0xBC, 0x3F, 0xFF}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("wrote % X, want % X", buf.Bytes(), want)
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterWrapsError(t *testing.T) {
	wantErr := errors.New("spi: transfer failed")
	w := NewWriter(failingWriter{err: wantErr})
	if err := w.Send(0x123); !errors.Is(err, wantErr) {
		t.Errorf("Send() = %v, want wrapping of %v", err, wantErr)
	}
}

func TestWriterCloseWithoutCloser(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
