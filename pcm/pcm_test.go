package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
)

func int16At(t *testing.T, buf []byte, i int) int16 {
	t.Helper()
	return int16(binary.LittleEndian.Uint16(buf[i*2:]))
}

func TestQuantize(t *testing.T) {
	t.Run("Asymmetric Scaling", func(t *testing.T) {
		buf := Quantize([]float32{1.0, -1.0, 0.0})
		if got := int16At(t, buf, 0); got != 32767 {
			t.Errorf("+1.0 quantized to %d, want 32767", got)
		}
		if got := int16At(t, buf, 1); got != -32768 {
			t.Errorf("-1.0 quantized to %d, want -32768", got)
		}
		if got := int16At(t, buf, 2); got != 0 {
			t.Errorf("0.0 quantized to %d, want 0", got)
		}
	})

	t.Run("Half Amplitude", func(t *testing.T) {
		buf := Quantize([]float32{0.5, -0.5})
		if got := int16At(t, buf, 0); got != 16383 {
			t.Errorf("+0.5 quantized to %d, want 16383", got)
		}
		if got := int16At(t, buf, 1); got != -16384 {
			t.Errorf("-0.5 quantized to %d, want -16384", got)
		}
	})

	t.Run("Output Length", func(t *testing.T) {
		buf := Quantize(make([]float32, 320))
		if len(buf) != 640 {
			t.Errorf("quantized 320 samples into %d bytes, want 640", len(buf))
		}
	})

	t.Run("Little Endian", func(t *testing.T) {
		// -32768 = 0x8000; little-endian that is 0x00 then 0x80.
		buf := Quantize([]float32{-1.0})
		if buf[0] != 0x00 || buf[1] != 0x80 {
			t.Errorf("bytes = [%#x %#x], want [0x0 0x80]", buf[0], buf[1])
		}
	})
}

func TestEncode(t *testing.T) {
	samples := []float32{0.25, -0.25, 0.75}
	decoded, err := base64.StdEncoding.DecodeString(Encode(samples))
	if err != nil {
		t.Fatalf("Encode produced invalid base64: %v", err)
	}
	want := Quantize(samples)
	if len(decoded) != len(want) {
		t.Fatalf("decoded %d bytes, want %d", len(decoded), len(want))
	}
	for i := range want {
		if decoded[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, decoded[i], want[i])
		}
	}
}
