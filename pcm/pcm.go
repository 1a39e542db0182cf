// Package pcm converts captured audio blocks into the wire format the
// transcription gateway expects: 16-bit signed little-endian PCM,
// base64 encoded.
package pcm

import (
	"encoding/base64"
	"encoding/binary"
)

const (
	// SampleRate is the only rate the gateway accepts.
	SampleRate = 16000

	// Channels is fixed; the capture layer downmixes before we see samples.
	Channels = 1

	// Format tags outbound audio messages.
	Format = "pcm16@16kHz"
)

// Quantize converts normalized float samples to 16-bit signed PCM,
// packed little-endian. Negative samples scale by 32768 and
// non-negative by 32767 so that +1.0 cannot overflow.
func Quantize(samples []float32) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

// Encode quantizes a block of samples and base64-encodes the result
// for transport in a JSON message.
func Encode(samples []float32) string {
	return base64.StdEncoding.EncodeToString(Quantize(samples))
}
