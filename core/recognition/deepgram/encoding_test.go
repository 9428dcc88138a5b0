package deepgram

import (
	"testing"

	"github.com/voxloop/voxloop-core/core/audio"
)

func TestConvertEncodingAcceptsLinear16Rates(t *testing.T) {
	for _, rate := range []int{8000, 16000, 24000, 32000, 48000} {
		sampleRate, name, err := convertEncoding(audio.EncodingInfo{SampleRate: rate, Encoding: audio.EncodingLinear16})
		if err != nil {
			t.Fatalf("expected %d Hz linear16 to be accepted: %v", rate, err)
		}
		if sampleRate != rate || name != audio.EncodingLinear16 {
			t.Fatalf("unexpected conversion for %d Hz: %d %q", rate, sampleRate, name)
		}
	}
}

func TestConvertEncodingRejectsUnsupportedSampleRate(t *testing.T) {
	if _, _, err := convertEncoding(audio.EncodingInfo{SampleRate: 44100, Encoding: audio.EncodingLinear16}); err == nil {
		t.Fatalf("expected 44100 Hz to be rejected")
	}
}

func TestConvertEncodingRestrictsCompandedEncodingsTo8kHz(t *testing.T) {
	for _, encoding := range []string{audio.EncodingMulaw, audio.EncodingALaw} {
		if _, _, err := convertEncoding(audio.EncodingInfo{SampleRate: 8000, Encoding: encoding}); err != nil {
			t.Fatalf("expected 8 kHz %s to be accepted: %v", encoding, err)
		}
		if _, _, err := convertEncoding(audio.EncodingInfo{SampleRate: 16000, Encoding: encoding}); err == nil {
			t.Fatalf("expected 16 kHz %s to be rejected", encoding)
		}
	}
}

func TestConvertEncodingRejectsUnknownEncoding(t *testing.T) {
	if _, _, err := convertEncoding(audio.EncodingInfo{SampleRate: 16000, Encoding: "opus"}); err == nil {
		t.Fatalf("expected unknown encoding to be rejected")
	}
}
