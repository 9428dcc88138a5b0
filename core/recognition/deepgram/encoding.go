package deepgram

import (
	"fmt"

	"github.com/voxloop/voxloop-core/core/audio"
)

// convertEncoding validates a device encoding against what the listen API
// accepts and returns the query-parameter values for it.
func convertEncoding(encoding audio.EncodingInfo) (sampleRate int, name string, err error) {
	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
		sampleRate = encoding.SampleRate
	default:
		return 0, "", fmt.Errorf("unsupported sample rate %d", encoding.SampleRate)
	}

	switch encoding.Encoding {
	case audio.EncodingLinear16:
	case audio.EncodingALaw, audio.EncodingMulaw:
		if sampleRate != 8000 {
			return 0, "", fmt.Errorf("unsupported sample rate %d for %s encoding", sampleRate, encoding.Encoding)
		}
	default:
		return 0, "", fmt.Errorf("unsupported encoding %q", encoding.Encoding)
	}

	return sampleRate, encoding.Encoding, nil
}
