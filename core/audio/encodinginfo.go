package audio

const (
	DefaultSampleRate = 16000
	DefaultEncoding   = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Encoding: DefaultEncoding}
}

type EncodingInfo struct {
	SampleRate int
	Encoding   string
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Encoding == ""
}

func (e EncodingInfo) ByteSize() int {
	switch e.Encoding {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Encoding {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

const (
	EncodingMulaw    = "mulaw"
	EncodingALaw     = "alaw"
	EncodingLinear16 = "linear16"
)
