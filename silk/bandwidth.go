// Package silk implements the SILK speech decoder (RFC 6716 Section 4.2).
package silk

// Bandwidth selects one of SILK's three internal sample rates.
type Bandwidth uint8

const (
	Narrowband Bandwidth = iota
	Mediumband
	Wideband
)

// Config holds the bandwidth-dependent constants RFC 6716 Section 4.2 fixes:
// LPC order, subframe length, and the pitch lag search range.
type Config struct {
	SampleRate      int
	LPCOrder        int
	SubframeSamples int
	PitchLagMin     int
	PitchLagMax     int
}

var bandwidthConfigs = map[Bandwidth]Config{
	Narrowband: {8000, 10, 40, 16, 144},
	Mediumband: {12000, 10, 60, 24, 216},
	Wideband:   {16000, 16, 80, 32, 288},
}

func ConfigFor(bw Bandwidth) Config {
	return bandwidthConfigs[bw]
}

func (bw Bandwidth) String() string {
	switch bw {
	case Narrowband:
		return "narrowband"
	case Mediumband:
		return "mediumband"
	case Wideband:
		return "wideband"
	default:
		return "unknown"
	}
}
