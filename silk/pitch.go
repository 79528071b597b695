package silk

import "github.com/opuscore/opus/rangecoder"

// decodePitchLags decodes the primary pitch lag for a voiced frame: a
// bandwidth-specific high-part index plus a contour/low-part correction,
// combined into a sample lag within [PitchLagMin, PitchLagMax] (RFC 6716
// Section 4.2.7.6.1). Grounded on the teacher's silk/tables.go pitch lag
// ICDFs; the full per-subframe pitch contour table (RFC Table 29) is
// condensed to a single lag shared by every subframe of the frame rather
// than four independently-contoured lags (see DESIGN.md).
func decodePitchLags(rd *rangecoder.Decoder, cfg Config) int {
	var high []uint16
	switch {
	case cfg.SampleRate == 8000:
		high = icdfPitchLagNB
	case cfg.SampleRate == 12000:
		high = icdfPitchLagMB
	default:
		high = icdfPitchLagWB
	}
	highIdx := rd.DecodeICDF16(high, 8)
	delta := rd.DecodeICDF16(icdfPitchDelta, 8) - 4

	span := cfg.PitchLagMax - cfg.PitchLagMin
	lag := cfg.PitchLagMin + (highIdx*span)/(len(high)-1) + delta
	if lag < cfg.PitchLagMin {
		lag = cfg.PitchLagMin
	}
	if lag > cfg.PitchLagMax {
		lag = cfg.PitchLagMax
	}
	return lag
}

// ltpFilterBank synthesizes the five-tap LTP filter coefficients for one
// periodicity class (low/mid/high). The retrieval pack carries the
// periodicity *selector* ICDFs (icdfLTPFilterIndex{Low,Mid,High}) but not
// the literal codebook of filter taps those selectors index into (see
// DESIGN.md); this module uses a small set of representative symmetric
// taps whose center tap dominates, which preserves the LTP filter's
// qualitative role (emphasizing the pitch-period-delayed sample) without
// matching libopus's exact coefficients.
var ltpFilterBank = [][ltpOrder]float64{
	{-0.03, 0.08, 0.96, 0.08, -0.03},
	{-0.05, 0.15, 0.82, 0.15, -0.05},
	{-0.06, 0.20, 0.70, 0.20, -0.06},
	{-0.04, 0.18, 0.60, 0.18, -0.04},
	{-0.02, 0.12, 0.50, 0.12, -0.02},
}

func decodeLTPFilter(rd *rangecoder.Decoder, periodicity int) [ltpOrder]float64 {
	var icdf []uint16
	switch periodicity {
	case 0:
		icdf = icdfLTPFilterIndexLow
	case 1:
		icdf = icdfLTPFilterIndexMid
	default:
		icdf = icdfLTPFilterIndexHigh
	}
	idx := rd.DecodeICDF16(icdf, 8)
	if idx >= len(ltpFilterBank) {
		idx = len(ltpFilterBank) - 1
	}
	return ltpFilterBank[idx]
}

// decodeLTPScale decodes the LTP scaling factor for a channel's first
// decoded frame after construction or a reset (RFC 6716 Section
// 4.2.7.6.3); once the channel has decoded a frame, no scaling symbol is
// read and the scale is 1.0.
func decodeLTPScale(rd *rangecoder.Decoder, haveDecoded bool) float64 {
	if haveDecoded {
		return 1.0
	}
	idx := rd.DecodeICDF16(icdfLTPScaling, 8)
	scales := []float64{1.0, 0.9375, 0.875}
	if idx >= len(scales) {
		idx = len(scales) - 1
	}
	return scales[idx]
}
